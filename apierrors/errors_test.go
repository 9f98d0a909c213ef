package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Respond(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespond_APIError(t *testing.T) {
	code, body := respond(t, fmt.Errorf("load listing: %w", NotFound("Listing not found")))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Listing not found", body["error"])
	assert.NotContains(t, body, "errors")
}

func TestRespond_Validation(t *testing.T) {
	code, body := respond(t, Validation(
		FieldError{Field: "minPrice", Message: "minPrice must be a number"},
		FieldError{Field: "rooms", Message: "rooms must be a number"},
	))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, body["errors"], 2)
}

func TestRespond_UnknownErrorIsHidden(t *testing.T) {
	code, body := respond(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, ErrInternal.Message, body["error"])
	assert.NotContains(t, body["error"], "pq")
}

func TestRespond_InternalAPIError(t *testing.T) {
	code, body := respond(t, fmt.Errorf("save: %w", ErrInternal))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])
	assert.True(t, errors.Is(fmt.Errorf("x: %w", ErrInternal), &APIError{Code: CodeInternal}))
}

func TestAPIError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Forbidden("Access denied"))
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestFromBinding_ValidatorErrors(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(JSONTagName)

	type payload struct {
		Rating  int    `json:"rating" validate:"min=1,max=5"`
		Comment string `json:"comment" validate:"required"`
	}
	err := FromBinding(v.Struct(payload{Rating: 9}))

	require.Len(t, err.Fields, 2)
	assert.Equal(t, "rating", err.Fields[0].Field)
	assert.Equal(t, "rating must be at most 5", err.Fields[0].Message)
	assert.Equal(t, "comment is required", err.Fields[1].Message)
}

func TestFromBinding_TypeMismatch(t *testing.T) {
	var dst struct {
		ReceiverID uint `json:"receiverId"`
	}
	decodeErr := json.Unmarshal([]byte(`{"receiverId":"abc"}`), &dst)
	err := FromBinding(decodeErr)

	assert.Equal(t, http.StatusBadRequest, err.Status)
	require.Len(t, err.Fields, 1)
	assert.Equal(t, "receiverId", err.Fields[0].Field)
}
