// Package services holds the business rules of the marketplace. Services
// depend on repository interfaces and return apierrors for anything the
// caller did wrong; every other error is an internal failure.
package services

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/repository"
)

// notFound turns repository.ErrNotFound into a NotFound API error and passes
// everything else through.
func notFound(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.NotFound(message)
	}
	return err
}

// newValidator reports fields by their json or form name and knows the
// trimmedmin and maxdecimals rules.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(apierrors.JSONTagName)
	if err := v.RegisterValidation("trimmedmin", trimmedMin); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("maxdecimals", maxDecimals); err != nil {
		panic(err)
	}
	return v
}

// trimmedMin counts runes after trimming surrounding whitespace.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic("trimmedmin: bad param " + fl.Param())
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// maxDecimals limits a float to the scale of its numeric column.
func maxDecimals(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic("maxdecimals: bad param " + fl.Param())
	}
	s := strconv.FormatFloat(fl.Field().Float(), 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	return dot < 0 || len(s)-dot-1 <= n
}
