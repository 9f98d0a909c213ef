// routes/auth.go
package routes

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/services"
)

const oauthStateCookie = "oauth_state"

// AuthRoutes sets up /auth/register, /auth/login, /auth/refresh and, when
// configured, the Google sign-in pair.
func AuthRoutes(api *gin.RouterGroup, auth *services.AuthService, google *services.GoogleAuth, opts Options) {
	group := api.Group("/auth")
	{
		group.POST("/register", Register(auth))
		group.POST("/login", Login(auth))
		group.POST("/refresh", RefreshToken(auth))
		if google != nil {
			group.GET("/google", GoogleLogin(google, opts))
			group.GET("/google/callback", GoogleCallback(google, opts))
		}
	}
}

func authResponse(message string, res *services.AuthResult) gin.H {
	return gin.H{
		"message":      message,
		"token":        res.Tokens.AccessToken,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"user":         res.User,
	}
}

// Register handles new user registration.
func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.RegisterInput
		if !bindJSON(c, &req) {
			return
		}

		res, err := auth.Register(c.Request.Context(), req)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, authResponse("User registered successfully", res))
	}
}

// Login handles user login requests.
func Login(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.LoginInput
		if !bindJSON(c, &req) {
			return
		}

		res, err := auth.Login(c.Request.Context(), req)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, authResponse("Login successful", res))
	}
}

// RefreshToken exchanges a refresh token for a new pair.
func RefreshToken(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refreshToken" binding:"required"`
		}
		if !bindJSON(c, &req) {
			return
		}

		res, err := auth.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Tokens refreshed successfully",
			"accessToken":  res.Tokens.AccessToken,
			"refreshToken": res.Tokens.RefreshToken,
		})
	}
}

// GoogleLogin redirects to Google's consent screen with a one-time state
// remembered in a short-lived cookie.
func GoogleLogin(google *services.GoogleAuth, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(oauthStateCookie, state, 600, "/", "", opts.SecureCookies, true)
		c.Redirect(http.StatusTemporaryRedirect, google.AuthURL(state))
	}
}

// GoogleCallback finishes sign-in and hands the tokens to the frontend.
func GoogleCallback(google *services.GoogleAuth, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		frontend := strings.TrimRight(opts.FrontendURL, "/")

		expected, err := c.Cookie(oauthStateCookie)
		c.SetCookie(oauthStateCookie, "", -1, "/", "", opts.SecureCookies, true)
		if err != nil || expected == "" || c.Query("state") != expected {
			slog.WarnContext(c.Request.Context(), "oauth state mismatch",
				slog.String("request_id", c.GetString("request_id")))
			c.Redirect(http.StatusFound, frontend+"/")
			return
		}
		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, frontend+"/")
			return
		}

		res, err := google.Callback(c.Request.Context(), code)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "google sign-in failed",
				slog.String("request_id", c.GetString("request_id")),
				slog.Any("error", err))
			c.Redirect(http.StatusFound, frontend+"/")
			return
		}

		q := url.Values{}
		q.Set("accessToken", res.Tokens.AccessToken)
		q.Set("refreshToken", res.Tokens.RefreshToken)
		c.Redirect(http.StatusFound, frontend+"/auth/success?"+q.Encode())
	}
}
