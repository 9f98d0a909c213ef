package routes

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/middleware"
	"github.com/movein/movein-api/services"
)

// Services is everything the handlers call into. Google may be nil.
type Services struct {
	Tokens    *services.TokenIssuer
	Auth      *services.AuthService
	Google    *services.GoogleAuth
	Users     *services.UserService
	Listings  *services.ListingService
	Favorites *services.FavoriteService
	Reviews   *services.ReviewService
	Messages  *services.MessageService
}

// Options tune the HTTP surface.
type Options struct {
	FrontendURL string
	// Ping backs /health. Nil means always healthy.
	Ping func(ctx context.Context) error
	// SecureCookies marks the OAuth state cookie Secure.
	SecureCookies bool
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(apierrors.JSONTagName)
	}
}

// Setup mounts /health, /metrics and every API route under /api.
func Setup(router *gin.Engine, svc Services, opts Options) {
	router.GET("/health", Health(opts.Ping))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	auth := middleware.AuthMiddleware(svc.Tokens)

	AuthRoutes(api, svc.Auth, svc.Google, opts)
	ListingRoutes(api, svc.Listings, auth)
	UserRoutes(api, svc.Users, svc.Listings, svc.Favorites, auth)
	MessageRoutes(api, svc.Messages, auth)
	ReviewRoutes(api, svc.Reviews, auth)
}

// Health reports whether the store answers within two seconds.
func Health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// pathID parses a positive integer path parameter. On failure it writes a
// 400 and returns false.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apierrors.Respond(c, apierrors.Field(name, name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the body into v. On failure it writes a 400 and returns
// false.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apierrors.Respond(c, apierrors.FromBinding(err))
		return false
	}
	return true
}
