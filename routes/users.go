// routes with all the user related operations using gin
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/middleware"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/services"
)

// UserRoutes mounts the caller's own profile, listings and favorites under /me.
func UserRoutes(api *gin.RouterGroup, users *services.UserService, listings *services.ListingService, favorites *services.FavoriteService, auth gin.HandlerFunc) {
	me := api.Group("/me", auth)
	{
		me.GET("", GetMe(users))
		me.PATCH("/profile", UpdateProfile(users))
		me.GET("/listings", GetMyListings(listings))
		me.GET("/favorites", GetFavorites(favorites))
		me.POST("/favorites/:listingId", AddFavorite(favorites))
		me.DELETE("/favorites/:listingId", RemoveFavorite(favorites))
	}
}

// userResponse is the caller's own view of their account.
func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"email":     u.Email,
		"username":  u.Username,
		"phone":     u.Phone,
		"avatar":    u.Avatar,
		"hasGoogle": u.GoogleID != nil,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

func GetMe(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.Me(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, userResponse(u))
	}
}

func UpdateProfile(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ProfileInput
		if !bindJSON(c, &in) {
			return
		}

		u, err := users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), in)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": userResponse(u)})
	}
}

func GetMyListings(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := listings.ListByOwner(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetFavorites(favorites *services.FavoriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := favorites.List(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// AddFavorite always answers 200 when the listing exists, favorited or not.
func AddFavorite(favorites *services.FavoriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := pathID(c, "listingId")
		if !ok {
			return
		}

		if err := favorites.Add(c.Request.Context(), middleware.GetUserID(c), listingID); err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Listing added to favorites"})
	}
}

func RemoveFavorite(favorites *services.FavoriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := pathID(c, "listingId")
		if !ok {
			return
		}

		if err := favorites.Remove(c.Request.Context(), middleware.GetUserID(c), listingID); err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Listing removed from favorites"})
	}
}
