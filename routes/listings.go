package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/middleware"
	"github.com/movein/movein-api/services"
)

// ListingRoutes sets up the routes for listing operations. Reads are public;
// writes require a token.
func ListingRoutes(api *gin.RouterGroup, listings *services.ListingService, auth gin.HandlerFunc) {
	listingRoutes := api.Group("/listings")
	{
		listingRoutes.GET("", GetAllListings(listings))
		listingRoutes.GET("/search", SearchListings(listings))
		listingRoutes.GET("/:id", GetListing(listings))
		listingRoutes.POST("", auth, CreateListing(listings))
		listingRoutes.PUT("/:id", auth, UpdateListing(listings))
		listingRoutes.DELETE("/:id", auth, DeleteListing(listings))
	}
}

// GetAllListings returns every listing, newest first.
func GetAllListings(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := listings.List(c.Request.Context())
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// SearchListings filters listings by the query string.
func SearchListings(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q services.SearchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			apierrors.Respond(c, apierrors.FromBinding(err))
			return
		}

		out, err := listings.Search(c.Request.Context(), q)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetListing retrieves a listing by ID
func GetListing(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		listing, err := listings.Get(c.Request.Context(), id)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// CreateListing creates a listing owned by the caller.
func CreateListing(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListingInput
		if !bindJSON(c, &in) {
			return
		}

		listing, err := listings.Create(c.Request.Context(), middleware.GetUserID(c), in)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, listing)
	}
}

// UpdateListing applies a partial update. Only the owner may call it.
func UpdateListing(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in services.ListingInput
		if !bindJSON(c, &in) {
			return
		}

		listing, err := listings.Update(c.Request.Context(), middleware.GetUserID(c), id, in)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// DeleteListing removes a listing. Only the owner may call it.
func DeleteListing(listings *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := listings.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
