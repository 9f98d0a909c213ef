package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/middleware"
	"github.com/movein/movein-api/services"
)

// ReviewRoutes sets up review endpoints. Listing a listing's reviews is public.
func ReviewRoutes(api *gin.RouterGroup, reviews *services.ReviewService, auth gin.HandlerFunc) {
	reviewRoutes := api.Group("/reviews")
	{
		reviewRoutes.POST("", auth, CreateReview(reviews))
		reviewRoutes.GET("/:listingId", GetReviews(reviews))
		reviewRoutes.PUT("/:id", auth, UpdateReview(reviews))
		reviewRoutes.DELETE("/:id", auth, DeleteReview(reviews))
	}
}

func CreateReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ReviewInput
		if !bindJSON(c, &in) {
			return
		}

		review, err := reviews.Create(c.Request.Context(), middleware.GetUserID(c), in)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

func GetReviews(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, ok := pathID(c, "listingId")
		if !ok {
			return
		}

		out, err := reviews.ForListing(c.Request.Context(), listingID)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func UpdateReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in services.ReviewUpdate
		if !bindJSON(c, &in) {
			return
		}

		review, err := reviews.Update(c.Request.Context(), middleware.GetUserID(c), id, in)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

func DeleteReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := reviews.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
