package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

// ReviewInput is the body of a new review.
type ReviewInput struct {
	ListingID uint   `json:"listingId" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"trimmedmin=10"`
}

// ReviewUpdate replaces the rating and comment of an existing review.
type ReviewUpdate struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"trimmedmin=10"`
}

type ReviewService struct {
	reviews  repository.ReviewStore
	listings repository.ListingStore
	validate *validator.Validate
}

func NewReviewService(store *repository.Store) *ReviewService {
	return &ReviewService{reviews: store.Reviews, listings: store.Listings, validate: newValidator()}
}

func (s *ReviewService) Create(ctx context.Context, userID uint, in ReviewInput) (*models.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apierrors.FromBinding(err)
	}

	ok, err := s.listings.Exists(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierrors.NotFound("Listing not found")
	}

	review := &models.Review{
		ListingID: in.ListingID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	reviewsCreatedTotal.Inc()
	return s.byID(ctx, review.ID)
}

// Update replaces rating and comment. Only the author may update.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uint, in ReviewUpdate) (*models.Review, error) {
	review, err := s.authored(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, apierrors.FromBinding(err)
	}

	review.Rating = in.Rating
	review.Comment = strings.TrimSpace(in.Comment)
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, notFound(err, "Review not found")
	}
	return s.byID(ctx, review.ID)
}

func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	if _, err := s.authored(ctx, userID, reviewID); err != nil {
		return err
	}
	return notFound(s.reviews.Delete(ctx, reviewID), "Review not found")
}

// ForListing returns every review of a listing, newest first.
func (s *ReviewService) ForListing(ctx context.Context, listingID uint) ([]models.Review, error) {
	out, err := s.reviews.ByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Review{}
	}
	return out, nil
}

func (s *ReviewService) byID(ctx context.Context, id uint) (*models.Review, error) {
	r, err := s.reviews.ByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Review not found")
	}
	return r, nil
}

func (s *ReviewService) authored(ctx context.Context, userID, reviewID uint) (*models.Review, error) {
	review, err := s.byID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apierrors.Forbidden("Access denied")
	}
	return review, nil
}
