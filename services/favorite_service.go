package services

import (
	"context"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteStore
	listings  repository.ListingStore
}

func NewFavoriteService(store *repository.Store) *FavoriteService {
	return &FavoriteService{favorites: store.Favorites, listings: store.Listings}
}

// Add is idempotent: favoriting an already favorited listing succeeds.
func (s *FavoriteService) Add(ctx context.Context, userID, listingID uint) error {
	ok, err := s.listings.Exists(ctx, listingID)
	if err != nil {
		return err
	}
	if !ok {
		return apierrors.NotFound("Listing not found")
	}
	return s.favorites.Add(ctx, userID, listingID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, listingID uint) error {
	removed, err := s.favorites.Remove(ctx, userID, listingID)
	if err != nil {
		return err
	}
	if !removed {
		return apierrors.NotFound("Listing not found in favorites")
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Listing, error) {
	return nonNil(s.favorites.Listings(ctx, userID))
}
