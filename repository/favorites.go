package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/movein/movein-api/models"
)

type gormFavorites struct {
	db *gorm.DB
}

func (r *gormFavorites) Add(ctx context.Context, userID, listingID uint) error {
	fav := models.Favorite{UserID: userID, ListingID: listingID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
	return translate("add favorite", err)
}

func (r *gormFavorites) Remove(ctx context.Context, userID, listingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return false, translate("remove favorite", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Listings returns the user's favorited listings, most recently favorited first.
func (r *gormFavorites) Listings(ctx context.Context, userID uint) ([]models.Listing, error) {
	var out []models.Listing
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Joins("JOIN favorites ON favorites.listing_id = listings.id").
		Where("favorites.user_id = ?", userID).
		Preload("Owner").
		Order("favorites.created_at DESC, listings.id DESC").
		Find(&out).Error
	return out, translate("list favorites", err)
}
