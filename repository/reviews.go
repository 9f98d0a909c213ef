package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/movein/movein-api/models"
)

type gormReviews struct {
	db *gorm.DB
}

func (r *gormReviews) Create(ctx context.Context, rv *models.Review) error {
	return translate("create review", r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error)
}

func (r *gormReviews) Update(ctx context.Context, rv *models.Review) error {
	return translate("update review", r.db.WithContext(ctx).Omit(clause.Associations).Save(rv).Error)
}

func (r *gormReviews) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return translate("delete review", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormReviews) ByID(ctx context.Context, id uint) (*models.Review, error) {
	var rv models.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&rv, id).Error; err != nil {
		return nil, translate("get review", err)
	}
	return &rv, nil
}

func (r *gormReviews) ByListing(ctx context.Context, listingID uint) ([]models.Review, error) {
	var out []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("listing_id = ?", listingID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translate("list reviews", err)
}
