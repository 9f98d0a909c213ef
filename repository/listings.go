package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/movein/movein-api/models"
)

type gormListings struct {
	db *gorm.DB
}

func (r *gormListings) Create(ctx context.Context, l *models.Listing) error {
	return translate("create listing", r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *gormListings) Update(ctx context.Context, l *models.Listing) error {
	return translate("update listing", r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error)
}

// Delete removes the listing together with the rows that reference it.
func (r *gormListings) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Listing{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("delete listing", err)
}

func (r *gormListings) ByID(ctx context.Context, id uint) (*models.Listing, error) {
	var l models.Listing
	if err := r.db.WithContext(ctx).Preload("Owner").First(&l, id).Error; err != nil {
		return nil, translate("get listing", err)
	}
	return &l, nil
}

func (r *gormListings) List(ctx context.Context) ([]models.Listing, error) {
	return r.Search(ctx, models.ListingFilter{})
}

func (r *gormListings) ByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	var out []models.Listing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translate("list listings by owner", err)
}

// Search ANDs together every non-empty field of f.
func (r *gormListings) Search(ctx context.Context, f models.ListingFilter) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).Model(&models.Listing{}).Preload("Owner")

	if f.OperationType != "" {
		q = q.Where("operation_type = ?", f.OperationType)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.Location != "" {
		q = q.Where(`LOWER(location) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(f.Location)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Rooms != nil {
		q = q.Where("rooms = ?", *f.Rooms)
	}
	if f.Floors != nil {
		q = q.Where("floors = ?", *f.Floors)
	}

	var out []models.Listing
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate("search listings", err)
}

func (r *gormListings) Summaries(ctx context.Context, ids []uint) ([]models.ListingSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.ListingSummary
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, translate("listing summaries", err)
}

func (r *gormListings) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&n).Error
	return n > 0, translate("listing exists", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
