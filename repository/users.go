package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/movein/movein-api/models"
)

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Create(ctx context.Context, u *models.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormUsers) Update(ctx context.Context, u *models.User) error {
	return translate("update user", r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error)
}

func (r *gormUsers) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

func (r *gormUsers) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.firstWhere(ctx, "email = ?", email)
}

func (r *gormUsers) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.firstWhere(ctx, "username = ?", username)
}

func (r *gormUsers) ByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.firstWhere(ctx, "google_id = ?", googleID)
}

func (r *gormUsers) firstWhere(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (r *gormUsers) Summaries(ctx context.Context, ids []uint) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.UserSummary
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, translate("user summaries", err)
}

func (r *gormUsers) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, translate("user exists", err)
}
