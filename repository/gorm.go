package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NewGormStore wires every entity store onto one injected handle.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:     &gormUsers{db: db},
		Listings:  &gormListings{db: db},
		Favorites: &gormFavorites{db: db},
		Reviews:   &gormReviews{db: db},
		Messages:  &gormMessages{db: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// translate maps gorm sentinel errors onto the package's own.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
