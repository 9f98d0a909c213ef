package models

import "time"

type Review struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Rating    int          `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string       `gorm:"type:text;not null" json:"comment"`
	ListingID uint         `gorm:"not null;index" json:"listingId"`
	UserID    uint         `gorm:"not null;index" json:"userId"`
	User      *UserSummary `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
