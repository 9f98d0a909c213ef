package models

import "time"

// Favorite is the join row between a user and a listing they bookmarked.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	ListingID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}
