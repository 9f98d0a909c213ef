package models

import "time"

const (
	OperationSale = "sale"
	OperationRent = "rent"

	PropertyApartment = "apartment"
	PropertyHouse     = "house"
)

type Listing struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Title         string       `gorm:"not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	Price         float64      `gorm:"type:numeric(10,2);not null" json:"price"`
	Location      string       `gorm:"not null" json:"location"`
	OwnerID       uint         `gorm:"not null;index" json:"ownerId"`
	Owner         *UserSummary `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	OperationType string       `gorm:"type:varchar(16);not null;index" json:"operationType"`
	PropertyType  string       `gorm:"type:varchar(16);not null;index" json:"propertyType"`
	Rooms         *int         `json:"rooms"`
	Floors        *int         `json:"floors"`
	CreatedAt     time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// ListingSummary is the (id, title) view embedded in messages and conversations.
type ListingSummary struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `json:"title"`
}

func (ListingSummary) TableName() string { return "listings" }

// ListingFilter is a conjunctive search over listings. Nil/empty fields are
// not constrained.
type ListingFilter struct {
	OperationType string
	PropertyType  string
	Location      string
	MinPrice      *float64
	MaxPrice      *float64
	Rooms         *int
	Floors        *int
}
