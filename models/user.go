package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  *string   `json:"-"` // nil for Google-only accounts
	Phone     *string   `json:"phone"`
	Avatar    *string   `gorm:"type:text" json:"avatar"`
	GoogleID  *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// Summary is the public projection embedded in listings, reviews and messages.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// UserSummary is the (id, username, avatar) view of a user.
type UserSummary struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

func (UserSummary) TableName() string { return "users" }
