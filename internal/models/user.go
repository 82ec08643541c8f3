package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a buyer account. The account row only exists after the
// registration OTP has been verified.
type User struct {
	// gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt automatically
	gorm.Model

	UserID   string `json:"id" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Password string `json:"-"` // bcrypt hash, never serialized
}

// BeforeCreate hook to auto-generate the public UserID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	return nil
}

// UserRegistration is the payload for register/verify requests
type UserRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}
