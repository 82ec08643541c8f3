package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seller represents a merchant account. Like User it materializes only after
// OTP verification; the Stripe account id is filled in later by the
// payment-onboarding flow.
type Seller struct {
	gorm.Model

	SellerID    string `json:"id" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
	StripeID    string `json:"stripe_id,omitempty"`

	Shop *Shop `json:"shop,omitempty" gorm:"foreignKey:SellerID;references:SellerID"`
}

// BeforeCreate hook to auto-generate the public SellerID
func (s *Seller) BeforeCreate(tx *gorm.DB) error {
	if s.SellerID == "" {
		s.SellerID = uuid.New().String()
	}
	return nil
}

// SellerRegistration is the payload for seller register/verify requests
type SellerRegistration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	OTP         string `json:"otp"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
}
