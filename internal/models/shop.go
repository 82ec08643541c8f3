package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is a seller-owned storefront profile. A seller has exactly one shop;
// the unique index on SellerID enforces that.
type Shop struct {
	gorm.Model

	ShopID       string `json:"id" gorm:"uniqueIndex"`
	SellerID     string `json:"seller_id" gorm:"uniqueIndex"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	Category     string `json:"category"`
	Address      string `json:"address"`
	OpeningHours string `json:"opening_hours"`
	Website      string `json:"website,omitempty"`
	SocialLinks  string `json:"social_links,omitempty"` // JSON-encoded list
	CoverBanner  string `json:"cover_banner,omitempty"`
}

// BeforeCreate hook to auto-generate the public ShopID
func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ShopID == "" {
		s.ShopID = uuid.New().String()
	}
	return nil
}

// ShopRegistration is the payload for the create-shop request
type ShopRegistration struct {
	SellerID     string `json:"sellerId"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	Category     string `json:"category"`
	Address      string `json:"address"`
	OpeningHours string `json:"opening_hours"`
	Website      string `json:"website"`
	SocialLinks  string `json:"social_links"`
	CoverBanner  string `json:"cover_banner"`
}
