package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/eshop/backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/Postgres.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (s *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) UpdateUserPassword(email, passwordHash string) error {
	result := s.db.Model(&models.User{}).Where("email = ?", email).Update("password", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Seller operations

func (s *DatabaseStore) CreateSeller(seller *models.Seller) (*models.Seller, error) {
	if err := s.db.Create(seller).Error; err != nil {
		return nil, err
	}
	return seller, nil
}

func (s *DatabaseStore) GetSellerByEmail(email string) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.Preload("Shop").Where("email = ?", email).First(&seller).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (s *DatabaseStore) GetSellerByID(sellerID string) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.Preload("Shop").Where("seller_id = ?", sellerID).First(&seller).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (s *DatabaseStore) UpdateSellerPassword(email, passwordHash string) error {
	result := s.db.Model(&models.Seller{}).Where("email = ?", email).Update("password", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) UpdateSellerStripeID(sellerID, stripeID string) error {
	result := s.db.Model(&models.Seller{}).Where("seller_id = ?", sellerID).Update("stripe_id", stripeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Shop operations

func (s *DatabaseStore) CreateShop(shop *models.Shop) (*models.Shop, error) {
	if err := s.db.Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *DatabaseStore) GetShopBySellerID(sellerID string) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.Where("seller_id = ?", sellerID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}
