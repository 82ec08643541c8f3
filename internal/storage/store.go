package storage

import (
	"errors"
	"sync"

	"github.com/eshop/backend/internal/models"
)

// ErrNotFound is returned by every lookup that misses, regardless of backend.
var ErrNotFound = errors.New("record not found")

var (
	storeInstance Store
	storeOnce     sync.Once
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store is the credential-store adapter. The relational database behind it is
// an external collaborator; handlers only see these operations.
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(userID string) (*models.User, error)
	UpdateUserPassword(email, passwordHash string) error

	// Seller operations
	CreateSeller(seller *models.Seller) (*models.Seller, error)
	GetSellerByEmail(email string) (*models.Seller, error)
	GetSellerByID(sellerID string) (*models.Seller, error)
	UpdateSellerPassword(email, passwordHash string) error
	UpdateSellerStripeID(sellerID, stripeID string) error

	// Shop operations
	CreateShop(shop *models.Shop) (*models.Shop, error)
	GetShopBySellerID(sellerID string) (*models.Shop, error)
}
