package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshop/backend/internal/models"
)

// MemoryStore holds all data in memory. It substitutes for Postgres in tests
// and when USE_MEMORY_STORE=true.
type MemoryStore struct {
	users   map[string]*models.User   // keyed by email
	sellers map[string]*models.Seller // keyed by email
	shops   map[string]*models.Shop   // keyed by seller id

	// Mutexes for thread safety
	userMu   sync.RWMutex
	sellerMu sync.RWMutex
	shopMu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*models.User),
		sellers: make(map[string]*models.Seller),
		shops:   make(map[string]*models.Shop),
	}
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	m.users[user.Email] = user
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByID(userID string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.UserID == userID {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUserPassword(email, passwordHash string) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	user.Password = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

// Seller operations

func (m *MemoryStore) CreateSeller(seller *models.Seller) (*models.Seller, error) {
	m.sellerMu.Lock()
	defer m.sellerMu.Unlock()

	if seller.SellerID == "" {
		seller.SellerID = uuid.New().String()
	}
	seller.CreatedAt = time.Now()
	seller.UpdatedAt = time.Now()

	m.sellers[seller.Email] = seller
	return seller, nil
}

func (m *MemoryStore) GetSellerByEmail(email string) (*models.Seller, error) {
	m.sellerMu.RLock()
	defer m.sellerMu.RUnlock()

	seller, ok := m.sellers[email]
	if !ok {
		return nil, ErrNotFound
	}
	m.attachShop(seller)
	return seller, nil
}

func (m *MemoryStore) GetSellerByID(sellerID string) (*models.Seller, error) {
	m.sellerMu.RLock()
	defer m.sellerMu.RUnlock()

	for _, seller := range m.sellers {
		if seller.SellerID == sellerID {
			m.attachShop(seller)
			return seller, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateSellerPassword(email, passwordHash string) error {
	m.sellerMu.Lock()
	defer m.sellerMu.Unlock()

	seller, ok := m.sellers[email]
	if !ok {
		return ErrNotFound
	}
	seller.Password = passwordHash
	seller.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) UpdateSellerStripeID(sellerID, stripeID string) error {
	m.sellerMu.Lock()
	defer m.sellerMu.Unlock()

	for _, seller := range m.sellers {
		if seller.SellerID == sellerID {
			seller.StripeID = stripeID
			seller.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

// Shop operations

func (m *MemoryStore) CreateShop(shop *models.Shop) (*models.Shop, error) {
	m.shopMu.Lock()
	defer m.shopMu.Unlock()

	if shop.ShopID == "" {
		shop.ShopID = uuid.New().String()
	}
	shop.CreatedAt = time.Now()
	shop.UpdatedAt = time.Now()

	m.shops[shop.SellerID] = shop
	return shop, nil
}

func (m *MemoryStore) GetShopBySellerID(sellerID string) (*models.Shop, error) {
	m.shopMu.RLock()
	defer m.shopMu.RUnlock()

	shop, ok := m.shops[sellerID]
	if !ok {
		return nil, ErrNotFound
	}
	return shop, nil
}

func (m *MemoryStore) attachShop(seller *models.Seller) {
	m.shopMu.RLock()
	defer m.shopMu.RUnlock()

	if shop, ok := m.shops[seller.SellerID]; ok {
		seller.Shop = shop
	}
}
