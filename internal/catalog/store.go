package catalog

import (
	"strings"
	"sync"
	"time"

	"productcatalog/pkg/models"
)

// Store holds the catalog in memory for request handlers. The file is only
// read on Reload.
type Store struct {
	path string

	mu       sync.RWMutex
	products []models.Product
	loadedAt time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, products: []models.Product{}}
}

func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the catalog file. On error the previous contents are kept.
func (s *Store) Reload() (int, error) {
	products, _, err := LoadFile(s.path)
	if err != nil {
		return 0, err
	}
	s.Set(products)
	return len(products), nil
}

// Set replaces the in-memory catalog.
func (s *Store) Set(products []models.Product) {
	cp := make([]models.Product, len(products))
	copy(cp, products)

	s.mu.Lock()
	s.products = cp
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ByType filters on type, case-insensitively. An empty type returns all.
func (s *Store) ByType(productType string) []models.Product {
	filter := strings.ToLower(strings.TrimSpace(productType))
	if filter == "" {
		return s.All()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if strings.ToLower(p.Type) == filter {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) ByID(id int) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
