package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/models"
)

// LocationService reads and creates named locations.
type LocationService struct {
	db *gorm.DB
}

// NewLocationService returns a LocationService backed by db.
func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

// List returns every location. Callers must not rely on the order.
func (s *LocationService) List(ctx context.Context) ([]models.Location, error) {
	locations := make([]models.Location, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&locations).Error; err != nil {
		return nil, storageError("list locations", err)
	}
	return locations, nil
}

// Get returns the location with the given id, or a not-found error.
func (s *LocationService) Get(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	if err := s.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Location not found")
		}
		return nil, storageError("get location", err)
	}
	return &loc, nil
}

// Create inserts a location; the unique index on name rejects duplicates.
func (s *LocationService) Create(ctx context.Context, name string) (*models.Location, error) {
	if name == "" {
		return nil, validationError("Name is required")
	}

	loc := models.Location{Name: name}
	if err := s.db.WithContext(ctx).Create(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("Location already exists")
		}
		return nil, storageError("create location", err)
	}
	return &loc, nil
}
