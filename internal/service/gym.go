package service

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/models"
)

// mapsSearchURL is the Google Maps "search" deep link; the query is "lat,lon".
const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// GymView is a gym as returned by the API: the stored columns plus the derived map link.
// GmapsURL is never persisted.
type GymView struct {
	models.Gym
	GmapsURL string `json:"gmaps_url,omitempty"`
}

// MapLink returns the gym with its map link filled in when both coordinates are set,
// and unchanged otherwise. Numbers are written in their shortest decimal form, so
// -7.9 stays "-7.9" rather than "-7.900000".
func MapLink(g models.Gym) GymView {
	view := GymView{Gym: g}
	if !g.HasCoordinates() {
		return view
	}
	view.GmapsURL = mapsSearchURL +
		strconv.FormatFloat(*g.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(*g.Longitude, 'f', -1, 64)
	return view
}

func mapLinks(gyms []models.Gym) []GymView {
	views := make([]GymView, 0, len(gyms))
	for _, g := range gyms {
		views = append(views, MapLink(g))
	}
	return views
}

// CreateGymInput is what a client may supply for a new gym. Only Name and Location
// are required.
type CreateGymInput struct {
	Name      string
	Location  string
	Latitude  *float64
	Longitude *float64
	Address   *string
	PhotoURL  *string
}

func (in *CreateGymInput) validate() error {
	if in.Name == "" || in.Location == "" {
		return validationError("Name and location are required")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return validationError("Latitude must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return validationError("Longitude must be between -180 and 180")
	}
	return nil
}

// GymService lists, searches and creates gyms.
type GymService struct {
	db *gorm.DB
}

// NewGymService returns a GymService backed by db.
func NewGymService(db *gorm.DB) *GymService {
	return &GymService{db: db}
}

// List returns every gym that has both coordinates, with map links.
// Gyms stored without a full coordinate pair are left out.
func (s *GymService) List(ctx context.Context) ([]GymView, error) {
	var gyms []models.Gym
	err := s.db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("id").
		Find(&gyms).Error
	if err != nil {
		return nil, storageError("list gyms", err)
	}
	return mapLinks(gyms), nil
}

// Get returns a single gym. A gym without a full coordinate pair is reported as
// not found, same as a missing row.
func (s *GymService) Get(ctx context.Context, id uint) (*GymView, error) {
	var gym models.Gym
	if err := s.db.WithContext(ctx).First(&gym, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Gym not found or has invalid location data")
		}
		return nil, storageError("get gym", err)
	}
	if !gym.HasCoordinates() {
		return nil, notFoundError("Gym not found or has invalid location data")
	}
	view := MapLink(gym)
	return &view, nil
}

// SearchByLocation returns the gyms whose location string equals location exactly.
// No match yields an empty slice, not an error.
func (s *GymService) SearchByLocation(ctx context.Context, location string) ([]GymView, error) {
	var gyms []models.Gym
	err := s.db.WithContext(ctx).
		Where("location = ?", location).
		Order("id").
		Find(&gyms).Error
	if err != nil {
		return nil, storageError("search gyms", err)
	}
	return mapLinks(gyms), nil
}

// Create validates and inserts a gym and returns it with its map link, if any.
func (s *GymService) Create(ctx context.Context, in CreateGymInput) (*GymView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	gym := models.Gym{
		Name:      in.Name,
		Location:  in.Location,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Address:   nonEmpty(in.Address),
		PhotoURL:  nonEmpty(in.PhotoURL),
	}
	if err := s.db.WithContext(ctx).Create(&gym).Error; err != nil {
		return nil, storageError("create gym", err)
	}

	view := MapLink(gym)
	return &view, nil
}

// nonEmpty stores "" as NULL.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
