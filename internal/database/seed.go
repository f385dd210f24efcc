package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/gym-finder/internal/models"
)

// seedLocations and seedGyms are the demo fixtures for East Java.
var seedLocations = []string{"Sidoarjo", "Surabaya", "Malang"}

type seedGym struct {
	name     string
	location string
	lat, lon float64
}

var seedGyms = []seedGym{
	// Sidoarjo (centre: -7.44, 112.71)
	{"Fitness First Sidoarjo", "Sidoarjo", -7.4451, 112.7153},
	{"Gold's Gym Sidoarjo", "Sidoarjo", -7.4389, 112.7201},
	{"One GOR Sidoarjo", "Sidoarjo", -7.4478, 112.7183},
	{"Deltasari Sport Center", "Sidoarjo", -7.3691, 112.7405},
	{"Planet Fitness Pondok Tjandra", "Sidoarjo", -7.3482, 112.7663},

	// Surabaya (centre: -7.25, 112.75)
	{"Atlas Sports Club", "Surabaya", -7.2798, 112.7565},
	{"Urban Athletes", "Surabaya", -7.2885, 112.7382},
	{"Celebrity Fitness Galaxy Mall", "Surabaya", -7.2759, 112.7845},
	{"Gold's Gym Grand City Mall", "Surabaya", -7.2581, 112.7519},
	{"Fitness First Tunjungan Plaza", "Surabaya", -7.2612, 112.7408},

	// Malang (centre: -7.98, 112.62)
	{"Malang Fitness Center", "Malang", -7.9754, 112.6231},
	{"Universitas Brawijaya Sport Center", "Malang", -7.9536, 112.6146},
	{"MX Mall Fitness", "Malang", -7.9667, 112.6171},
	{"Ijen Fitness Corner", "Malang", -7.9722, 112.6205},
	{"Soehat Gym Center", "Malang", -7.9497, 112.6158},
}

// Seed inserts the fixture locations and gyms, but only when the gyms table is empty.
// It reports whether anything was inserted.
//
// The two batches are not wrapped in a transaction. If the gym batch fails after the
// locations went in, the next start finds zero gyms and tries again; the location batch
// then skips names that already exist instead of failing on the unique index.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Gym{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count gyms: %w", err)
	}
	if count > 0 {
		log.Info("database already contains gyms, skipping seed", zap.Int64("gyms", count))
		return false, nil
	}

	log.Info("database is empty, seeding demo data")

	locations := make([]models.Location, 0, len(seedLocations))
	for _, name := range seedLocations {
		locations = append(locations, models.Location{Name: name})
	}
	// ON CONFLICT DO NOTHING is understood by both SQLite and PostgreSQL.
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&locations).Error; err != nil {
		return false, fmt.Errorf("seed locations: %w", err)
	}

	gyms := make([]models.Gym, 0, len(seedGyms))
	for _, g := range seedGyms {
		lat, lon := g.lat, g.lon
		gyms = append(gyms, models.Gym{
			Name:      g.name,
			Location:  g.location,
			Latitude:  &lat,
			Longitude: &lon,
		})
	}
	if err := db.WithContext(ctx).Create(&gyms).Error; err != nil {
		return false, fmt.Errorf("seed gyms: %w", err)
	}

	log.Info("seeding complete",
		zap.Int("locations", len(locations)),
		zap.Int("gyms", len(gyms)),
	)
	return true, nil
}
