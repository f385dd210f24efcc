// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column name, constraints, and nullability.
//
// The data model is intentionally flat:
//   - Users register and log in; each login stores a fresh token on the user row
//   - Locations are named cities/areas shown in the app's picker
//   - Gyms carry their location as a plain string, not a foreign key to Locations
//
// The tables themselves are created by the SQL migrations in internal/database/migrations;
// these structs only have to agree with them.
package models

import "time"

// User represents a registered person in the system.
// Password holds a bcrypt hash, never the plain text.
// Token and TokenIssuedAt together form the user's single session: every login
// overwrites both, which invalidates whatever token was issued before.
type User struct {
	ID            uint       `gorm:"primaryKey"`
	Username      string     `gorm:"uniqueIndex;not null"`
	Password      string     `gorm:"not null"`
	Token         *string    // nil until the first successful login
	TokenIssuedAt *time.Time // when Token was issued
}

// Location is a named area (e.g. "Malang") users can browse gyms by.
// The unique index on Name is what rejects duplicates; handlers don't pre-check.
type Location struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Gym is a single gym listing.
// Pointer fields are nullable columns: a gym may be stored without coordinates,
// address or photo, in which case the JSON carries null.
type Gym struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"not null" json:"name"`
	Location  string   `gorm:"not null;index" json:"location"` // Denormalized; matched by exact string equality
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
	PhotoURL  *string  `gorm:"column:photo_url" json:"photoUrl"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (g *Gym) HasCoordinates() bool {
	return g.Latitude != nil && g.Longitude != nil
}
