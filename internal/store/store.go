// Package store persists the records the built-in fieldgate tools operate
// on: monitoring facilities and the subject detections recorded at them.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCode is returned when creating a facility whose code is
// already in use.
var ErrDuplicateCode = errors.New("facility code already in use")

// Facility is a monitored field station.
type Facility struct {
	ID        int64
	Name      string
	Code      string
	Region    string
	CreatedAt time.Time
}

// Detection is a single subject detection recorded at a facility. EnteredAt
// and ExitedAt are optional: point detections leave them nil.
type Detection struct {
	ID         int64
	FacilityID int64
	Subject    string
	DetectedAt time.Time
	EnteredAt  *time.Time
	ExitedAt   *time.Time
	Notes      string
}
