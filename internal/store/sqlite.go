package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database backing the built-in tools. It is
// constructed once in main and injected into the tools that use it, so
// tests can substitute a throwaway database.
type Store struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS facilities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	code TEXT NOT NULL UNIQUE,
	region TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	facility_id INTEGER NOT NULL REFERENCES facilities(id),
	subject TEXT NOT NULL,
	detected_at TIMESTAMP NOT NULL,
	entered_at TIMESTAMP,
	exited_at TIMESTAMP,
	notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_detections_facility
	ON detections(facility_id, detected_at);
`

// Open opens (creating if necessary) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateFacility inserts a facility. Codes must be unique.
func (s *Store) CreateFacility(ctx context.Context, name, code, region string) (*Facility, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO facilities (name, code, region, created_at) VALUES (?, ?, ?, ?)`,
		name, code, region, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to insert facility: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read facility id: %w", err)
	}
	return &Facility{ID: id, Name: name, Code: code, Region: region, CreatedAt: now}, nil
}

// GetFacility looks up a facility by id.
func (s *Store) GetFacility(ctx context.Context, id int64) (*Facility, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, region, created_at FROM facilities WHERE id = ?`, id)
	return scanFacility(row)
}

// GetFacilityByCode looks up a facility by its unique code.
func (s *Store) GetFacilityByCode(ctx context.Context, code string) (*Facility, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, region, created_at FROM facilities WHERE code = ?`, code)
	return scanFacility(row)
}

// GetFacilityByName looks up a facility by display name.
func (s *Store) GetFacilityByName(ctx context.Context, name string) (*Facility, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, region, created_at FROM facilities WHERE name = ?`, name)
	return scanFacility(row)
}

// ListFacilities returns all facilities in creation order.
func (s *Store) ListFacilities(ctx context.Context) ([]*Facility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, code, region, created_at FROM facilities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer rows.Close()

	var facilities []*Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Code, &f.Region, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		facilities = append(facilities, &f)
	}
	return facilities, rows.Err()
}

// RecordDetection inserts a detection for an existing facility.
func (s *Store) RecordDetection(ctx context.Context, d *Detection) (*Detection, error) {
	if _, err := s.GetFacility(ctx, d.FacilityID); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO detections (facility_id, subject, detected_at, entered_at, exited_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.FacilityID, d.Subject, d.DetectedAt, d.EnteredAt, d.ExitedAt, d.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert detection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read detection id: %w", err)
	}
	out := *d
	out.ID = id
	return &out, nil
}

// ListDetections returns a facility's detections ordered by detection time.
func (s *Store) ListDetections(ctx context.Context, facilityID int64) ([]*Detection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, facility_id, subject, detected_at, entered_at, exited_at, notes
		 FROM detections WHERE facility_id = ? ORDER BY detected_at, id`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		var d Detection
		if err := rows.Scan(&d.ID, &d.FacilityID, &d.Subject, &d.DetectedAt,
			&d.EnteredAt, &d.ExitedAt, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, &d)
	}
	return detections, rows.Err()
}

func scanFacility(row *sql.Row) (*Facility, error) {
	var f Facility
	if err := row.Scan(&f.ID, &f.Name, &f.Code, &f.Region, &f.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan facility: %w", err)
	}
	return &f, nil
}
