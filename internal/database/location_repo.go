package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

type LocationRepo struct {
	db *DB
}

func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(location models.Location) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO locations (id, name, location_type_id, address, latitude, longitude, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		location.ID.String(), location.Name, location.LocationTypeID.String(), location.Address,
		location.Latitude, location.Longitude, location.IsActive, location.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) List() ([]models.Location, error) {
	rows, err := r.db.conn.Query(`
		SELECT id, name, location_type_id, address, latitude, longitude, is_active, created_at
		FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var location models.Location
		var id, locationTypeID string
		if err := rows.Scan(&id, &location.Name, &locationTypeID, &location.Address,
			&location.Latitude, &location.Longitude, &location.IsActive, &location.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		if location.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad location id: %w", err)
		}
		if location.LocationTypeID, err = uuid.Parse(locationTypeID); err != nil {
			return nil, fmt.Errorf("bad location type id: %w", err)
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}

// Nearest returns the active location closest to the given point, or nil when
// there are no active locations. Squared euclidean distance is good enough
// for a dev fixture.
func (r *LocationRepo) Nearest(latitude, longitude float64) (*models.Location, error) {
	locations, err := r.List()
	if err != nil {
		return nil, err
	}

	var nearest *models.Location
	var best float64
	for i := range locations {
		if !locations[i].IsActive {
			continue
		}
		dLat := locations[i].Latitude - latitude
		dLng := locations[i].Longitude - longitude
		distance := dLat*dLat + dLng*dLng
		if nearest == nil || distance < best {
			nearest = &locations[i]
			best = distance
		}
	}
	return nearest, nil
}
