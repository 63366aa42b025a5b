package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

// CatalogRepo serves the reference lists: tool types, brands, models and
// action types.
type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) listTitled(table string) ([]struct {
	ID    uuid.UUID
	Title string
}, error) {
	rows, err := r.db.conn.Query(fmt.Sprintf("SELECT id, title FROM %s ORDER BY title", table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var out []struct {
		ID    uuid.UUID
		Title string
	}
	for rows.Next() {
		var id string
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("bad id in %s: %w", table, err)
		}
		out = append(out, struct {
			ID    uuid.UUID
			Title string
		}{parsed, title})
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListToolTypes() ([]models.ToolType, error) {
	rows, err := r.listTitled("tool_types")
	if err != nil {
		return nil, err
	}
	out := make([]models.ToolType, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ToolType{ID: row.ID, Title: row.Title})
	}
	return out, nil
}

func (r *CatalogRepo) ListBrands() ([]models.Brand, error) {
	rows, err := r.listTitled("brands")
	if err != nil {
		return nil, err
	}
	out := make([]models.Brand, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Brand{ID: row.ID, Title: row.Title})
	}
	return out, nil
}

func (r *CatalogRepo) ListModels() ([]models.Model, error) {
	rows, err := r.listTitled("models")
	if err != nil {
		return nil, err
	}
	out := make([]models.Model, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Model{ID: row.ID, Title: row.Title})
	}
	return out, nil
}

// ActionTypeByTitle looks up an action type by its exact title. Returns nil
// when the title is unknown.
func (r *CatalogRepo) ActionTypeByTitle(title string) (*models.ActionType, error) {
	var id string
	var storedTitle string
	err := r.db.conn.QueryRow("SELECT id, title FROM action_types WHERE LOWER(title) = LOWER(?)", title).Scan(&id, &storedTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action type: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad action type id: %w", err)
	}
	return &models.ActionType{ID: parsed, Title: storedTitle}, nil
}

func (r *CatalogRepo) insertTitled(table string, id uuid.UUID, title string) error {
	_, err := r.db.conn.Exec(fmt.Sprintf("INSERT INTO %s (id, title) VALUES (?, ?)", table), id.String(), title)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (r *CatalogRepo) InsertToolType(entry models.ToolType) error {
	return r.insertTitled("tool_types", entry.ID, entry.Title)
}

func (r *CatalogRepo) InsertBrand(entry models.Brand) error {
	return r.insertTitled("brands", entry.ID, entry.Title)
}

func (r *CatalogRepo) InsertModel(entry models.Model) error {
	return r.insertTitled("models", entry.ID, entry.Title)
}

func (r *CatalogRepo) InsertActionType(entry models.ActionType) error {
	return r.insertTitled("action_types", entry.ID, entry.Title)
}
