package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

type ToolRepo struct {
	db *DB
}

func NewToolRepo(db *DB) *ToolRepo {
	return &ToolRepo{db: db}
}

func (r *ToolRepo) Insert(tool models.Tool) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO tools (id, tool_type_id, brand_id, model_id, serial_number, tool_status_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tool.ID.String(), tool.ToolTypeID.String(), nullableID(tool.BrandID), nullableID(tool.ModelID),
		tool.SerialNumber, tool.ToolStatusID.String(), tool.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tool: %w", err)
	}
	return nil
}

// Filter narrows a tool search. Nil fields are not applied.
type Filter struct {
	ToolTypeID *uuid.UUID
	BrandID    *uuid.UUID
	ModelID    *uuid.UUID
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.ToolTypeID != nil {
		clauses = append(clauses, "t.tool_type_id = ?")
		args = append(args, f.ToolTypeID.String())
	}
	if f.BrandID != nil {
		clauses = append(clauses, "t.brand_id = ?")
		args = append(args, f.BrandID.String())
	}
	if f.ModelID != nil {
		clauses = append(clauses, "t.model_id = ?")
		args = append(args, f.ModelID.String())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func (r *ToolRepo) query(condition string, args []any) ([]models.Tool, error) {
	rows, err := r.db.conn.Query(`
		SELECT t.id, t.tool_type_id, t.brand_id, t.model_id, t.serial_number, t.tool_status_id, t.created_at
		FROM tools t WHERE 1=1`+condition+" ORDER BY t.created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search tools: %w", err)
	}
	defer rows.Close()

	var tools []models.Tool
	for rows.Next() {
		var tool models.Tool
		var id, toolTypeID, toolStatusID string
		var brandID, modelID, serial sql.NullString
		if err := rows.Scan(&id, &toolTypeID, &brandID, &modelID, &serial, &toolStatusID, &tool.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tool: %w", err)
		}
		if tool.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad tool id: %w", err)
		}
		if tool.ToolTypeID, err = uuid.Parse(toolTypeID); err != nil {
			return nil, fmt.Errorf("bad tool type id: %w", err)
		}
		if tool.ToolStatusID, err = uuid.Parse(toolStatusID); err != nil {
			return nil, fmt.Errorf("bad tool status id: %w", err)
		}
		tool.BrandID = scanNullableID(brandID)
		tool.ModelID = scanNullableID(modelID)
		tool.SerialNumber = serial.String
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// SearchAny returns tools regardless of assignment state.
func (r *ToolRepo) SearchAny(filter Filter) ([]models.Tool, error) {
	condition, args := filter.where()
	return r.query(condition, args)
}

// SearchAvailable returns tools without an open assignment.
func (r *ToolRepo) SearchAvailable(filter Filter) ([]models.Tool, error) {
	condition, args := filter.where()
	condition += ` AND NOT EXISTS (
		SELECT 1 FROM tool_assignments a
		WHERE a.tool_id = t.id AND a.returned_at IS NULL)`
	return r.query(condition, args)
}

// SearchNotReturnedByUser returns tools the user currently holds.
func (r *ToolRepo) SearchNotReturnedByUser(userID uuid.UUID, filter Filter) ([]models.Tool, error) {
	condition, args := filter.where()
	condition += ` AND EXISTS (
		SELECT 1 FROM tool_assignments a
		WHERE a.tool_id = t.id AND a.user_id = ? AND a.returned_at IS NULL)`
	args = append(args, userID.String())
	return r.query(condition, args)
}
