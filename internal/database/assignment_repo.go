package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

// AssignmentRepo stores detected tools and tool assignments.
type AssignmentRepo struct {
	db *DB
}

func NewAssignmentRepo(db *DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// InsertDetectedTools stores the batch inside one transaction and returns the
// stored rows in submission order.
func (r *AssignmentRepo) InsertDetectedTools(items []models.DetectedTool) ([]models.DetectedTool, error) {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	out := make([]models.DetectedTool, 0, len(items))
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		_, err := tx.Exec(`
			INSERT INTO detected_tools (id, photo_session_id, tool_type_id, brand_id, model_id, serial_number, confidence, red_flagged)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID.String(), item.PhotoSessionID.String(), item.ToolTypeID.String(),
			nullableID(item.BrandID), nullableID(item.ModelID),
			item.SerialNumber, item.Confidence, item.RedFlagged)
		if err != nil {
			return nil, fmt.Errorf("failed to insert detected tool: %w", err)
		}
		out = append(out, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit detected tools: %w", err)
	}
	return out, nil
}

// InsertAssignments opens one assignment per item inside one transaction.
func (r *AssignmentRepo) InsertAssignments(assignments []models.ToolAssignment) ([]models.ToolAssignment, error) {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	out := make([]models.ToolAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.ID == uuid.Nil {
			assignment.ID = uuid.New()
		}
		if assignment.TakenAt.IsZero() {
			assignment.TakenAt = time.Now().UTC()
		}
		_, err := tx.Exec(`
			INSERT INTO tool_assignments (id, taken_detected_tool_id, returned_detected_tool_id, tool_id, user_id, taken_location_id, returned_location_id, taken_at, returned_at)
			VALUES (?, ?, NULL, ?, ?, ?, NULL, ?, NULL)`,
			assignment.ID.String(), assignment.TakenDetectedToolID.String(),
			assignment.ToolID.String(), assignment.UserID.String(),
			assignment.TakenLocationID.String(), assignment.TakenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert assignment: %w", err)
		}
		out = append(out, assignment)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignments: %w", err)
	}
	return out, nil
}

const assignmentColumns = `id, taken_detected_tool_id, returned_detected_tool_id, tool_id,
	user_id, taken_location_id, returned_location_id, taken_at, returned_at`

func scanAssignment(row interface{ Scan(...any) error }) (*models.ToolAssignment, error) {
	var assignment models.ToolAssignment
	var id, takenDetectedToolID, toolID, userID, takenLocationID string
	var returnedDetectedToolID, returnedLocationID sql.NullString
	var returnedAt sql.NullTime
	if err := row.Scan(&id, &takenDetectedToolID, &returnedDetectedToolID, &toolID,
		&userID, &takenLocationID, &returnedLocationID, &assignment.TakenAt, &returnedAt); err != nil {
		return nil, err
	}
	var err error
	if assignment.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad assignment id: %w", err)
	}
	if assignment.TakenDetectedToolID, err = uuid.Parse(takenDetectedToolID); err != nil {
		return nil, fmt.Errorf("bad taken detected tool id: %w", err)
	}
	if assignment.ToolID, err = uuid.Parse(toolID); err != nil {
		return nil, fmt.Errorf("bad tool id: %w", err)
	}
	if assignment.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("bad user id: %w", err)
	}
	if assignment.TakenLocationID, err = uuid.Parse(takenLocationID); err != nil {
		return nil, fmt.Errorf("bad taken location id: %w", err)
	}
	assignment.ReturnedDetectedToolID = scanNullableID(returnedDetectedToolID)
	assignment.ReturnedLocationID = scanNullableID(returnedLocationID)
	if returnedAt.Valid {
		t := returnedAt.Time
		assignment.ReturnedAt = &t
	}
	return &assignment, nil
}

// ActiveAssignment returns the open assignment of a tool held by the user, or
// nil when there is none. An open assignment has no returned_at.
func (r *AssignmentRepo) ActiveAssignment(userID, toolID uuid.UUID) (*models.ToolAssignment, error) {
	row := r.db.conn.QueryRow(`
		SELECT `+assignmentColumns+` FROM tool_assignments
		WHERE user_id = ? AND tool_id = ? AND returned_at IS NULL
		ORDER BY taken_at DESC LIMIT 1`, userID.String(), toolID.String())
	assignment, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return assignment, nil
}

// CloseAssignment marks one assignment as returned. It refuses to close an
// assignment that is already closed.
func (r *AssignmentRepo) CloseAssignment(assignmentID, locationID, returnedDetectedToolID uuid.UUID, returnedAt time.Time) error {
	result, err := r.db.conn.Exec(`
		UPDATE tool_assignments
		SET returned_location_id = ?, returned_detected_tool_id = ?, returned_at = ?
		WHERE id = ? AND returned_at IS NULL`,
		locationID.String(), returnedDetectedToolID.String(), returnedAt, assignmentID.String())
	if err != nil {
		return fmt.Errorf("failed to close assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check close result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("assignment %s is not open", assignmentID)
	}
	return nil
}
