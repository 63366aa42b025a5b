package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

// SessionRepo stores photo sessions and the photos uploaded into them.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) InsertSession(session models.PhotoSession) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO photo_sessions (id, latitude, longitude, action_type_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID.String(), session.Latitude, session.Longitude,
		session.ActionTypeID.String(), session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert photo session: %w", err)
	}
	return nil
}

// Session returns the session with the given id, or nil when it does not
// exist.
func (r *SessionRepo) Session(id uuid.UUID) (*models.PhotoSession, error) {
	var session models.PhotoSession
	var rawID, actionTypeID string
	err := r.db.conn.QueryRow(`
		SELECT id, latitude, longitude, action_type_id, created_at
		FROM photo_sessions WHERE id = ?`, id.String()).
		Scan(&rawID, &session.Latitude, &session.Longitude, &actionTypeID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo session: %w", err)
	}
	if session.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("bad photo session id: %w", err)
	}
	if session.ActionTypeID, err = uuid.Parse(actionTypeID); err != nil {
		return nil, fmt.Errorf("bad action type id: %w", err)
	}
	return &session, nil
}

// InsertPhoto records an uploaded photo. Filename is the name under which the
// storage layer keeps the bytes, original name is what the client sent.
func (r *SessionRepo) InsertPhoto(photo models.PhotoForDetection, filename string) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO photos_for_detection (id, photo_session_id, original_name, filename, upload_date)
		VALUES (?, ?, ?, ?, ?)`,
		photo.ID.String(), photo.PhotoSessionID.String(), photo.OriginalName, filename, photo.UploadDate)
	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

// PhotoFilenames returns the stored filenames of all photos in a session in
// upload order.
func (r *SessionRepo) PhotoFilenames(sessionID uuid.UUID) ([]string, error) {
	rows, err := r.db.conn.Query(`
		SELECT filename FROM photos_for_detection
		WHERE photo_session_id = ? ORDER BY upload_date`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var filenames []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, fmt.Errorf("failed to scan photo row: %w", err)
		}
		filenames = append(filenames, filename)
	}
	return filenames, rows.Err()
}
