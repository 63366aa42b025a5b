package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Insert stores a user with a plaintext password. The dev backend is a local
// fixture, not a production authentication system.
func (r *UserRepo) Insert(user models.User, password string) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO users (id, full_name, email, password, role_id, is_active, email_confirmed, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.FullName, user.Email, password, user.RoleID.String(),
		user.IsActive, user.EmailConfirmed, user.Latitude, user.Longitude, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var id, roleID string
	var latitude, longitude sql.NullFloat64
	if err := row.Scan(&id, &user.FullName, &user.Email, &roleID,
		&user.IsActive, &user.EmailConfirmed, &latitude, &longitude, &user.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad user id: %w", err)
	}
	if user.RoleID, err = uuid.Parse(roleID); err != nil {
		return nil, fmt.Errorf("bad role id: %w", err)
	}
	user.Latitude = scanNullableFloat(latitude)
	user.Longitude = scanNullableFloat(longitude)
	return &user, nil
}

const userColumns = "id, full_name, email, role_id, is_active, email_confirmed, latitude, longitude, created_at"

func (r *UserRepo) List() ([]models.User, error) {
	rows, err := r.db.conn.Query("SELECT " + userColumns + " FROM users ORDER BY full_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Authenticate returns the user matching email and password, or nil when the
// credentials do not match.
func (r *UserRepo) Authenticate(email, password string) (*models.User, error) {
	row := r.db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER(?) AND password = ?",
		email, password)
	user, err := r.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	return user, nil
}
