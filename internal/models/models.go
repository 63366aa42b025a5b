package models

import (
	"time"

	"github.com/google/uuid"
)

// Reference catalog entries. Read-only on the client side, fetched fresh for
// every flow.

type ToolType struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type Brand struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type Model struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// Catalog bundles the three reference lists loaded at the start of a
// confirmation flow.
type Catalog struct {
	ToolTypes []ToolType
	Brands    []Brand
	Models    []Model
}

type ActionType struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type Tool struct {
	ID           uuid.UUID  `json:"id"`
	ToolTypeID   uuid.UUID  `json:"toolTypeId"`
	BrandID      *uuid.UUID `json:"brandId"`
	ModelID      *uuid.UUID `json:"modelId"`
	SerialNumber string     `json:"serialNumber"`
	ToolStatusID uuid.UUID  `json:"toolStatusId"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Location struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	LocationTypeID uuid.UUID `json:"locationTypeId"`
	Address        string    `json:"address"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	RoleID         uuid.UUID `json:"roleId"`
	IsActive       bool      `json:"isActive"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PhotoSession anchors one capture flow. Created by the orchestrator and
// immutable afterwards; every photo and detected tool of the flow references
// it.
type PhotoSession struct {
	ID           uuid.UUID `json:"id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ActionTypeID uuid.UUID `json:"actionTypeId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PhotoForDetection struct {
	ID             uuid.UUID `json:"id"`
	PhotoSessionID uuid.UUID `json:"photoSessionId"`
	OriginalName   string    `json:"originalName"`
	UploadDate     time.Time `json:"uploadDate"`
}

type DetectedTool struct {
	ID             uuid.UUID  `json:"id"`
	PhotoSessionID uuid.UUID  `json:"photoSessionId"`
	ToolTypeID     uuid.UUID  `json:"toolTypeId"`
	BrandID        *uuid.UUID `json:"brandId"`
	ModelID        *uuid.UUID `json:"modelId"`
	SerialNumber   string     `json:"serialNumber"`
	Confidence     float64    `json:"confidence"`
	RedFlagged     bool       `json:"redFlagged"`
}

// ToolAssignment records a checked-out tool. An assignment with a non-nil
// ReturnedAt is closed and must never be closed twice.
type ToolAssignment struct {
	ID                     uuid.UUID  `json:"id"`
	TakenDetectedToolID    uuid.UUID  `json:"takenDetectedToolId"`
	ReturnedDetectedToolID *uuid.UUID `json:"returnedDetectedToolId"`
	ToolID                 uuid.UUID  `json:"toolId"`
	UserID                 uuid.UUID  `json:"userId"`
	TakenLocationID        uuid.UUID  `json:"takenLocationId"`
	ReturnedLocationID     *uuid.UUID `json:"returnedLocationId"`
	TakenAt                time.Time  `json:"takenAt"`
	ReturnedAt             *time.Time `json:"returnedAt"`
}

// AuthResponse is what the backend returns from login and refresh calls.
type AuthResponse struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	RoleID         uuid.UUID `json:"roleId"`
	IsActive       bool      `json:"isActive"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	AccessToken    string    `json:"accessToken"`
	RefreshToken   string    `json:"refreshToken"`
}

func (a AuthResponse) User() User {
	return User{
		ID:             a.ID,
		FullName:       a.FullName,
		Email:          a.Email,
		RoleID:         a.RoleID,
		IsActive:       a.IsActive,
		EmailConfirmed: a.EmailConfirmed,
	}
}
