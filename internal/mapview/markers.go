// Package mapview assembles map markers from users, locations and tools.
// Tile rendering is a platform concern; this package only produces marker
// data.
package mapview

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/models"
)

type MarkerKind string

const (
	KindUser     MarkerKind = "user"
	KindLocation MarkerKind = "location"
	KindTool     MarkerKind = "tool"
)

type Marker struct {
	ID        string
	Kind      MarkerKind
	Latitude  float64
	Longitude float64
	Title     string
	Subtitle  string
}

// AvailabilityFilter narrows which tools show up on the map.
type AvailabilityFilter int

const (
	FilterAll AvailabilityFilter = iota
	FilterAvailable
	FilterNotReturned
)

type Service struct {
	api *client.Client
}

func NewService(api *client.Client) *Service {
	return &Service{api: api}
}

// LoadMarkers fetches users and locations concurrently, loads tools per the
// availability filter, and flattens everything into marker records labelled
// with catalog titles. Tools carry no coordinate of their own yet, so tool
// markers are pinned to the first known location.
func (s *Service) LoadMarkers(ctx context.Context, filter AvailabilityFilter, toolTypeID, brandID *uuid.UUID, currentUserID *uuid.UUID) ([]Marker, error) {
	var (
		users     []models.User
		locations []models.Location
	)
	errc := make(chan error, 2)
	go func() {
		var err error
		users, err = s.api.Users(ctx)
		errc <- err
	}()
	go func() {
		var err error
		locations, err = s.api.Locations(ctx)
		errc <- err
	}()
	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	tools := s.loadTools(ctx, filter, toolTypeID, brandID, currentUserID)

	catalog, err := s.api.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	markers := make([]Marker, 0, len(users)+len(locations)+len(tools))
	markers = append(markers, userMarkers(users)...)
	markers = append(markers, locationMarkers(locations)...)
	markers = append(markers, toolMarkers(tools, locations, catalog)...)
	return markers, nil
}

func (s *Service) loadTools(ctx context.Context, filter AvailabilityFilter, toolTypeID, brandID *uuid.UUID, currentUserID *uuid.UUID) []models.Tool {
	switch filter {
	case FilterAvailable:
		return s.api.SearchAvailableTools(ctx, toolTypeID, brandID, nil)
	case FilterNotReturned:
		if currentUserID != nil {
			tools := s.api.SearchNotReturnedTools(ctx, *currentUserID, toolTypeID, brandID, nil)
			if len(tools) > 0 {
				return tools
			}
		}
		// Without a user to scope to, fall back to an unrestricted search so
		// the map is not empty.
		return s.api.SearchAnyTools(ctx, toolTypeID, brandID, nil)
	default:
		return s.api.SearchAnyTools(ctx, toolTypeID, brandID, nil)
	}
}

func userMarkers(users []models.User) []Marker {
	markers := make([]Marker, 0, len(users))
	for _, u := range users {
		if u.Latitude == nil || u.Longitude == nil {
			continue
		}
		markers = append(markers, Marker{
			ID:        u.ID.String(),
			Kind:      KindUser,
			Latitude:  *u.Latitude,
			Longitude: *u.Longitude,
			Title:     u.FullName,
			Subtitle:  "User",
		})
	}
	return markers
}

func locationMarkers(locations []models.Location) []Marker {
	markers := make([]Marker, 0, len(locations))
	for _, l := range locations {
		subtitle := l.Address
		if subtitle == "" {
			subtitle = "Location"
		}
		markers = append(markers, Marker{
			ID:        l.ID.String(),
			Kind:      KindLocation,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Title:     l.Name,
			Subtitle:  subtitle,
		})
	}
	return markers
}

func toolMarkers(tools []models.Tool, locations []models.Location, catalog *models.Catalog) []Marker {
	if len(locations) == 0 {
		return nil
	}
	base := locations[0]

	typeTitles := make(map[uuid.UUID]string, len(catalog.ToolTypes))
	for _, t := range catalog.ToolTypes {
		typeTitles[t.ID] = t.Title
	}
	brandTitles := make(map[uuid.UUID]string, len(catalog.Brands))
	for _, b := range catalog.Brands {
		brandTitles[b.ID] = b.Title
	}
	modelTitles := make(map[uuid.UUID]string, len(catalog.Models))
	for _, m := range catalog.Models {
		modelTitles[m.ID] = m.Title
	}

	markers := make([]Marker, 0, len(tools))
	for _, tool := range tools {
		typeTitle := typeTitles[tool.ToolTypeID]
		if typeTitle == "" {
			typeTitle = "Tool"
		}
		brandTitle := "Brand"
		if tool.BrandID != nil {
			if title, ok := brandTitles[*tool.BrandID]; ok {
				brandTitle = title
			}
		}

		var parts []string
		if tool.ModelID != nil {
			if title, ok := modelTitles[*tool.ModelID]; ok {
				parts = append(parts, title)
			}
		}
		serial := tool.SerialNumber
		if serial == "" {
			serial = "-"
		}
		parts = append(parts, "SN: "+serial)

		markers = append(markers, Marker{
			ID:        tool.ID.String(),
			Kind:      KindTool,
			Latitude:  base.Latitude,
			Longitude: base.Longitude,
			Title:     fmt.Sprintf("%s (%s)", typeTitle, brandTitle),
			Subtitle:  strings.Join(parts, " • "),
		})
	}
	return markers
}
