// Package reconcile matches free-text detection labels against the reference
// catalog and manages the per-item confirmation state.
package reconcile

import (
	"strings"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/models"
)

// MatchToolType resolves a detection label to a catalog tool type by exact
// case-insensitive title match. Returns nil when nothing matches.
func MatchToolType(catalog *models.Catalog, label string) *models.ToolType {
	for i := range catalog.ToolTypes {
		if strings.EqualFold(catalog.ToolTypes[i].Title, label) {
			return &catalog.ToolTypes[i]
		}
	}
	return nil
}

// MatchBrand resolves a brand label. A blank label yields no match.
func MatchBrand(catalog *models.Catalog, label string) *models.Brand {
	if strings.TrimSpace(label) == "" {
		return nil
	}
	for i := range catalog.Brands {
		if strings.EqualFold(catalog.Brands[i].Title, label) {
			return &catalog.Brands[i]
		}
	}
	return nil
}

// MatchModel resolves a model label. A blank label yields no match.
func MatchModel(catalog *models.Catalog, label string) *models.Model {
	if strings.TrimSpace(label) == "" {
		return nil
	}
	for i := range catalog.Models {
		if strings.EqualFold(catalog.Models[i].Title, label) {
			return &catalog.Models[i]
		}
	}
	return nil
}

// BuildItems maps detection candidates to confirmation items for the
// interactive path. Labels that match nothing leave the corresponding field
// unselected for the user to fill in.
func BuildItems(sessionID uuid.UUID, candidates []detection.Candidate, catalog *models.Catalog) []Item {
	items := make([]Item, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, Item{
			PhotoSessionID: sessionID,
			Confidence:     candidate.Confidence,
			RedFlagged:     candidate.RedFlagged,
			ToolType:       MatchToolType(catalog, candidate.ToolType),
			Brand:          MatchBrand(catalog, candidate.Brand),
			Model:          MatchModel(catalog, candidate.Model),
		})
	}
	return items
}

// AutoMatchItems maps candidates for the unattended batch path. Unlike the
// interactive path, a candidate whose tool type has no catalog match is
// dropped entirely.
func AutoMatchItems(sessionID uuid.UUID, candidates []detection.Candidate, catalog *models.Catalog) []Item {
	items := make([]Item, 0, len(candidates))
	for _, candidate := range candidates {
		toolType := MatchToolType(catalog, candidate.ToolType)
		if toolType == nil {
			continue
		}
		items = append(items, Item{
			PhotoSessionID: sessionID,
			Confidence:     candidate.Confidence,
			RedFlagged:     candidate.RedFlagged,
			ToolType:       toolType,
			Brand:          MatchBrand(catalog, candidate.Brand),
			Model:          MatchModel(catalog, candidate.Model),
		})
	}
	return items
}
