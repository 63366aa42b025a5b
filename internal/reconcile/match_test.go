package reconcile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/models"
)

func testCatalog() *models.Catalog {
	return &models.Catalog{
		ToolTypes: []models.ToolType{
			{ID: uuid.New(), Title: "Drill"},
			{ID: uuid.New(), Title: "Angle Grinder"},
		},
		Brands: []models.Brand{
			{ID: uuid.New(), Title: "Bosch"},
			{ID: uuid.New(), Title: "Makita"},
		},
		Models: []models.Model{
			{ID: uuid.New(), Title: "GSB 18V-55"},
		},
	}
}

func TestMatchToolTypeCaseInsensitive(t *testing.T) {
	catalog := testCatalog()

	if match := MatchToolType(catalog, "drill"); match == nil || match.Title != "Drill" {
		t.Errorf("expected case-insensitive match for drill, got %+v", match)
	}
	if match := MatchToolType(catalog, "ANGLE GRINDER"); match == nil {
		t.Error("expected match for ANGLE GRINDER")
	}
	if match := MatchToolType(catalog, "Chainsaw"); match != nil {
		t.Errorf("expected no match for Chainsaw, got %+v", match)
	}
}

func TestMatchBlankLabels(t *testing.T) {
	catalog := testCatalog()

	if match := MatchBrand(catalog, ""); match != nil {
		t.Errorf("blank brand label must not match, got %+v", match)
	}
	if match := MatchBrand(catalog, "   "); match != nil {
		t.Errorf("whitespace brand label must not match, got %+v", match)
	}
	if match := MatchModel(catalog, ""); match != nil {
		t.Errorf("blank model label must not match, got %+v", match)
	}
}

func TestBuildItemsKeepsUnmatched(t *testing.T) {
	catalog := testCatalog()
	sessionID := uuid.New()
	candidates := []detection.Candidate{
		{ToolType: "drill", Brand: "bosch", Model: "gsb 18v-55", Confidence: 0.9},
		{ToolType: "Chainsaw", Brand: "Stihl", Confidence: 0.5, RedFlagged: true},
	}

	items := BuildItems(sessionID, candidates, catalog)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].ToolType == nil || items[0].Brand == nil || items[0].Model == nil {
		t.Errorf("expected full match on first item: %+v", items[0])
	}
	if items[0].PhotoSessionID != sessionID {
		t.Errorf("item not bound to session: %+v", items[0])
	}

	// Unmatched labels stay unselected so the user can fill them in.
	if items[1].ToolType != nil || items[1].Brand != nil {
		t.Errorf("expected unmatched fields to stay nil: %+v", items[1])
	}
	if !items[1].RedFlagged || items[1].Confidence != 0.5 {
		t.Errorf("detection scores must be carried over: %+v", items[1])
	}
}

func TestAutoMatchItemsDropsUnknownTypes(t *testing.T) {
	catalog := testCatalog()
	candidates := []detection.Candidate{
		{ToolType: "Drill", Confidence: 0.9},
		{ToolType: "Chainsaw", Confidence: 0.8},
	}

	items := AutoMatchItems(uuid.New(), candidates, catalog)
	if len(items) != 1 {
		t.Fatalf("expected the unknown type to be dropped, got %d items", len(items))
	}
	if items[0].ToolType.Title != "Drill" {
		t.Errorf("unexpected surviving item: %+v", items[0])
	}
}
