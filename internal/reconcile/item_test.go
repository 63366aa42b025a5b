package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

func makeTool(serial string) models.Tool {
	return models.Tool{
		ID:           uuid.New(),
		ToolTypeID:   uuid.New(),
		SerialNumber: serial,
		ToolStatusID: uuid.New(),
		CreatedAt:    time.Now(),
	}
}

func TestApplySelectionInvalidatesInstances(t *testing.T) {
	tool := makeTool("SN-1")
	item := Item{
		ToolType:     &models.ToolType{ID: uuid.New(), Title: "Drill"},
		Tool:         &tool,
		SerialNumber: "SN-1",
		Candidates:   []models.Tool{tool},
	}

	for _, field := range []Field{FieldToolType, FieldBrand, FieldModel} {
		updated, effect := ApplySelection(item, field, nil)
		if effect != RefreshInstances {
			t.Errorf("field %d: expected RefreshInstances, got %d", field, effect)
		}
		if updated.Tool != nil || updated.Candidates != nil {
			t.Errorf("field %d: instance state must be invalidated: %+v", field, updated)
		}
	}
}

func TestApplySelectionToolCopiesSerial(t *testing.T) {
	tool := makeTool("SN-42")
	item := Item{ToolType: &models.ToolType{ID: uuid.New(), Title: "Drill"}}

	updated, effect := ApplySelection(item, FieldTool, &tool)
	if effect != NoEffect {
		t.Errorf("selecting a tool must not trigger a refresh, got %d", effect)
	}
	if updated.Tool == nil || updated.SerialNumber != "SN-42" {
		t.Errorf("expected serial to be copied from the tool: %+v", updated)
	}

	cleared, _ := ApplySelection(updated, FieldTool, (*models.Tool)(nil))
	if cleared.Tool != nil || cleared.SerialNumber != "" {
		t.Errorf("clearing the tool must clear the serial: %+v", cleared)
	}
}

func TestSetCandidatesSerialMatchWins(t *testing.T) {
	first := makeTool("AAA-1")
	second := makeTool("bbb-2")
	item := Item{SerialNumber: "BBB-2"}

	updated := SetCandidates(item, []models.Tool{first, second})
	if updated.Tool == nil || updated.Tool.ID != second.ID {
		t.Errorf("expected case-insensitive serial match to win: %+v", updated.Tool)
	}
}

func TestSetCandidatesSingleAutoSelect(t *testing.T) {
	only := makeTool("SN-7")

	updated := SetCandidates(Item{}, []models.Tool{only})
	if updated.Tool == nil || updated.Tool.ID != only.ID {
		t.Errorf("sole candidate must be auto-selected: %+v", updated.Tool)
	}
	if updated.SerialNumber != "SN-7" {
		t.Errorf("auto-select must adopt the serial: %q", updated.SerialNumber)
	}

	two := SetCandidates(Item{}, []models.Tool{makeTool("A"), makeTool("B")})
	if two.Tool != nil {
		t.Errorf("two candidates must not auto-select: %+v", two.Tool)
	}
}

func TestSetCandidatesClearsStaleSelection(t *testing.T) {
	old := makeTool("OLD")
	item := Item{Tool: &old}

	updated := SetCandidates(item, []models.Tool{makeTool("NEW-1"), makeTool("NEW-2")})
	if updated.Tool != nil {
		t.Errorf("selection absent from the new list must be cleared: %+v", updated.Tool)
	}

	kept := SetCandidates(Item{Tool: &old}, []models.Tool{old, makeTool("OTHER")})
	if kept.Tool == nil || kept.Tool.ID != old.ID {
		t.Errorf("selection present in the new list must survive: %+v", kept.Tool)
	}
}

type stubSearcher struct {
	tools []models.Tool
	calls int
}

func (s *stubSearcher) SearchInstances(ctx context.Context, toolTypeID uuid.UUID, brandID, modelID *uuid.UUID) []models.Tool {
	s.calls++
	return s.tools
}

func TestRefreshWithoutToolType(t *testing.T) {
	searcher := &stubSearcher{tools: []models.Tool{makeTool("SN-1")}}
	old := makeTool("OLD")

	updated := Refresh(context.Background(), searcher, Item{Tool: &old})
	if searcher.calls != 0 {
		t.Error("item without a tool type must not query instances")
	}
	if updated.Tool != nil || updated.Candidates != nil {
		t.Errorf("expected cleared instance state: %+v", updated)
	}
}

func TestRefreshAppliesAutoSelect(t *testing.T) {
	only := makeTool("SN-9")
	searcher := &stubSearcher{tools: []models.Tool{only}}
	item := Item{ToolType: &models.ToolType{ID: uuid.New(), Title: "Drill"}}

	updated := Refresh(context.Background(), searcher, item)
	if searcher.calls != 1 {
		t.Fatalf("expected one instance query, got %d", searcher.calls)
	}
	if updated.Tool == nil || updated.Tool.ID != only.ID {
		t.Errorf("expected sole candidate auto-selected: %+v", updated.Tool)
	}
}
