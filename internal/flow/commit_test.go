package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/models"
	"github.com/toolsnap/toolsnap/internal/reconcile"
)

type commitBackend struct {
	detectedCalls    int
	assignmentCalls  int
	returnCalls      int
	shortDetected    bool
	activeAssignment *models.ToolAssignment

	lastAssignments []map[string]any
}

func (b *commitBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	location := models.Location{ID: uuid.New(), Name: "Depot", LocationTypeID: uuid.New(),
		Latitude: 1, Longitude: 1, IsActive: true, CreatedAt: time.Now().UTC()}

	mux := http.NewServeMux()
	mux.HandleFunc("/detected-tools/batch", func(w http.ResponseWriter, r *http.Request) {
		b.detectedCalls++
		var req struct {
			Items []models.DetectedTool `json:"items"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		created := make([]models.DetectedTool, 0, len(req.Items))
		for _, item := range req.Items {
			item.ID = uuid.New()
			created = append(created, item)
		}
		if b.shortDetected && len(created) > 0 {
			created = created[:len(created)-1]
		}
		json.NewEncoder(w).Encode(created)
	})
	mux.HandleFunc("/locations/nearest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(location)
	})
	mux.HandleFunc("/tool-assignments/batch/return", func(w http.ResponseWriter, r *http.Request) {
		b.returnCalls++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/tool-assignments/batch", func(w http.ResponseWriter, r *http.Request) {
		b.assignmentCalls++
		var req struct {
			Items []map[string]any `json:"items"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		b.lastAssignments = req.Items
		json.NewEncoder(w).Encode([]models.ToolAssignment{})
	})
	mux.HandleFunc("/tool-assignments/user/", func(w http.ResponseWriter, r *http.Request) {
		if b.activeAssignment == nil {
			http.Error(w, "no active assignment", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(b.activeAssignment)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func confirmedItem(sessionID uuid.UUID, tool *models.Tool) reconcile.Item {
	return reconcile.Item{
		PhotoSessionID: sessionID,
		Confidence:     0.9,
		ToolType:       &models.ToolType{ID: uuid.New(), Title: "Drill"},
		Tool:           tool,
	}
}

func TestConfirmTakeRejectsEmptyList(t *testing.T) {
	backend := &commitBackend{}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	result := committer.ConfirmTake(context.Background(), uuid.New(), session, nil)
	if result.Success {
		t.Fatal("expected rejection of an empty item list")
	}
	if backend.detectedCalls != 0 {
		t.Error("nothing may be persisted for an empty list")
	}
}

func TestConfirmTakeRequiresToolType(t *testing.T) {
	backend := &commitBackend{}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	items := []reconcile.Item{{PhotoSessionID: session.ID}}
	result := committer.ConfirmTake(context.Background(), uuid.New(), session, items)
	if result.Success {
		t.Fatal("expected rejection of an item without a tool type")
	}
	if !strings.Contains(result.ErrorMessage, "tool type") {
		t.Errorf("unexpected error message: %s", result.ErrorMessage)
	}
	if backend.detectedCalls != 0 {
		t.Error("validation must run before the detected-tools batch")
	}
}

func TestConfirmTakeCountMismatchAborts(t *testing.T) {
	backend := &commitBackend{shortDetected: true}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	tool := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "SN-1"}
	items := []reconcile.Item{
		confirmedItem(session.ID, &tool),
		confirmedItem(session.ID, &tool),
	}
	result := committer.ConfirmTake(context.Background(), uuid.New(), session, items)
	if result.Success {
		t.Fatal("expected abort on detected-count mismatch")
	}
	if backend.assignmentCalls != 0 {
		t.Error("assignments must not be created after a count mismatch")
	}
}

func TestConfirmTakePairsPositionally(t *testing.T) {
	backend := &commitBackend{}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}
	userID := uuid.New()

	toolA := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "A"}
	toolB := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "B"}
	items := []reconcile.Item{
		confirmedItem(session.ID, &toolA),
		confirmedItem(session.ID, &toolB),
	}

	result := committer.ConfirmTake(context.Background(), userID, session, items)
	if !result.Success {
		t.Fatalf("take failed: %s", result.ErrorMessage)
	}
	if backend.assignmentCalls != 1 {
		t.Fatalf("expected one assignment batch, got %d", backend.assignmentCalls)
	}
	if len(backend.lastAssignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(backend.lastAssignments))
	}
	if backend.lastAssignments[0]["toolId"] != toolA.ID.String() ||
		backend.lastAssignments[1]["toolId"] != toolB.ID.String() {
		t.Errorf("assignments not paired in item order: %+v", backend.lastAssignments)
	}
}

func TestConfirmTakeRequiresSelectedTool(t *testing.T) {
	backend := &commitBackend{}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	items := []reconcile.Item{confirmedItem(session.ID, nil)}
	result := committer.ConfirmTake(context.Background(), uuid.New(), session, items)
	if result.Success {
		t.Fatal("expected rejection of an item without a selected tool")
	}
	if backend.assignmentCalls != 0 {
		t.Error("no assignment batch may be sent")
	}
}

func TestConfirmReturnAlreadyReturnedAborts(t *testing.T) {
	tool := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "SN-1"}
	returnedAt := time.Now().UTC()
	backend := &commitBackend{
		activeAssignment: &models.ToolAssignment{
			ID:         uuid.New(),
			ToolID:     tool.ID,
			ReturnedAt: &returnedAt,
		},
	}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	items := []reconcile.Item{confirmedItem(session.ID, &tool)}
	result := committer.ConfirmReturn(context.Background(), uuid.New(), session, items)
	if result.Success {
		t.Fatal("expected abort for an already returned assignment")
	}
	if !strings.Contains(result.ErrorMessage, "already returned") {
		t.Errorf("unexpected error message: %s", result.ErrorMessage)
	}
	if backend.returnCalls != 0 {
		t.Error("return batch must not be sent after the guard failed")
	}
}

func TestConfirmReturnToolMismatchAborts(t *testing.T) {
	tool := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "SN-1"}
	backend := &commitBackend{
		activeAssignment: &models.ToolAssignment{
			ID:     uuid.New(),
			ToolID: uuid.New(), // different tool
		},
	}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	items := []reconcile.Item{confirmedItem(session.ID, &tool)}
	result := committer.ConfirmReturn(context.Background(), uuid.New(), session, items)
	if result.Success {
		t.Fatal("expected abort on a tool id mismatch")
	}
	if backend.returnCalls != 0 {
		t.Error("return batch must not be sent after the guard failed")
	}
}

func TestConfirmReturnNoActiveAssignment(t *testing.T) {
	tool := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "SN-1"}
	backend := &commitBackend{}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	items := []reconcile.Item{confirmedItem(session.ID, &tool)}
	result := committer.ConfirmReturn(context.Background(), uuid.New(), session, items)
	if result.Success {
		t.Fatal("expected abort when no active assignment exists")
	}
	if backend.returnCalls != 0 {
		t.Error("return batch must not be sent")
	}
}

func TestConfirmReturnHappyPath(t *testing.T) {
	tool := models.Tool{ID: uuid.New(), ToolTypeID: uuid.New(), SerialNumber: "SN-1"}
	backend := &commitBackend{
		activeAssignment: &models.ToolAssignment{
			ID:     uuid.New(),
			ToolID: tool.ID,
		},
	}
	api := client.New(backend.server(t).URL, noTokens{})
	committer := NewCommitter(api)
	session := &models.PhotoSession{ID: uuid.New()}

	items := []reconcile.Item{confirmedItem(session.ID, &tool)}
	result := committer.ConfirmReturn(context.Background(), uuid.New(), session, items)
	if !result.Success {
		t.Fatalf("return failed: %s", result.ErrorMessage)
	}
	if backend.returnCalls != 1 {
		t.Errorf("expected one return batch, got %d", backend.returnCalls)
	}
}
