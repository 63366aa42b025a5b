package devserver

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/toolsnap/toolsnap/internal/auth"
	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/database"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/flow"
	"github.com/toolsnap/toolsnap/internal/reconcile"
	"github.com/toolsnap/toolsnap/internal/storage"
)

type memoryPhoto struct {
	name string
	data string
}

func (p memoryPhoto) Name() string { return p.name }

func (p memoryPhoto) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte(p.data))), nil
}

func setupBackend(t *testing.T, detector Detector) (*httptest.Server, *App, *SeedData) {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDB(database.Config{Type: "sqlite", SQLitePath: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	app := NewApp(db, store, detector)
	seeded, err := Seed(db)
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	server := httptest.NewServer(NewRouter(app))
	t.Cleanup(server.Close)
	return server, app, seeded
}

func signIn(t *testing.T, server *httptest.Server, seeded *SeedData, dir string) (*client.Client, *auth.FileStore) {
	t.Helper()
	store, err := auth.NewFileStore(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("failed to create token store: %v", err)
	}
	api := client.New(server.URL, store)

	resp, err := api.Login(context.Background(), seeded.User.Email, seeded.Password)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := store.SetUser(resp.User()); err != nil {
		t.Fatalf("failed to persist user: %v", err)
	}
	return api, store
}

func runCapture(t *testing.T, api *client.Client, action flow.Action) (*flow.Orchestrator, flow.CaptureResult, []detection.Candidate) {
	t.Helper()
	orchestrator := flow.NewOrchestrator(api, nil)
	capture := orchestrator.Run(context.Background(), action, []flow.Photo{
		memoryPhoto{name: "bench.jpg", data: "jpeg bytes"},
	})
	if !capture.Success {
		t.Fatalf("capture failed: %s", capture.ErrorMessage)
	}
	candidates, err := detection.Parse(capture.DetectionRawJSON)
	if err != nil {
		t.Fatalf("detection payload unusable: %v", err)
	}
	return orchestrator, capture, candidates
}

func TestTakeAndReturnEndToEnd(t *testing.T) {
	detector := func(photos []string) []detection.Candidate {
		return []detection.Candidate{{ToolType: "Drill", Brand: "Bosch", Confidence: 0.93}}
	}
	server, app, seeded := setupBackend(t, detector)
	ctx := context.Background()
	api, store := signIn(t, server, seeded, t.TempDir())
	userID := store.CurrentUser().ID

	// Take flow: one photo, one detected drill. The holder carries the capture
	// over to the confirmation step.
	_, capture, candidates := runCapture(t, api, flow.ActionTake)
	if len(candidates) != 1 || candidates[0].ToolType != "Drill" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}

	var pending flow.Holder
	pending.Set(capture.Session, candidates)
	session, detections, ok := pending.Current()
	if !ok {
		t.Fatal("expected a pending capture in the holder")
	}

	confirmation, err := flow.BeginConfirmation(ctx, api, flow.ActionTake, userID, session, detections)
	if err != nil {
		t.Fatalf("confirmation failed to start: %v", err)
	}
	if len(confirmation.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(confirmation.Items))
	}
	item := confirmation.Items[0]
	if item.ToolType == nil || item.ToolType.ID != seeded.Drill.ID {
		t.Fatalf("drill label not reconciled: %+v", item)
	}
	if item.Brand == nil || item.Brand.ID != seeded.Bosch.ID {
		t.Fatalf("brand label not reconciled: %+v", item)
	}
	// Two available drills, so no auto-selection. Pick one by serial.
	if item.Tool != nil {
		t.Fatalf("no tool should be auto-selected with two candidates: %+v", item.Tool)
	}
	if len(item.Candidates) != 2 {
		t.Fatalf("expected both seeded drills as candidates, got %d", len(item.Candidates))
	}

	if err := confirmation.Apply(ctx, 0, reconcile.FieldSerialNumber, "DRL-0001"); err != nil {
		t.Fatalf("serial edit failed: %v", err)
	}
	// Serial edits do not re-query; force a refresh through a brand re-select.
	if err := confirmation.Apply(ctx, 0, reconcile.FieldBrand, confirmation.Items[0].Brand); err != nil {
		t.Fatalf("brand edit failed: %v", err)
	}
	if confirmation.Items[0].Tool == nil || confirmation.Items[0].Tool.ID != seeded.DrillTool.ID {
		t.Fatalf("serial match did not select the drill: %+v", confirmation.Items[0].Tool)
	}

	committer := flow.NewCommitter(api)
	result := committer.ConfirmTake(ctx, userID, confirmation.Session, confirmation.Items)
	if !result.Success {
		t.Fatalf("take commit failed: %s", result.ErrorMessage)
	}
	pending.Clear()
	if _, _, ok := pending.Current(); ok {
		t.Fatal("holder must be empty after the commit")
	}

	// The holdings listing shows the taken drill without any filter.
	taken, err := api.TakenTools(ctx, userID)
	if err != nil {
		t.Fatalf("taken tools listing failed: %v", err)
	}
	if len(taken) != 1 || taken[0].ID != seeded.DrillTool.ID {
		t.Fatalf("expected the taken drill in the holdings listing, got %+v", taken)
	}

	assignment, err := app.Assignments.ActiveAssignment(userID, seeded.DrillTool.ID)
	if err != nil {
		t.Fatalf("assignment lookup failed: %v", err)
	}
	if assignment == nil {
		t.Fatal("expected an open assignment after the take commit")
	}
	if assignment.TakenLocationID != seeded.Depot.ID {
		t.Errorf("assignment not at the nearest location: %+v", assignment)
	}

	// The taken drill must no longer be available.
	available, err := app.Tools.SearchAvailable(database.Filter{ToolTypeID: &seeded.Drill.ID})
	if err != nil {
		t.Fatalf("available search failed: %v", err)
	}
	if len(available) != 1 || available[0].ID != seeded.SpareTool.ID {
		t.Fatalf("expected only the spare drill available, got %+v", available)
	}

	// Return flow for the same drill.
	_, returnCapture, returnCandidates := runCapture(t, api, flow.ActionReturn)
	returnConfirmation, err := flow.BeginConfirmation(ctx, api, flow.ActionReturn, userID, returnCapture.Session, returnCandidates)
	if err != nil {
		t.Fatalf("return confirmation failed to start: %v", err)
	}
	// The user holds exactly one drill, so it auto-selects.
	if returnConfirmation.Items[0].Tool == nil || returnConfirmation.Items[0].Tool.ID != seeded.DrillTool.ID {
		t.Fatalf("held drill not auto-selected on return: %+v", returnConfirmation.Items[0].Tool)
	}

	result = committer.ConfirmReturn(ctx, userID, returnConfirmation.Session, returnConfirmation.Items)
	if !result.Success {
		t.Fatalf("return commit failed: %s", result.ErrorMessage)
	}

	closed, err := app.Assignments.ActiveAssignment(userID, seeded.DrillTool.ID)
	if err != nil {
		t.Fatalf("assignment lookup failed: %v", err)
	}
	if closed != nil {
		t.Errorf("assignment still open after return: %+v", closed)
	}

	taken, err = api.TakenTools(ctx, userID)
	if err != nil {
		t.Fatalf("taken tools listing failed: %v", err)
	}
	if len(taken) != 0 {
		t.Errorf("holdings listing must be empty after the return, got %+v", taken)
	}

	// A second return of the same capture must fail on the guard.
	result = committer.ConfirmReturn(ctx, userID, returnConfirmation.Session, returnConfirmation.Items)
	if result.Success {
		t.Error("expected the double return to fail")
	}
}

func TestExpiredTokenIsRefreshedTransparently(t *testing.T) {
	detector := func(photos []string) []detection.Candidate { return nil }
	server, app, seeded := setupBackend(t, detector)
	api, _ := signIn(t, server, seeded, t.TempDir())

	app.ExpireAccessTokens()

	// The expired access token triggers a 401; the transport refreshes and
	// retries without surfacing an error.
	catalog, err := api.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("catalog load failed after token expiry: %v", err)
	}
	if len(catalog.ToolTypes) != 2 {
		t.Errorf("unexpected catalog: %+v", catalog.ToolTypes)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	detector := func(photos []string) []detection.Candidate { return nil }
	server, app, seeded := setupBackend(t, detector)
	api, store := signIn(t, server, seeded, t.TempDir())

	refreshToken := store.RefreshToken()
	api.Logout(context.Background())

	if store.AccessToken() != "" || store.RefreshToken() != "" {
		t.Error("local credentials must be cleared on logout")
	}
	if _, ok := app.consumeRefreshToken(refreshToken); ok {
		t.Error("refresh token must be revoked server-side")
	}
}
