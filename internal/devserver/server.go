// Package devserver is a self-contained backend for local development and
// end-to-end tests. It serves the same HTTP contract the mobile client talks
// to, backed by the database package and a pluggable detector.
package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/database"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/storage"
)

// Detector produces detection candidates for the photos of one session. The
// dev backend has no real vision model; tests and local runs plug in a stub.
type Detector func(photoFilenames []string) []detection.Candidate

type App struct {
	DB          *database.DB
	Storage     storage.Storage
	Catalog     *database.CatalogRepo
	Locations   *database.LocationRepo
	Users       *database.UserRepo
	Tools       *database.ToolRepo
	Sessions    *database.SessionRepo
	Assignments *database.AssignmentRepo
	Detector    Detector

	MaxUploadSize int64

	mu            sync.Mutex
	accessTokens  map[string]uuid.UUID // access token -> user id
	refreshTokens map[string]uuid.UUID // refresh token -> user id
}

func NewApp(db *database.DB, store storage.Storage, detector Detector) *App {
	return &App{
		DB:            db,
		Storage:       store,
		Catalog:       database.NewCatalogRepo(db),
		Locations:     database.NewLocationRepo(db),
		Users:         database.NewUserRepo(db),
		Tools:         database.NewToolRepo(db),
		Sessions:      database.NewSessionRepo(db),
		Assignments:   database.NewAssignmentRepo(db),
		Detector:      detector,
		MaxUploadSize: 32 << 20,
		accessTokens:  make(map[string]uuid.UUID),
		refreshTokens: make(map[string]uuid.UUID),
	}
}

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/auth/login", app.LoginHandler)
	r.Post("/auth/refresh", app.RefreshHandler)
	r.Post("/auth/revoke", app.RevokeHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuth)

		r.Get("/tool-types", app.ToolTypesHandler)
		r.Get("/brands", app.BrandsHandler)
		r.Get("/models", app.ModelsHandler)
		r.Get("/action-types/by-title/{title}", app.ActionTypeByTitleHandler)

		r.Get("/locations", app.LocationsHandler)
		r.Get("/locations/nearest", app.NearestLocationHandler)
		r.Get("/users", app.UsersHandler)

		r.Get("/tools/search-any", app.SearchAnyToolsHandler)
		r.Get("/tools/search-available", app.SearchAvailableToolsHandler)
		r.Get("/tools/not-returned/user/{userID}", app.TakenToolsHandler)
		r.Get("/tools/not-returned/user/{userID}/search", app.SearchNotReturnedToolsHandler)

		r.Post("/photo-sessions", app.CreatePhotoSessionHandler)
		r.Post("/photos-for-detection", app.UploadPhotoHandler)
		r.Post("/photos-for-detection/detect/{sessionID}", app.DetectHandler)

		r.Post("/detected-tools/batch", app.CreateDetectedToolsHandler)
		r.Post("/tool-assignments/batch", app.CreateAssignmentsHandler)
		r.Get("/tool-assignments/user/{userID}/tool/{toolID}/search-active", app.ActiveAssignmentHandler)
		r.Post("/tool-assignments/batch/return", app.ReturnAssignmentsHandler)
	})

	return r
}

func newToken() string {
	buf := make([]byte, 24)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// issueTokens mints a fresh access/refresh pair for the user.
func (app *App) issueTokens(userID uuid.UUID) (accessToken, refreshToken string) {
	accessToken = newToken()
	refreshToken = newToken()
	app.mu.Lock()
	app.accessTokens[accessToken] = userID
	app.refreshTokens[refreshToken] = userID
	app.mu.Unlock()
	return accessToken, refreshToken
}

// ExpireAccessTokens invalidates every outstanding access token while keeping
// refresh tokens valid. Tests use it to force the client's refresh path.
func (app *App) ExpireAccessTokens() {
	app.mu.Lock()
	app.accessTokens = make(map[string]uuid.UUID)
	app.mu.Unlock()
}

func (app *App) userForAccessToken(token string) (uuid.UUID, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	id, ok := app.accessTokens[token]
	return id, ok
}

func (app *App) consumeRefreshToken(token string) (uuid.UUID, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	id, ok := app.refreshTokens[token]
	if ok {
		delete(app.refreshTokens, token)
	}
	return id, ok
}

func (app *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, ok := app.userForAccessToken(token); !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
