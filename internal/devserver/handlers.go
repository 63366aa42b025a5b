package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/database"
	"github.com/toolsnap/toolsnap/internal/models"
	"github.com/toolsnap/toolsnap/internal/storage"
)

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Auth

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (app *App) authResponse(user *models.User) models.AuthResponse {
	accessToken, refreshToken := app.issueTokens(user.ID)
	return models.AuthResponse{
		ID:             user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		RoleID:         user.RoleID,
		IsActive:       user.IsActive,
		EmailConfirmed: user.EmailConfirmed,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
	}
}

func (app *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := app.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, app.authResponse(user))
}

func (app *App) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID, ok := app.consumeRefreshToken(req.RefreshToken)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	users, err := app.Users.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range users {
		if users[i].ID == userID {
			writeJSON(w, http.StatusOK, app.authResponse(&users[i]))
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "unknown user")
}

func (app *App) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app.consumeRefreshToken(req.RefreshToken)
	w.WriteHeader(http.StatusNoContent)
}

// Catalog

func (app *App) ToolTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := app.Catalog.ListToolTypes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (app *App) BrandsHandler(w http.ResponseWriter, r *http.Request) {
	brands, err := app.Catalog.ListBrands()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (app *App) ModelsHandler(w http.ResponseWriter, r *http.Request) {
	modelList, err := app.Catalog.ListModels()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, modelList)
}

func (app *App) ActionTypeByTitleHandler(w http.ResponseWriter, r *http.Request) {
	actionType, err := app.Catalog.ActionTypeByTitle(chi.URLParam(r, "title"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if actionType == nil {
		writeError(w, http.StatusNotFound, "unknown action type")
		return
	}
	writeJSON(w, http.StatusOK, actionType)
}

// Locations and users

func (app *App) LocationsHandler(w http.ResponseWriter, r *http.Request) {
	locations, err := app.Locations.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (app *App) NearestLocationHandler(w http.ResponseWriter, r *http.Request) {
	latitude, errLat := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	longitude, errLng := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	nearest, err := app.Locations.Nearest(latitude, longitude)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if nearest == nil {
		writeError(w, http.StatusNotFound, "no active locations")
		return
	}
	writeJSON(w, http.StatusOK, nearest)
}

func (app *App) UsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.Users.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Tool search

func searchFilter(r *http.Request) database.Filter {
	var filter database.Filter
	if id, err := uuid.Parse(r.URL.Query().Get("toolTypeId")); err == nil {
		filter.ToolTypeID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("brandId")); err == nil {
		filter.BrandID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("modelId")); err == nil {
		filter.ModelID = &id
	}
	return filter
}

func writeTools(w http.ResponseWriter, tools []models.Tool, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tools == nil {
		tools = []models.Tool{}
	}
	writeJSON(w, http.StatusOK, tools)
}

func (app *App) SearchAnyToolsHandler(w http.ResponseWriter, r *http.Request) {
	tools, err := app.Tools.SearchAny(searchFilter(r))
	writeTools(w, tools, err)
}

func (app *App) SearchAvailableToolsHandler(w http.ResponseWriter, r *http.Request) {
	filter := searchFilter(r)
	if filter.ToolTypeID == nil {
		writeError(w, http.StatusBadRequest, "toolTypeId is required")
		return
	}
	tools, err := app.Tools.SearchAvailable(filter)
	writeTools(w, tools, err)
}

// TakenToolsHandler lists everything the user currently holds, unfiltered.
func (app *App) TakenToolsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad user id")
		return
	}
	tools, listErr := app.Tools.SearchNotReturnedByUser(userID, database.Filter{})
	writeTools(w, tools, listErr)
}

func (app *App) SearchNotReturnedToolsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad user id")
		return
	}
	filter := searchFilter(r)
	if filter.ToolTypeID == nil {
		writeError(w, http.StatusBadRequest, "toolTypeId is required")
		return
	}
	tools, searchErr := app.Tools.SearchNotReturnedByUser(userID, filter)
	writeTools(w, tools, searchErr)
}

// Sessions and photos

type createSessionRequest struct {
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ActionTypeID uuid.UUID `json:"actionTypeId"`
}

func (app *App) CreatePhotoSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ActionTypeID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "actionTypeId is required")
		return
	}
	session := models.PhotoSession{
		ID:           uuid.New(),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ActionTypeID: req.ActionTypeID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := app.Sessions.InsertSession(session); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (app *App) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)
	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large")
		return
	}

	sessionID, err := uuid.Parse(r.FormValue("PhotoSessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "PhotoSessionId is required")
		return
	}
	session, err := app.Sessions.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown photo session")
		return
	}

	file, header, err := r.FormFile("File")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	photo := models.PhotoForDetection{
		ID:             uuid.New(),
		PhotoSessionID: sessionID,
		OriginalName:   header.Filename,
		UploadDate:     time.Now().UTC(),
	}
	if err := app.Sessions.InsertPhoto(photo, filename); err != nil {
		app.Storage.DeleteFile(filename)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// DetectHandler runs the detector over the session's photos and answers with
// the nested document the mobile parser expects: an outer JSON object whose
// detection field is the inner result serialized to a string.
func (app *App) DetectHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad session id")
		return
	}
	session, err := app.Sessions.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "unknown photo session")
		return
	}
	filenames, err := app.Sessions.PhotoFilenames(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	candidates := app.Detector(filenames)
	inner, err := json.Marshal(map[string]any{"detections": candidates})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode detections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detection": string(inner)})
}

// Detected tools and assignments

type detectedToolItem struct {
	PhotoSessionID uuid.UUID  `json:"photoSessionId"`
	ToolTypeID     uuid.UUID  `json:"toolTypeId"`
	BrandID        *uuid.UUID `json:"brandId"`
	ModelID        *uuid.UUID `json:"modelId"`
	SerialNumber   string     `json:"serialNumber"`
	Confidence     float64    `json:"confidence"`
	RedFlagged     bool       `json:"redFlagged"`
}

type detectedToolsBatchRequest struct {
	Items []detectedToolItem `json:"items"`
}

func (app *App) CreateDetectedToolsHandler(w http.ResponseWriter, r *http.Request) {
	var req detectedToolsBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}

	records := make([]models.DetectedTool, 0, len(req.Items))
	for _, item := range req.Items {
		if item.PhotoSessionID == uuid.Nil || item.ToolTypeID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "photoSessionId and toolTypeId are required")
			return
		}
		records = append(records, models.DetectedTool{
			PhotoSessionID: item.PhotoSessionID,
			ToolTypeID:     item.ToolTypeID,
			BrandID:        item.BrandID,
			ModelID:        item.ModelID,
			SerialNumber:   item.SerialNumber,
			Confidence:     item.Confidence,
			RedFlagged:     item.RedFlagged,
		})
	}
	created, err := app.Assignments.InsertDetectedTools(records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type assignmentItem struct {
	TakenDetectedToolID uuid.UUID `json:"takenDetectedToolId"`
	ToolID              uuid.UUID `json:"toolId"`
	UserID              uuid.UUID `json:"userId"`
	LocationID          uuid.UUID `json:"locationId"`
}

type assignmentsBatchRequest struct {
	Items []assignmentItem `json:"items"`
}

func (app *App) CreateAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	var req assignmentsBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}

	assignments := make([]models.ToolAssignment, 0, len(req.Items))
	for _, item := range req.Items {
		active, err := app.Assignments.ActiveAssignment(item.UserID, item.ToolID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if active != nil {
			writeError(w, http.StatusConflict, "tool already assigned to user")
			return
		}
		assignments = append(assignments, models.ToolAssignment{
			TakenDetectedToolID: item.TakenDetectedToolID,
			ToolID:              item.ToolID,
			UserID:              item.UserID,
			TakenLocationID:     item.LocationID,
		})
	}
	created, err := app.Assignments.InsertAssignments(assignments)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (app *App) ActiveAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	userID, errUser := uuid.Parse(chi.URLParam(r, "userID"))
	toolID, errTool := uuid.Parse(chi.URLParam(r, "toolID"))
	if errUser != nil || errTool != nil {
		writeError(w, http.StatusBadRequest, "bad user or tool id")
		return
	}
	assignment, err := app.Assignments.ActiveAssignment(userID, toolID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if assignment == nil {
		writeError(w, http.StatusNotFound, "no active assignment")
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

type returnItem struct {
	ToolAssignmentID       uuid.UUID `json:"toolAssignmentId"`
	LocationID             uuid.UUID `json:"locationId"`
	ReturnedDetectedToolID uuid.UUID `json:"returnedDetectedToolId"`
}

type returnBatchRequest struct {
	Items []returnItem `json:"items"`
}

func (app *App) ReturnAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	var req returnBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	now := time.Now().UTC()
	for _, item := range req.Items {
		if err := app.Assignments.CloseAssignment(item.ToolAssignmentID, item.LocationID, item.ReturnedDetectedToolID, now); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
