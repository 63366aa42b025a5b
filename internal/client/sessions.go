package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

func (c *Client) ActionTypeByTitle(ctx context.Context, title string) (*models.ActionType, error) {
	var actionType models.ActionType
	if err := c.getJSON(ctx, "action-types/by-title/"+title, &actionType, "action type lookup"); err != nil {
		return nil, err
	}
	return &actionType, nil
}

type createPhotoSessionRequest struct {
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ActionTypeID uuid.UUID `json:"actionTypeId"`
}

func (c *Client) CreatePhotoSession(ctx context.Context, latitude, longitude float64, actionTypeID uuid.UUID) (*models.PhotoSession, error) {
	body := createPhotoSessionRequest{
		Latitude:     latitude,
		Longitude:    longitude,
		ActionTypeID: actionTypeID,
	}
	var session models.PhotoSession
	if err := c.postJSON(ctx, "photo-sessions", body, &session, "create session"); err != nil {
		return nil, err
	}
	return &session, nil
}

// UploadPhoto sends one photo bound to the session as multipart form data.
// Field names match the backend contract: PhotoSessionId and File.
func (c *Client) UploadPhoto(ctx context.Context, sessionID uuid.UUID, filename string, photo io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("PhotoSessionId", sessionID.String()); err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="File"; filename=%q`, filename))
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return fmt.Errorf("reading photo %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/photos-for-detection", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("executing upload request: %w", err)
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "upload", StatusCode: resp.StatusCode, Body: string(text)}
	}
	return nil
}

// DetectTools triggers remote detection for the session and returns the raw
// response body. The caller hands it to the detection parser.
func (c *Client) DetectTools(ctx context.Context, sessionID uuid.UUID) (string, error) {
	text, err := c.do(ctx, http.MethodPost, "photos-for-detection/detect/"+sessionID.String(), nil, "detection")
	if err != nil {
		return "", err
	}
	return string(text), nil
}
