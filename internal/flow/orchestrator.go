// Package flow runs the capture-to-backend pipeline and the confirmation
// commit paths. All multi-step operations report their outcome as a result
// struct instead of propagating errors across flow boundaries.
package flow

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/geo"
	"github.com/toolsnap/toolsnap/internal/models"
)

// Action selects the capture flow. Take and return share one state machine;
// only the action-type label differs.
type Action string

const (
	ActionTake   Action = "take"
	ActionReturn Action = "return"
)

// Photo is one capture artifact handed to the orchestrator.
type Photo interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FilePhoto is a path-backed Photo for the CLI.
type FilePhoto string

func (p FilePhoto) Name() string { return filepath.Base(string(p)) }

func (p FilePhoto) Open() (io.ReadCloser, error) { return os.Open(string(p)) }

// CaptureResult is the terminal outcome of one orchestrator run. Session is
// set as soon as the backend created it, so a caller can tell "session exists
// but upload failed" from "no session created". DetectionRawJSON stays empty
// when detection itself failed.
type CaptureResult struct {
	Success          bool
	ErrorMessage     string
	Session          *models.PhotoSession
	DetectionRawJSON string
}

type Orchestrator struct {
	api      *client.Client
	location geo.Provider
}

func NewOrchestrator(api *client.Client, location geo.Provider) *Orchestrator {
	return &Orchestrator{api: api, location: location}
}

// Run executes one capture flow: acquire location (best effort), resolve the
// action type, create the photo session, upload every photo sequentially and
// trigger detection. The first failure stops the sequence; nothing is rolled
// back. Cancellation is honored before each network step.
func (o *Orchestrator) Run(ctx context.Context, action Action, photos []Photo) CaptureResult {
	if len(photos) == 0 {
		return CaptureResult{ErrorMessage: "no photos provided"}
	}

	latitude, longitude := 0.0, 0.0
	if o.location != nil {
		lat, lng, err := o.location.CurrentLocation(ctx)
		if err != nil {
			log.Printf("[CAPTURE] geolocation unavailable, using (0,0): %v", err)
		} else {
			latitude, longitude = lat, lng
		}
	}

	if err := ctx.Err(); err != nil {
		return CaptureResult{ErrorMessage: err.Error()}
	}
	actionType, err := o.api.ActionTypeByTitle(ctx, string(action))
	if err != nil {
		return CaptureResult{ErrorMessage: err.Error()}
	}

	if err := ctx.Err(); err != nil {
		return CaptureResult{ErrorMessage: err.Error()}
	}
	session, err := o.api.CreatePhotoSession(ctx, latitude, longitude, actionType.ID)
	if err != nil {
		return CaptureResult{ErrorMessage: err.Error()}
	}
	log.Printf("[CAPTURE] session %s created for action %q", session.ID, action)

	for _, photo := range photos {
		if err := ctx.Err(); err != nil {
			return CaptureResult{ErrorMessage: err.Error(), Session: session}
		}
		if err := o.uploadOne(ctx, session, photo); err != nil {
			return CaptureResult{ErrorMessage: err.Error(), Session: session}
		}
	}

	if err := ctx.Err(); err != nil {
		return CaptureResult{ErrorMessage: err.Error(), Session: session}
	}
	raw, err := o.api.DetectTools(ctx, session.ID)
	if err != nil {
		return CaptureResult{ErrorMessage: err.Error(), Session: session}
	}

	return CaptureResult{Success: true, Session: session, DetectionRawJSON: raw}
}

func (o *Orchestrator) uploadOne(ctx context.Context, session *models.PhotoSession, photo Photo) error {
	reader, err := photo.Open()
	if err != nil {
		return err
	}
	defer reader.Close()
	return o.api.UploadPhoto(ctx, session.ID, photo.Name(), reader)
}
