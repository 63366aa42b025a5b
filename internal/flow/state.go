package flow

import (
	"sync"

	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/models"
)

// Holder bridges the capture step and the confirmation step: it owns the one
// in-flight photo session and its unconfirmed detections. Each new capture
// overwrites the previous state; the UI serializes user-triggered flows, so
// the lock only guards against torn reads.
type Holder struct {
	mu         sync.Mutex
	session    *models.PhotoSession
	detections []detection.Candidate
}

func (h *Holder) Set(session *models.PhotoSession, detections []detection.Candidate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = session
	h.detections = detections
}

// Current returns the pending capture, or ok=false when there is none.
func (h *Holder) Current() (session *models.PhotoSession, detections []detection.Candidate, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil || len(h.detections) == 0 {
		return nil, nil, false
	}
	return h.session, h.detections, true
}

func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
	h.detections = nil
}
