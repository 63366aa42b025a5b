// Package detection decodes the backend's two-layer detection payload.
//
// The detect endpoint answers with an outer JSON document whose "detection"
// field is itself a JSON document serialized to a string:
//
//	{ "detection": "{\"detections\":[{\"toolType\":\"Drill\",...}]}" }
//
// A blank or absent payload is a valid empty result; malformed JSON at either
// layer is a hard parse error.
package detection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload marks JSON that was present but could not be decoded,
// as opposed to an absent or blank payload which parses to an empty list.
var ErrMalformedPayload = errors.New("malformed detection payload")

// Candidate is one tool observation reported by the remote detection step,
// prior to any human confirmation.
type Candidate struct {
	ToolType   string  `json:"toolType"`
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	Confidence float64 `json:"confidence"`
	RedFlagged bool    `json:"redFlagged"`
}

type detectResponse struct {
	Detection string `json:"detection"`
}

type detectionEnvelope struct {
	Detections []Candidate `json:"detections"`
}

// Parse decodes the raw detect response body into a flat candidate list.
// The returned slice is never nil.
func Parse(raw string) ([]Candidate, error) {
	if strings.TrimSpace(raw) == "" {
		return []Candidate{}, nil
	}

	var outer detectResponse
	if err := json.Unmarshal([]byte(raw), &outer); err != nil {
		return nil, fmt.Errorf("%w: outer document: %v", ErrMalformedPayload, err)
	}

	if strings.TrimSpace(outer.Detection) == "" {
		return []Candidate{}, nil
	}

	var envelope detectionEnvelope
	if err := json.Unmarshal([]byte(outer.Detection), &envelope); err != nil {
		return nil, fmt.Errorf("%w: detection field: %v", ErrMalformedPayload, err)
	}

	if envelope.Detections == nil {
		return []Candidate{}, nil
	}
	return envelope.Detections, nil
}
