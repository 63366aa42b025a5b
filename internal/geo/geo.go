// Package geo abstracts geolocation. Device geolocation is a platform
// concern; the orchestrator only needs a best-effort coordinate source.
package geo

import "context"

type Provider interface {
	CurrentLocation(ctx context.Context) (latitude, longitude float64, err error)
}

// Static always reports a fixed coordinate. The CLI configures it from the
// environment.
type Static struct {
	Latitude  float64
	Longitude float64
}

func (s Static) CurrentLocation(ctx context.Context) (float64, float64, error) {
	return s.Latitude, s.Longitude, nil
}
