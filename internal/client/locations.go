package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/toolsnap/toolsnap/internal/models"
)

// NearestLocation resolves the catalog location closest to the given point.
// Resolution happens server-side.
func (c *Client) NearestLocation(ctx context.Context, latitude, longitude float64) (*models.Location, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))

	var location models.Location
	if err := c.getJSON(ctx, "locations/nearest?"+q.Encode(), &location, "nearest location"); err != nil {
		return nil, err
	}
	return &location, nil
}

func (c *Client) Locations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := c.getJSON(ctx, "locations", &out, "locations"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.getJSON(ctx, "users", &out, "users"); err != nil {
		return nil, err
	}
	return out, nil
}
