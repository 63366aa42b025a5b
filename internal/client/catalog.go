package client

import (
	"context"

	"github.com/toolsnap/toolsnap/internal/models"
)

// Reference catalog reads. Lists are fetched fresh for every flow; nothing is
// cached between flows.

func (c *Client) ToolTypes(ctx context.Context) ([]models.ToolType, error) {
	var out []models.ToolType
	if err := c.getJSON(ctx, "tool-types", &out, "tool types"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Brands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	if err := c.getJSON(ctx, "brands", &out, "brands"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Models(ctx context.Context) ([]models.Model, error) {
	var out []models.Model
	if err := c.getJSON(ctx, "models", &out, "models"); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadCatalog fetches the three reference lists concurrently and joins the
// results before returning. The three reads are independent; everything after
// them proceeds sequentially.
func (c *Client) LoadCatalog(ctx context.Context) (*models.Catalog, error) {
	var catalog models.Catalog
	errc := make(chan error, 3)

	go func() {
		var err error
		catalog.ToolTypes, err = c.ToolTypes(ctx)
		errc <- err
	}()
	go func() {
		var err error
		catalog.Brands, err = c.Brands(ctx)
		errc <- err
	}()
	go func() {
		var err error
		catalog.Models, err = c.Models(ctx)
		errc <- err
	}()

	var firstErr error
	for i := 0; i < 3; i++ {
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return &catalog, nil
}
