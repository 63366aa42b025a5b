package client

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

// Tool instance search. All three modes return an empty list on transport or
// server failure instead of an error; the caller decides how to present an
// empty result. search-available and not-returned require a tool type id and
// return empty without calling the backend when it is missing.

func optionalParam(q url.Values, key string, id *uuid.UUID) {
	if id != nil {
		q.Set(key, id.String())
	}
}

func (c *Client) searchTools(ctx context.Context, path string, q url.Values, op string) []models.Tool {
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var tools []models.Tool
	if err := c.getJSON(ctx, path, &tools, op); err != nil {
		log.Printf("[TOOLS] %v", err)
		return []models.Tool{}
	}
	if tools == nil {
		return []models.Tool{}
	}
	return tools
}

// SearchAnyTools searches across all tools regardless of assignment state.
func (c *Client) SearchAnyTools(ctx context.Context, toolTypeID, brandID, modelID *uuid.UUID) []models.Tool {
	q := url.Values{}
	optionalParam(q, "toolTypeId", toolTypeID)
	optionalParam(q, "brandId", brandID)
	optionalParam(q, "modelId", modelID)
	return c.searchTools(ctx, "tools/search-any", q, "search any tools")
}

// SearchAvailableTools returns tools that are currently not assigned.
func (c *Client) SearchAvailableTools(ctx context.Context, toolTypeID, brandID, modelID *uuid.UUID) []models.Tool {
	if toolTypeID == nil {
		return []models.Tool{}
	}
	q := url.Values{}
	q.Set("toolTypeId", toolTypeID.String())
	optionalParam(q, "brandId", brandID)
	optionalParam(q, "modelId", modelID)
	return c.searchTools(ctx, "tools/search-available", q, "search available tools")
}

// TakenTools lists every tool the user currently holds, with no catalog
// filter. Unlike the search modes this backs a full page load, so failures
// surface as errors instead of an empty list.
func (c *Client) TakenTools(ctx context.Context, userID uuid.UUID) ([]models.Tool, error) {
	var tools []models.Tool
	path := fmt.Sprintf("tools/not-returned/user/%s", userID)
	if err := c.getJSON(ctx, path, &tools, "taken tools"); err != nil {
		return nil, err
	}
	if tools == nil {
		tools = []models.Tool{}
	}
	return tools, nil
}

// SearchNotReturnedTools returns tools currently checked out by the given
// user and not yet returned.
func (c *Client) SearchNotReturnedTools(ctx context.Context, userID uuid.UUID, toolTypeID, brandID, modelID *uuid.UUID) []models.Tool {
	if toolTypeID == nil {
		return []models.Tool{}
	}
	q := url.Values{}
	q.Set("toolTypeId", toolTypeID.String())
	optionalParam(q, "brandId", brandID)
	optionalParam(q, "modelId", modelID)
	path := fmt.Sprintf("tools/not-returned/user/%s/search", userID)
	return c.searchTools(ctx, path, q, "search not-returned tools")
}
