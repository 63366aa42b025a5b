package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

// CreateDetectedToolItem is one row of a detected-tools batch.
type CreateDetectedToolItem struct {
	PhotoSessionID uuid.UUID  `json:"photoSessionId"`
	ToolTypeID     uuid.UUID  `json:"toolTypeId"`
	BrandID        *uuid.UUID `json:"brandId,omitempty"`
	ModelID        *uuid.UUID `json:"modelId,omitempty"`
	SerialNumber   string     `json:"serialNumber,omitempty"`
	Confidence     float64    `json:"confidence"`
	RedFlagged     bool       `json:"redFlagged"`
}

type createDetectedToolsBatchRequest struct {
	Items []CreateDetectedToolItem `json:"items"`
}

// CreateDetectedToolsBatch persists all items in one backend call. The
// backend answers with the created records in submission order.
func (c *Client) CreateDetectedToolsBatch(ctx context.Context, items []CreateDetectedToolItem) ([]models.DetectedTool, error) {
	var created []models.DetectedTool
	err := c.postJSON(ctx, "detected-tools/batch", createDetectedToolsBatchRequest{Items: items}, &created, "create detected tools batch")
	if err != nil {
		return nil, err
	}
	return created, nil
}
