package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

type CreateToolAssignmentItem struct {
	TakenDetectedToolID uuid.UUID `json:"takenDetectedToolId"`
	ToolID              uuid.UUID `json:"toolId"`
	UserID              uuid.UUID `json:"userId"`
	LocationID          uuid.UUID `json:"locationId"`
}

type createToolAssignmentsBatchRequest struct {
	Items []CreateToolAssignmentItem `json:"items"`
}

func (c *Client) CreateToolAssignmentsBatch(ctx context.Context, items []CreateToolAssignmentItem) ([]models.ToolAssignment, error) {
	var created []models.ToolAssignment
	err := c.postJSON(ctx, "tool-assignments/batch", createToolAssignmentsBatchRequest{Items: items}, &created, "create assignments batch")
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SearchActiveAssignment looks up the open assignment for (user, tool). An
// assignment is active while its returned timestamp is unset.
func (c *Client) SearchActiveAssignment(ctx context.Context, userID, toolID uuid.UUID) (*models.ToolAssignment, error) {
	path := fmt.Sprintf("tool-assignments/user/%s/tool/%s/search-active", userID, toolID)
	var assignment models.ToolAssignment
	if err := c.getJSON(ctx, path, &assignment, "active assignment lookup"); err != nil {
		return nil, err
	}
	return &assignment, nil
}

type ReturnToolAssignmentItem struct {
	ToolAssignmentID       uuid.UUID `json:"toolAssignmentId"`
	LocationID             uuid.UUID `json:"locationId"`
	ReturnedDetectedToolID uuid.UUID `json:"returnedDetectedToolId"`
}

type returnToolAssignmentsBatchRequest struct {
	Items []ReturnToolAssignmentItem `json:"items"`
}

// ReturnToolAssignmentsBatch closes all given assignments in one call.
func (c *Client) ReturnToolAssignmentsBatch(ctx context.Context, items []ReturnToolAssignmentItem) error {
	return c.postJSON(ctx, "tool-assignments/batch/return", returnToolAssignmentsBatchRequest{Items: items}, nil, "return assignments batch")
}
