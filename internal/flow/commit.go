package flow

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/models"
	"github.com/toolsnap/toolsnap/internal/reconcile"
)

// CommitResult is the outcome of a confirmation commit. Aborts never leave a
// partial commit behind on the client side: the assignment batch is only sent
// after every precondition held.
type CommitResult struct {
	Success      bool
	ErrorMessage string
}

func commitFailure(format string, args ...any) CommitResult {
	return CommitResult{ErrorMessage: fmt.Sprintf(format, args...)}
}

// Committer turns a confirmed item list into detected-tool and assignment
// records.
type Committer struct {
	api *client.Client
}

func NewCommitter(api *client.Client) *Committer {
	return &Committer{api: api}
}

// ConfirmTake commits a take flow: detected-tools batch, nearest location,
// then one assignment per item at that location.
func (c *Committer) ConfirmTake(ctx context.Context, userID uuid.UUID, session *models.PhotoSession, items []reconcile.Item) CommitResult {
	detected, location, result := c.prepare(ctx, session, items)
	if !result.Success {
		return result
	}

	assignments := make([]client.CreateToolAssignmentItem, 0, len(items))
	for i, item := range items {
		if item.Tool == nil {
			return commitFailure("item %d: a tool must be selected", i+1)
		}
		assignments = append(assignments, client.CreateToolAssignmentItem{
			TakenDetectedToolID: detected[i].ID,
			ToolID:              item.Tool.ID,
			UserID:              userID,
			LocationID:          location.ID,
		})
	}

	if _, err := c.api.CreateToolAssignmentsBatch(ctx, assignments); err != nil {
		return CommitResult{ErrorMessage: err.Error()}
	}
	log.Printf("[COMMIT] take: %d assignments created at location %s", len(assignments), location.ID)
	return CommitResult{Success: true}
}

// ConfirmReturn commits a return flow. For every item the currently active
// assignment for (user, tool) is resolved first; a missing assignment, an
// already-closed one, or a tool-id mismatch aborts the whole commit before
// the return batch is sent.
func (c *Committer) ConfirmReturn(ctx context.Context, userID uuid.UUID, session *models.PhotoSession, items []reconcile.Item) CommitResult {
	detected, location, result := c.prepare(ctx, session, items)
	if !result.Success {
		return result
	}

	returns := make([]client.ReturnToolAssignmentItem, 0, len(items))
	for i, item := range items {
		if item.Tool == nil {
			return commitFailure("item %d: a tool must be selected", i+1)
		}
		if err := ctx.Err(); err != nil {
			return CommitResult{ErrorMessage: err.Error()}
		}

		assignment, err := c.api.SearchActiveAssignment(ctx, userID, item.Tool.ID)
		if err != nil {
			return CommitResult{ErrorMessage: err.Error()}
		}
		if assignment.ReturnedAt != nil {
			return commitFailure("assignment %s for tool %s is already returned", assignment.ID, item.Tool.ID)
		}
		if assignment.ToolID != item.Tool.ID {
			return commitFailure("assignment tool id %s does not match selected tool %s", assignment.ToolID, item.Tool.ID)
		}

		returns = append(returns, client.ReturnToolAssignmentItem{
			ToolAssignmentID:       assignment.ID,
			LocationID:             location.ID,
			ReturnedDetectedToolID: detected[i].ID,
		})
	}

	if err := c.api.ReturnToolAssignmentsBatch(ctx, returns); err != nil {
		return CommitResult{ErrorMessage: err.Error()}
	}
	log.Printf("[COMMIT] return: %d assignments closed at location %s", len(returns), location.ID)
	return CommitResult{Success: true}
}

// prepare runs the steps shared by both commit paths: validation, the
// detected-tools batch with its count invariant, and nearest-location
// resolution. The detected records come back in submission order; positional
// pairing with items is part of the backend contract.
func (c *Committer) prepare(ctx context.Context, session *models.PhotoSession, items []reconcile.Item) ([]models.DetectedTool, *models.Location, CommitResult) {
	if len(items) == 0 {
		return nil, nil, commitFailure("no items to confirm")
	}

	batch := make([]client.CreateDetectedToolItem, 0, len(items))
	for i, item := range items {
		if item.ToolType == nil {
			return nil, nil, commitFailure("item %d: tool type is required", i+1)
		}
		batch = append(batch, detectedToolItem(item))
	}

	detected, err := c.api.CreateDetectedToolsBatch(ctx, batch)
	if err != nil {
		return nil, nil, CommitResult{ErrorMessage: err.Error()}
	}
	if len(detected) != len(items) {
		return nil, nil, commitFailure("detected tools count (%d) != items count (%d)", len(detected), len(items))
	}

	location, err := c.api.NearestLocation(ctx, session.Latitude, session.Longitude)
	if err != nil {
		return nil, nil, CommitResult{ErrorMessage: err.Error()}
	}

	return detected, location, CommitResult{Success: true}
}

func detectedToolItem(item reconcile.Item) client.CreateDetectedToolItem {
	out := client.CreateDetectedToolItem{
		PhotoSessionID: item.PhotoSessionID,
		ToolTypeID:     item.ToolType.ID,
		SerialNumber:   item.SerialNumber,
		Confidence:     item.Confidence,
		RedFlagged:     item.RedFlagged,
	}
	if item.Brand != nil {
		out.BrandID = &item.Brand.ID
	}
	if item.Model != nil {
		out.ModelID = &item.Model.ID
	}
	return out
}
