package flow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/models"
	"github.com/toolsnap/toolsnap/internal/reconcile"
)

// takeSearcher scopes instance search to available tools: on take, only a
// tool that is not already assigned can be chosen.
type takeSearcher struct {
	api *client.Client
}

func (s takeSearcher) SearchInstances(ctx context.Context, toolTypeID uuid.UUID, brandID, modelID *uuid.UUID) []models.Tool {
	return s.api.SearchAvailableTools(ctx, &toolTypeID, brandID, modelID)
}

// returnSearcher scopes instance search to tools the user still holds.
type returnSearcher struct {
	api    *client.Client
	userID uuid.UUID
}

func (s returnSearcher) SearchInstances(ctx context.Context, toolTypeID uuid.UUID, brandID, modelID *uuid.UUID) []models.Tool {
	return s.api.SearchNotReturnedTools(ctx, s.userID, &toolTypeID, brandID, modelID)
}

// Confirmation is the working state of one confirmation screen: the photo
// session, the reconciled items and the catalog they were matched against.
// It is discarded after a successful commit or on navigation away.
type Confirmation struct {
	Session  *models.PhotoSession
	Catalog  *models.Catalog
	Items    []reconcile.Item
	searcher reconcile.InstanceSearcher
}

// BeginConfirmation loads the reference catalog, reconciles the detections
// into items (interactive strictness: unmatched labels stay unselected) and
// runs the initial instance search for every item.
func BeginConfirmation(ctx context.Context, api *client.Client, action Action, userID uuid.UUID, session *models.PhotoSession, detections []detection.Candidate) (*Confirmation, error) {
	if session == nil || len(detections) == 0 {
		return nil, fmt.Errorf("no session or detections available for confirmation")
	}

	catalog, err := api.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var searcher reconcile.InstanceSearcher
	if action == ActionReturn {
		searcher = returnSearcher{api: api, userID: userID}
	} else {
		searcher = takeSearcher{api: api}
	}

	confirmation := &Confirmation{
		Session:  session,
		Catalog:  catalog,
		Items:    reconcile.BuildItems(session.ID, detections, catalog),
		searcher: searcher,
	}
	for i := range confirmation.Items {
		confirmation.Items[i] = reconcile.Refresh(ctx, searcher, confirmation.Items[i])
	}
	return confirmation, nil
}

// Apply routes one user edit through the selection reducer and executes the
// instance re-query side effect when the reducer asks for it.
func (c *Confirmation) Apply(ctx context.Context, index int, field reconcile.Field, value any) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	item, effect := reconcile.ApplySelection(c.Items[index], field, value)
	if effect == reconcile.RefreshInstances {
		item = reconcile.Refresh(ctx, c.searcher, item)
	}
	c.Items[index] = item
	return nil
}
