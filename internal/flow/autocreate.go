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

// AutoCreateDetectedTools is the unattended record path: parse the raw
// detection payload, reconcile against the catalog and persist the batch
// without user review. Candidates whose tool type matches nothing in the
// catalog are dropped, unlike the interactive path which leaves the field
// blank for the user.
func AutoCreateDetectedTools(ctx context.Context, api *client.Client, sessionID uuid.UUID, detectionRawJSON string) ([]models.DetectedTool, error) {
	candidates, err := detection.Parse(detectionRawJSON)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no detections to save")
	}

	catalog, err := api.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog.ToolTypes) == 0 {
		return nil, fmt.Errorf("no tool types available on server")
	}

	items := reconcile.AutoMatchItems(sessionID, candidates, catalog)
	if len(items) == 0 {
		return nil, fmt.Errorf("no detections matched known tool types")
	}

	batch := make([]client.CreateDetectedToolItem, 0, len(items))
	for _, item := range items {
		batch = append(batch, detectedToolItem(item))
	}
	return api.CreateDetectedToolsBatch(ctx, batch)
}
