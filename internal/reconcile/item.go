package reconcile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

// Item is the working state for one detection candidate on the confirmation
// screen. Confidence and the red flag come from detection and never change;
// the selections are user-editable. Candidates and Tool are only valid for
// the currently selected type/brand/model combination.
type Item struct {
	PhotoSessionID uuid.UUID
	Confidence     float64
	RedFlagged     bool

	ToolType *models.ToolType
	Brand    *models.Brand
	Model    *models.Model

	Tool         *models.Tool
	SerialNumber string
	Candidates   []models.Tool
}

// Field names a user-editable selection on an Item.
type Field int

const (
	FieldToolType Field = iota
	FieldBrand
	FieldModel
	FieldTool
	FieldSerialNumber
)

// SideEffect tells the caller what to do after a selection change. Side
// effects are executed by the caller, never triggered implicitly.
type SideEffect int

const (
	// NoEffect means the item is consistent as returned.
	NoEffect SideEffect = iota
	// RefreshInstances means the type/brand/model combination changed: the
	// instance candidate list is stale and must be re-queried.
	RefreshInstances
)

// ApplySelection is a pure reducer over Item. Changing the tool type, brand
// or model invalidates the instance candidates and the chosen tool, because
// they are only meaningful within the previous combination. Choosing a tool
// copies its serial number into the item.
func ApplySelection(item Item, field Field, value any) (Item, SideEffect) {
	switch field {
	case FieldToolType:
		item.ToolType, _ = value.(*models.ToolType)
		return invalidateInstances(item), RefreshInstances
	case FieldBrand:
		item.Brand, _ = value.(*models.Brand)
		return invalidateInstances(item), RefreshInstances
	case FieldModel:
		item.Model, _ = value.(*models.Model)
		return invalidateInstances(item), RefreshInstances
	case FieldTool:
		tool, _ := value.(*models.Tool)
		item.Tool = tool
		if tool != nil {
			item.SerialNumber = tool.SerialNumber
		} else {
			item.SerialNumber = ""
		}
		return item, NoEffect
	case FieldSerialNumber:
		serial, _ := value.(string)
		item.SerialNumber = serial
		return item, NoEffect
	}
	return item, NoEffect
}

func invalidateInstances(item Item) Item {
	item.Candidates = nil
	item.Tool = nil
	return item
}

// SetCandidates installs a freshly queried instance list and applies the
// auto-select rules:
//
//   - a case-insensitive serial-number match is preferred regardless of how
//     many candidates there are;
//   - otherwise exactly one candidate is auto-selected;
//   - a previously chosen tool that is absent from the new list is cleared.
func SetCandidates(item Item, tools []models.Tool) Item {
	item.Candidates = tools

	if item.Tool != nil && !containsTool(tools, item.Tool.ID) {
		item.Tool = nil
	}

	if item.SerialNumber != "" {
		for i := range tools {
			if strings.EqualFold(tools[i].SerialNumber, item.SerialNumber) {
				item.Tool = &tools[i]
				return item
			}
		}
	}

	if item.Tool == nil && len(tools) == 1 {
		item.Tool = &tools[0]
		item.SerialNumber = tools[0].SerialNumber
	}
	return item
}

func containsTool(tools []models.Tool, id uuid.UUID) bool {
	for i := range tools {
		if tools[i].ID == id {
			return true
		}
	}
	return false
}

// InstanceSearcher queries concrete tool instances for a type/brand/model
// combination. The flow decides the scope: available tools on take,
// not-yet-returned tools on return.
type InstanceSearcher interface {
	SearchInstances(ctx context.Context, toolTypeID uuid.UUID, brandID, modelID *uuid.UUID) []models.Tool
}

// Refresh executes the RefreshInstances side effect: it re-queries instances
// for the item's current combination and re-applies the auto-select rules.
// An item without a tool type has no valid combination and gets an empty
// candidate list without a backend call.
func Refresh(ctx context.Context, searcher InstanceSearcher, item Item) Item {
	if item.ToolType == nil {
		return invalidateInstances(item)
	}
	var brandID, modelID *uuid.UUID
	if item.Brand != nil {
		brandID = &item.Brand.ID
	}
	if item.Model != nil {
		modelID = &item.Model.ID
	}
	tools := searcher.SearchInstances(ctx, item.ToolType.ID, brandID, modelID)
	return SetCandidates(item, tools)
}
