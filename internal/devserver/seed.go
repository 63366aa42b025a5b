package devserver

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/database"
	"github.com/toolsnap/toolsnap/internal/models"
)

// SeedData is what Seed put into the database, handed back so callers and
// tests can reference the generated ids.
type SeedData struct {
	User      models.User
	Password  string
	Depot     models.Location
	Drill     models.ToolType
	Grinder   models.ToolType
	Bosch     models.Brand
	Makita    models.Brand
	GSB18     models.Model
	DrillTool models.Tool
	SpareTool models.Tool
}

func floatPtr(f float64) *float64 { return &f }

// Seed fills a fresh database with a demo fixture: one worker, one depot, two
// tool types, two brands, one model and two drill instances.
func Seed(db *database.DB) (*SeedData, error) {
	now := time.Now().UTC()
	data := &SeedData{
		Password: "hunter2",
		User: models.User{
			ID:             uuid.New(),
			FullName:       "Dana Worker",
			Email:          "dana@example.com",
			RoleID:         uuid.New(),
			IsActive:       true,
			EmailConfirmed: true,
			Latitude:       floatPtr(52.52),
			Longitude:      floatPtr(13.405),
			CreatedAt:      now,
		},
		Depot: models.Location{
			ID:             uuid.New(),
			Name:           "Main Depot",
			LocationTypeID: uuid.New(),
			Address:        "1 Depot Street",
			Latitude:       52.52,
			Longitude:      13.405,
			IsActive:       true,
			CreatedAt:      now,
		},
		Drill:   models.ToolType{ID: uuid.New(), Title: "Drill"},
		Grinder: models.ToolType{ID: uuid.New(), Title: "Angle Grinder"},
		Bosch:   models.Brand{ID: uuid.New(), Title: "Bosch"},
		Makita:  models.Brand{ID: uuid.New(), Title: "Makita"},
		GSB18:   models.Model{ID: uuid.New(), Title: "GSB 18V-55"},
	}
	data.DrillTool = models.Tool{
		ID:           uuid.New(),
		ToolTypeID:   data.Drill.ID,
		BrandID:      &data.Bosch.ID,
		ModelID:      &data.GSB18.ID,
		SerialNumber: "DRL-0001",
		ToolStatusID: uuid.New(),
		CreatedAt:    now,
	}
	data.SpareTool = models.Tool{
		ID:           uuid.New(),
		ToolTypeID:   data.Drill.ID,
		BrandID:      &data.Bosch.ID,
		SerialNumber: "DRL-0002",
		ToolStatusID: uuid.New(),
		CreatedAt:    now.Add(time.Second),
	}

	catalog := database.NewCatalogRepo(db)
	for _, toolType := range []models.ToolType{data.Drill, data.Grinder} {
		if err := catalog.InsertToolType(toolType); err != nil {
			return nil, fmt.Errorf("seeding tool types: %w", err)
		}
	}
	for _, brand := range []models.Brand{data.Bosch, data.Makita} {
		if err := catalog.InsertBrand(brand); err != nil {
			return nil, fmt.Errorf("seeding brands: %w", err)
		}
	}
	if err := catalog.InsertModel(data.GSB18); err != nil {
		return nil, fmt.Errorf("seeding models: %w", err)
	}
	for _, title := range []string{"Take", "Return"} {
		if err := catalog.InsertActionType(models.ActionType{ID: uuid.New(), Title: title}); err != nil {
			return nil, fmt.Errorf("seeding action types: %w", err)
		}
	}

	if err := database.NewLocationRepo(db).Insert(data.Depot); err != nil {
		return nil, fmt.Errorf("seeding locations: %w", err)
	}
	if err := database.NewUserRepo(db).Insert(data.User, data.Password); err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}
	tools := database.NewToolRepo(db)
	for _, tool := range []models.Tool{data.DrillTool, data.SpareTool} {
		if err := tools.Insert(tool); err != nil {
			return nil, fmt.Errorf("seeding tools: %w", err)
		}
	}
	return data, nil
}
