package main

import (
	"log"
	"net/http"

	"github.com/toolsnap/toolsnap/internal/config"
	"github.com/toolsnap/toolsnap/internal/database"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/devserver"
	"github.com/toolsnap/toolsnap/internal/storage"
)

// stubDetector reports one generic drill per uploaded photo. The dev backend
// has no vision model; this keeps the client flows exercisable end to end.
func stubDetector(photoFilenames []string) []detection.Candidate {
	candidates := make([]detection.Candidate, 0, len(photoFilenames))
	for range photoFilenames {
		candidates = append(candidates, detection.Candidate{
			ToolType:   "Drill",
			Brand:      "Bosch",
			Confidence: 0.9,
		})
	}
	return candidates
}

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	db, err := database.NewDB(database.Config{
		Type:        cfg.DBType,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	app := devserver.NewApp(db, localStorage, stubDetector)

	if users, err := app.Users.List(); err != nil {
		log.Fatal("Failed to check users:", err)
	} else if len(users) == 0 {
		seeded, err := devserver.Seed(db)
		if err != nil {
			log.Fatal("Failed to seed database:", err)
		}
		log.Printf("Seeded demo data: sign in as %s / %s", seeded.User.Email, seeded.Password)
	}

	router := devserver.NewRouter(app)

	log.Printf("Dev backend starting on port %s", cfg.Port)
	log.Printf("Upload directory: %s", cfg.UploadDir)
	log.Printf("Database type: %s", cfg.DBType)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
