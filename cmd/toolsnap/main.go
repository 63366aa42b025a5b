package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/auth"
	"github.com/toolsnap/toolsnap/internal/client"
	"github.com/toolsnap/toolsnap/internal/config"
	"github.com/toolsnap/toolsnap/internal/detection"
	"github.com/toolsnap/toolsnap/internal/flow"
	"github.com/toolsnap/toolsnap/internal/geo"
	"github.com/toolsnap/toolsnap/internal/mapview"
	"github.com/toolsnap/toolsnap/internal/reconcile"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  toolsnap login <email> <password>
  toolsnap take <photo.jpg> [more photos...]
  toolsnap return <photo.jpg> [more photos...]
  toolsnap taken
  toolsnap map [all|available|not-returned]
  toolsnap logout`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	store, err := auth.NewFileStore(cfg.CredentialsPath)
	if err != nil {
		log.Fatal("Failed to load credentials:", err)
	}
	api := client.New(cfg.BaseURL, store)
	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		if len(os.Args) != 4 {
			usage()
		}
		runLogin(ctx, api, store, os.Args[2], os.Args[3])
	case "take":
		runCapture(ctx, api, store, cfg, flow.ActionTake, os.Args[2:])
	case "return":
		runCapture(ctx, api, store, cfg, flow.ActionReturn, os.Args[2:])
	case "taken":
		runTaken(ctx, api, store)
	case "map":
		filter := mapview.FilterAll
		if len(os.Args) > 2 {
			switch os.Args[2] {
			case "available":
				filter = mapview.FilterAvailable
			case "not-returned":
				filter = mapview.FilterNotReturned
			case "all":
			default:
				usage()
			}
		}
		runMap(ctx, api, store, filter)
	case "logout":
		api.Logout(ctx)
		fmt.Println("Signed out.")
	default:
		usage()
	}
}

func runLogin(ctx context.Context, api *client.Client, store *auth.FileStore, email, password string) {
	resp, err := api.Login(ctx, email, password)
	if err != nil {
		log.Fatal("Login failed: ", err)
	}
	if err := store.SetUser(resp.User()); err != nil {
		log.Fatal("Failed to persist user: ", err)
	}
	fmt.Printf("Signed in as %s <%s>\n", resp.FullName, resp.Email)
}

func currentUser(store *auth.FileStore) uuid.UUID {
	user := store.CurrentUser()
	if user == nil {
		log.Fatal("Not signed in. Run: toolsnap login <email> <password>")
	}
	return user.ID
}

func runCapture(ctx context.Context, api *client.Client, store *auth.FileStore, cfg *config.Client, action flow.Action, paths []string) {
	if len(paths) == 0 {
		usage()
	}
	userID := currentUser(store)

	photos := make([]flow.Photo, 0, len(paths))
	for _, path := range paths {
		photos = append(photos, flow.FilePhoto(path))
	}

	orchestrator := flow.NewOrchestrator(api, geo.Static{Latitude: cfg.Latitude, Longitude: cfg.Longitude})
	capture := orchestrator.Run(ctx, action, photos)
	if !capture.Success {
		log.Fatal("Capture failed: ", capture.ErrorMessage)
	}

	candidates, err := detection.Parse(capture.DetectionRawJSON)
	if err != nil {
		log.Fatal("Detection response unusable: ", err)
	}

	// The holder hands the capture over to the confirmation step; one flow is
	// pending at a time and it is cleared no matter how confirmation ends.
	var pending flow.Holder
	pending.Set(capture.Session, candidates)
	defer pending.Clear()

	session, detections, ok := pending.Current()
	if !ok {
		fmt.Println("No tools detected on the photos.")
		return
	}

	confirmation, err := flow.BeginConfirmation(ctx, api, action, userID, session, detections)
	if err != nil {
		log.Fatal("Failed to start confirmation: ", err)
	}

	if !confirmLoop(ctx, confirmation) {
		fmt.Println("Aborted; nothing was committed.")
		return
	}

	committer := flow.NewCommitter(api)
	var result flow.CommitResult
	if action == flow.ActionReturn {
		result = committer.ConfirmReturn(ctx, userID, confirmation.Session, confirmation.Items)
	} else {
		result = committer.ConfirmTake(ctx, userID, confirmation.Session, confirmation.Items)
	}
	if !result.Success {
		log.Fatal("Commit failed: ", result.ErrorMessage)
	}
	fmt.Printf("Done: %d item(s) committed.\n", len(confirmation.Items))
}

func printItems(c *flow.Confirmation) {
	for i, item := range c.Items {
		typeTitle, brandTitle, modelTitle := "?", "-", "-"
		if item.ToolType != nil {
			typeTitle = item.ToolType.Title
		}
		if item.Brand != nil {
			brandTitle = item.Brand.Title
		}
		if item.Model != nil {
			modelTitle = item.Model.Title
		}
		toolLabel := "no instance selected"
		if item.Tool != nil {
			toolLabel = "SN " + item.Tool.SerialNumber
		}
		flag := ""
		if item.RedFlagged {
			flag = " [FLAGGED]"
		}
		fmt.Printf("%d. %s / %s / %s (%.0f%%)%s -> %s, %d candidate(s)\n",
			i+1, typeTitle, brandTitle, modelTitle, item.Confidence*100, flag, toolLabel, len(item.Candidates))
	}
}

// confirmLoop lets the user adjust selections before the commit. Returns
// false when the user abandons the flow.
func confirmLoop(ctx context.Context, c *flow.Confirmation) bool {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		printItems(c)
		fmt.Print("commands: ok | quit | type <item> <title> | brand <item> <title> | model <item> <title> | tool <item> <candidate#> | serial <item> <value>\n> ")
		if !scanner.Scan() {
			return false
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "ok":
			return true
		case "quit":
			return false
		case "type", "brand", "model", "tool", "serial":
			if len(parts) < 3 {
				fmt.Println("Missing arguments.")
				continue
			}
			index, err := strconv.Atoi(parts[1])
			if err != nil || index < 1 || index > len(c.Items) {
				fmt.Println("Bad item number.")
				continue
			}
			if err := applyCommand(ctx, c, index-1, parts[0], strings.Join(parts[2:], " ")); err != nil {
				fmt.Println(err)
			}
		default:
			fmt.Println("Unknown command.")
		}
	}
}

func applyCommand(ctx context.Context, c *flow.Confirmation, index int, command, argument string) error {
	switch command {
	case "type":
		for i := range c.Catalog.ToolTypes {
			if strings.EqualFold(c.Catalog.ToolTypes[i].Title, argument) {
				return c.Apply(ctx, index, reconcile.FieldToolType, &c.Catalog.ToolTypes[i])
			}
		}
		return fmt.Errorf("unknown tool type %q", argument)
	case "brand":
		for i := range c.Catalog.Brands {
			if strings.EqualFold(c.Catalog.Brands[i].Title, argument) {
				return c.Apply(ctx, index, reconcile.FieldBrand, &c.Catalog.Brands[i])
			}
		}
		return fmt.Errorf("unknown brand %q", argument)
	case "model":
		for i := range c.Catalog.Models {
			if strings.EqualFold(c.Catalog.Models[i].Title, argument) {
				return c.Apply(ctx, index, reconcile.FieldModel, &c.Catalog.Models[i])
			}
		}
		return fmt.Errorf("unknown model %q", argument)
	case "tool":
		n, err := strconv.Atoi(argument)
		if err != nil || n < 1 || n > len(c.Items[index].Candidates) {
			return fmt.Errorf("bad candidate number %q", argument)
		}
		return c.Apply(ctx, index, reconcile.FieldTool, &c.Items[index].Candidates[n-1])
	case "serial":
		return c.Apply(ctx, index, reconcile.FieldSerialNumber, argument)
	}
	return fmt.Errorf("unknown command %q", command)
}

// runTaken lists everything the signed-in user currently holds, labelled
// with catalog titles.
func runTaken(ctx context.Context, api *client.Client, store *auth.FileStore) {
	userID := currentUser(store)

	tools, err := api.TakenTools(ctx, userID)
	if err != nil {
		log.Fatal("Failed to load taken tools: ", err)
	}
	if len(tools) == 0 {
		fmt.Println("You are not holding any tools.")
		return
	}

	catalog, err := api.LoadCatalog(ctx)
	if err != nil {
		log.Fatal("Failed to load catalog: ", err)
	}
	typeTitles := make(map[uuid.UUID]string, len(catalog.ToolTypes))
	for _, toolType := range catalog.ToolTypes {
		typeTitles[toolType.ID] = toolType.Title
	}
	brandTitles := make(map[uuid.UUID]string, len(catalog.Brands))
	for _, brand := range catalog.Brands {
		brandTitles[brand.ID] = brand.Title
	}

	for i, tool := range tools {
		typeTitle := typeTitles[tool.ToolTypeID]
		if typeTitle == "" {
			typeTitle = "Tool"
		}
		brandTitle := "-"
		if tool.BrandID != nil {
			if title, ok := brandTitles[*tool.BrandID]; ok {
				brandTitle = title
			}
		}
		serial := tool.SerialNumber
		if serial == "" {
			serial = "-"
		}
		fmt.Printf("%d. %s / %s, SN: %s\n", i+1, typeTitle, brandTitle, serial)
	}
}

func runMap(ctx context.Context, api *client.Client, store *auth.FileStore, filter mapview.AvailabilityFilter) {
	var userID *uuid.UUID
	if user := store.CurrentUser(); user != nil {
		userID = &user.ID
	}
	markers, err := mapview.NewService(api).LoadMarkers(ctx, filter, nil, nil, userID)
	if err != nil {
		log.Fatal("Failed to load markers: ", err)
	}
	for _, marker := range markers {
		fmt.Printf("[%s] %s | %s (%.5f, %.5f)\n", marker.Kind, marker.Title, marker.Subtitle, marker.Latitude, marker.Longitude)
	}
}
