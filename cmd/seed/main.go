package main

import (
	"context"
	"flag"
	"log"
	"os"

	"devspace/internal/config"
	"devspace/internal/repository"
	"devspace/internal/seed"
	"devspace/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema/indexes, don't load fixtures")
	clearData := flag.Bool("clear-data", false, "Delete all folders and resources (keep schema)")
	file := flag.String("file", "", "YAML fixture to load instead of the built-in one")
	keep := flag.Bool("keep", false, "Load fixtures on top of existing data instead of clearing it first")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// Prevent destructive operations in production
	if cfg.Environment == "prod" && (*clearData || !*keep) && !*schemaOnly {
		log.Fatalf("BLOCKED: refusing to clear data in production (use -keep to seed without clearing)")
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	switch {
	case *clearData:
		log.Printf("Clearing data (environment: %s, store: %s)", cfg.Environment, cfg.StoreDriver)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, store: %s)", cfg.Environment, cfg.StoreDriver)
	default:
		log.Printf("Seeding (environment: %s, store: %s)", cfg.Environment, cfg.StoreDriver)
	}

	ctx := context.Background()

	// Opening the store ensures tables/indexes exist
	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer stores.Close(ctx)

	if *schemaOnly {
		log.Println("Schema ready")
		return
	}

	if *clearData || !*keep {
		if err := stores.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		if *clearData {
			return
		}
	}

	fixture, err := loadFixture(*file)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	folderService := service.NewFolderService(stores.Folders, stores.Resources, stores.TxManager, logger)
	resourceService := service.NewResourceService(stores.Resources, stores.Folders, stores.TxManager, logger)

	result, err := seed.NewSeeder(folderService, resourceService, logger).Apply(ctx, fixture)
	if err != nil {
		log.Fatalf("Seeding failed after %d folders and %d resources: %v", result.Folders, result.Resources, err)
	}

	log.Printf("Seeding complete: %d folders, %d resources", result.Folders, result.Resources)
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}
