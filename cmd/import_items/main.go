package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/meur/wakfudex/internal/storage"
	"github.com/meur/wakfudex/internal/wakfu"
)

// versionKey is the meta entry holding the imported game data version
const versionKey = "items_version"

func main() {
	dbPath := flag.String("db", getEnv("DB_PATH", "./wakfudex.db"), "SQLite database path")
	file := flag.String("file", "", "Local items.json; fetched from the Wakfu CDN when empty")
	version := flag.String("version", "", "Game data version to fetch; latest when empty")
	locale := flag.String("locale", "en", "Title locale")
	replace := flag.Bool("replace", true, "Delete previously imported items first")
	timeout := flag.Duration("timeout", 2*time.Minute, "CDN request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	data, dataVersion, err := readItems(ctx, *file, *version, *timeout)
	if err != nil {
		log.Fatalf("Failed to read items: %v", err)
	}

	items, err := wakfu.ParseItems(data, *locale)
	if err != nil {
		log.Fatalf("Failed to parse items: %v", err)
	}
	if len(items) == 0 {
		log.Fatalf("Parsed 0 items; check the file or version")
	}

	store, err := storage.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if *replace {
		fmt.Println("Cleaning up old items...")
		if err := store.DeleteReferenceItems(); err != nil {
			log.Printf("Warning: failed to clean up items: %v", err)
		}
	}

	fmt.Printf("Importing %d items (version %s)...\n", len(items), dataVersion)
	if err := store.BulkCreateReferenceItems(items); err != nil {
		log.Fatalf("Failed to bulk create items: %v", err)
	}
	if err := store.SetMeta(versionKey, dataVersion); err != nil {
		log.Printf("Warning: failed to record version: %v", err)
	}

	total, err := store.CountReferenceItems()
	if err != nil {
		log.Printf("Warning: failed to count items: %v", err)
	}
	fmt.Printf("✓ Successfully imported all items! %d reference items stored.\n", total)
}

// readItems returns the items document and its version label
func readItems(ctx context.Context, file, version string, timeout time.Duration) ([]byte, string, error) {
	if file != "" {
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return nil, "", err
		}
		if version == "" {
			version = "file:" + filepath.Base(file)
		}
		return data, version, nil
	}

	client := wakfu.NewClient(timeout)
	if version == "" {
		v, err := client.FetchVersion(ctx)
		if err != nil {
			return nil, "", err
		}
		version = v
	}
	log.Printf("Fetching items.json for version %s", version)
	data, err := client.FetchItems(ctx, version)
	return data, version, err
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
