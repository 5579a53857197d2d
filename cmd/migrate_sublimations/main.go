package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/meur/wakfudex/internal/catalog"
)

func main() {
	in := flag.String("in", "data/sublimations.json", "Sublimations JSON in any supported schema")
	out := flag.String("out", "", "Output path; stdout when empty")
	strict := flag.Bool("strict", false, "Fail when a record has schema problems")
	flag.Parse()

	data, err := os.ReadFile(filepath.Clean(*in))
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *in, err)
	}

	records, err := catalog.Decode(data)
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", *in, err)
	}

	problems := catalog.ValidateAll(records)
	for _, p := range problems {
		log.Printf("Warning: %s", p)
	}
	if *strict && len(problems) > 0 {
		log.Fatalf("%d schema problems", len(problems))
	}

	canonical, err := catalog.Encode(records)
	if err != nil {
		log.Fatalf("Failed to encode records: %v", err)
	}
	canonical = append(canonical, '\n')

	if *out == "" {
		os.Stdout.Write(canonical)
		return
	}
	if err := os.WriteFile(*out, canonical, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("✓ Migrated %d records to %s", len(records), *out)
}
