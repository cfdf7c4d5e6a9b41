package main

import (
	"log"
	"os"

	"github.com/jvmpack/uberctl/internal/config"
)

// Regenerates config/schema.json from the uber.yaml configuration types.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s path/to/schema.json", os.Args[0])
	}
	bs, err := config.ReflectSchema()
	if err != nil {
		log.Fatalf("reflect uber.yaml schema: %v", err)
	}
	if err := os.WriteFile(os.Args[1], append(bs, '\n'), 0o644); err != nil {
		log.Fatalf("write %s: %v", os.Args[1], err)
	}
}
