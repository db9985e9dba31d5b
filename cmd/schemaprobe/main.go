// Command schemaprobe inventories the tag paths in a grant batch file and
// can generate a first-draft mapping config for the preprocess command.
//
// Example usage:
//
//	# Report every path seen in the first 200 documents.
//	schemaprobe -input pg030520.xml -limit 200 > report.json
//
//	# Generate a starter mapping config to edit down.
//	schemaprobe -input pg030520.xml -generate-config -entity patents > draft.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/simonwiles/patent-conversion/internal/datasource/file"
	"github.com/simonwiles/patent-conversion/internal/inspect"
)

func main() {
	var (
		input       = flag.String("input", "", "batch file to inspect")
		limit       = flag.Int("limit", 200, "stop after N documents (0 scans the whole batch)")
		generateCfg = flag.Bool("generate-config", false, "emit a starter mapping config instead of the report")
		entity      = flag.String("entity", "patents", "root entity name for -generate-config")
	)
	flag.Parse()

	if *input == "" {
		fatalf("no input: use -input")
	}

	rc, err := file.NewLocal(*input).Open(context.Background())
	if err != nil {
		fatalf("%v", err)
	}
	defer rc.Close()

	rep, err := inspect.Discover(rc, *limit)
	if err != nil {
		fatalf("%v", err)
	}

	if *generateCfg {
		cfg, err := inspect.StarterConfig(rep, *entity)
		if err != nil {
			fatalf("%v", err)
		}
		os.Stdout.Write(cfg)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fatalf("encode report: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
