package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/simonwiles/patent-conversion/internal/datasource"
	"github.com/simonwiles/patent-conversion/internal/datasource/file"
	"github.com/simonwiles/patent-conversion/internal/datasource/httpds"
	"github.com/simonwiles/patent-conversion/internal/extract"
	"github.com/simonwiles/patent-conversion/internal/metrics"
	"github.com/simonwiles/patent-conversion/internal/metrics/datadog"
	"github.com/simonwiles/patent-conversion/internal/metrics/prompush"
	"github.com/simonwiles/patent-conversion/internal/schema"
	"github.com/simonwiles/patent-conversion/internal/storage"
	"github.com/simonwiles/patent-conversion/internal/storage/csvdir"
	"github.com/simonwiles/patent-conversion/internal/storage/postgres"
	"github.com/simonwiles/patent-conversion/internal/storage/sqlite"
)

// main is the entry point for the preprocess binary. It loads the mapping
// config, optionally initializes a metrics backend, validates the output
// target, and converts every batch file into relational tables.
func main() {
	var (
		cfgPath           string
		input             string
		inputList         string
		outDir            string
		format            string
		dsn               string
		pgSchema          string
		jobName           string
		docIDPath         string
		workers           int
		progress          int
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/grant-redbook.json", "mapping config JSON path")
	flag.StringVar(&input, "input", "", "batch file to convert (path or http(s) URL)")
	flag.StringVar(&inputList, "input-list", "", "file naming one batch per line; overrides -input")
	flag.StringVar(&outDir, "out", "tables", "output directory for CSV format")
	flag.StringVar(&format, "format", "csv", "output format: csv, sqlite or postgres")
	flag.StringVar(&dsn, "dsn", "", "database DSN for sqlite/postgres formats")
	flag.StringVar(&pgSchema, "pg-schema", "", "optional Postgres schema to qualify table names")
	flag.StringVar(&jobName, "job", "patent_conversion", "job name for metrics")
	flag.StringVar(&docIDPath, "doc-id-path", "", "tag path of the document id used in failure reports")
	flag.IntVar(&workers, "workers", 1, "parallel parse workers per batch")
	flag.IntVar(&progress, "progress", 100, "log progress every N documents (0 disables)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address for the datadog backend (overrides env DD_AGENT_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the mapping config and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	quiet := flag.Bool("q", false, "suppress all non-fatal logs")

	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if *quiet {
		logger.SetOutput(io.Discard)
	}

	cfg, err := schema.LoadFile(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if validate {
		logger.Printf("config is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(logger, jobName, metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			logger.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()

	// The sink is opened before any parsing so a bad output target fails
	// the run immediately.
	sink, err := newSink(ctx, format, outDir, dsn, pgSchema)
	if err != nil {
		fatalf("%v", err)
	}
	defer sink.Close()

	inputs, err := resolveInputs(input, inputList)
	if err != nil {
		fatalf("%v", err)
	}

	start := time.Now()
	store := extract.NewTableStore()
	var processed, failed int

	for _, in := range inputs {
		if *verbose {
			logger.Printf("level=info msg=\"converting batch\" input=%s format=%s workers=%d", in, format, workers)
		}
		sum, err := convertBatch(ctx, cfg, store, logger, in, docIDPath, workers, progress)
		if err != nil {
			fatalf("convert %s: %v", in, err)
		}
		processed += sum.Processed
		failed += sum.Failed
	}

	if err := writeTables(ctx, cfg, store, sink, jobName); err != nil {
		fatalf("%v", err)
	}

	logger.Printf("level=info msg=done batches=%d documents=%d failed=%d tables=%d elapsed=%s",
		len(inputs), processed, failed, len(store.Tables()),
		time.Since(start).Truncate(time.Millisecond))
}

// convertBatch streams one batch file through the extractor into store.
func convertBatch(ctx context.Context, cfg *schema.Config, store *extract.TableStore, logger extract.Logger, input, docIDPath string, workers, progress int) (extract.Summary, error) {
	var src datasource.Source
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		src = httpds.NewRemote(input, nil)
	} else {
		src = file.NewLocal(input)
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return extract.Summary{}, err
	}
	defer rc.Close()

	r := &extract.Runner{
		Config:    cfg,
		Store:     store,
		Logger:    logger,
		Job:       filepath.Base(input),
		DocIDPath: docIDPath,
		Progress:  progress,
	}
	return r.RunParallel(ctx, rc, workers)
}

// writeTables flushes the store through the sink using the config's
// resolved column order.
func writeTables(ctx context.Context, cfg *schema.Config, store *extract.TableStore, sink storage.Sink, jobName string) error {
	columns := cfg.Fieldnames()
	for _, name := range store.Tables() {
		t := storage.Table{
			Name:    name,
			Columns: columns[name],
			Rows:    store.Rows(name),
		}
		if err := sink.WriteTable(ctx, t); err != nil {
			return err
		}
		metrics.RecordRows(jobName, name, "written", int64(len(t.Rows)))
		metrics.RecordTables(jobName, 1)
	}
	return nil
}

func newSink(ctx context.Context, format, outDir, dsn, pgSchema string) (storage.Sink, error) {
	switch format {
	case "csv":
		return csvdir.New(outDir)
	case "sqlite":
		return sqlite.New(ctx, dsn)
	case "postgres":
		s, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		s.Schema = pgSchema
		return s, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want csv, sqlite or postgres)", format)
	}
}

func resolveInputs(input, inputList string) ([]string, error) {
	if inputList != "" {
		inputs, err := file.ReadList(inputList)
		if err != nil {
			return nil, fmt.Errorf("read input list: %w", err)
		}
		if len(inputs) == 0 {
			return nil, fmt.Errorf("input list %s names no batches", inputList)
		}
		return inputs, nil
	}
	if input == "" {
		return nil, fmt.Errorf("no input: use -input or -input-list")
	}
	return []string{input}, nil
}

// initMetrics decides the metrics backend: flag, then env, then disabled.
func initMetrics(logger *log.Logger, jobName, backendName, gwURL, statsdAddr string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			logger.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		logger.Printf("metrics: backend=%v url=%v job=%v", backendName, gwURL, jobName)
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = os.Getenv("DD_AGENT_ADDR")
		}
		if statsdAddr == "" {
			statsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: statsdAddr})
		if err != nil {
			logger.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		logger.Printf("metrics: backend=%v addr=%v job=%v", backendName, statsdAddr, jobName)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			logger.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		logger.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
