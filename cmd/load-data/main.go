// Command load-data replaces the stored product records from a CSV file or
// from a synthetic generator.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"salesreport/internal/backend"
	"salesreport/internal/cli"
	"salesreport/internal/core"
	"salesreport/internal/ingest"
	applog "salesreport/internal/log"
	"salesreport/internal/services"
)

type options struct {
	csvPath  string
	generate bool
	rows     int
	seed     int64
	catalog  string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("load-data", flag.ContinueOnError)
	fs.StringVar(&opts.csvPath, "csv", "", "path of the product CSV to load")
	fs.BoolVar(&opts.generate, "generate", false, "load synthetic records instead of a CSV")
	fs.IntVar(&opts.rows, "rows", ingest.DefaultRows, "number of synthetic records")
	fs.Int64Var(&opts.seed, "seed", 0, "generator seed (0 picks one from the clock)")
	fs.StringVar(&opts.catalog, "catalog", "", "YAML catalog of categories and products for -generate")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.csvPath == "" && !opts.generate:
		return opts, fmt.Errorf("one of -csv or -generate is required")
	case opts.csvPath != "" && opts.generate:
		return opts, fmt.Errorf("-csv and -generate are mutually exclusive")
	case opts.generate && opts.rows < 1:
		return opts, fmt.Errorf("-rows must be positive")
	}
	return opts, nil
}

// loadRecords produces the records to install and a short source label for
// the records.replaced event.
func loadRecords(opts options, logger *applog.Logger) ([]core.ProductRecord, string, error) {
	if opts.generate {
		catalog := ingest.DefaultCatalog()
		if opts.catalog != "" {
			c, err := ingest.LoadCatalog(opts.catalog)
			if err != nil {
				return nil, "", err
			}
			catalog = c
		}
		seed := opts.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		logger.Info("Generating synthetic records", "rows", opts.rows, "seed", seed)
		return ingest.Generate(rand.New(rand.NewSource(seed)), opts.rows, catalog), "generate", nil
	}

	f, err := os.Open(opts.csvPath)
	if err != nil {
		return nil, "", fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	raw, err := ingest.ReadCSV(f)
	if err != nil {
		return nil, "", err
	}
	recs, report := ingest.Clean(raw)
	summary, _ := json.Marshal(report)
	logger.Info("Cleaned CSV records", "path", opts.csvPath, "report", string(summary))
	return recs, "csv:" + opts.csvPath, nil
}

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), applog.ComponentIngest)

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		bootLogger.Error("Invalid arguments", applog.FieldError, err.Error())
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(bootLogger, false)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentIngest)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	recs, source, err := loadRecords(opts, logger)
	if err != nil {
		logger.Error("Failed to read records", applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpParse)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer res.Cleanup()

	var events services.EventPublisher
	if res.Events != nil {
		events = res.Events
	}
	if err := services.NewLoadService(res.Backend, events).Replace(ctx, recs, source); err != nil {
		logger.Error("Failed to replace records", applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpReplace)
		res.Cleanup()
		os.Exit(1)
	}

	logger.Info("Records loaded", applog.FieldRecords, len(recs), applog.FieldSource, source,
		"backend", cfg.DataBackend)
}
