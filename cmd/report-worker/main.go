// Command report-worker republishes the category summary to Google Sheets
// whenever the records are replaced.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"salesreport/internal/backend"
	"salesreport/internal/cli"
	"salesreport/internal/config"
	applog "salesreport/internal/log"
	"salesreport/internal/services"
	"salesreport/internal/sheets"
	gsheet "salesreport/internal/sheets/google"
	sheetmem "salesreport/internal/sheets/memory"
	"salesreport/internal/worker"
)

// newReportWriter returns the Sheets client, or an in-memory sheet when no
// spreadsheet is configured.
func newReportWriter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.ReportWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, publishing to an in-memory sheet")
		return sheetmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetName:     cfg.GoogleReportSheetName,
		PublishRPM:    cfg.SheetsPublishRPM,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleReportSheetName)
	return client, nil
}

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger, false)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentWorker)

	logger.Info("Starting report-worker")

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

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

	if res.Events == nil && cfg.ReportPublishInterval <= 0 {
		logger.Error("Nothing to do: set AMQP_URL or REPORT_PUBLISH_INTERVAL")
		res.Cleanup()
		os.Exit(1)
	}

	writer, err := newReportWriter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize report writer", applog.FieldError, err.Error())
		res.Cleanup()
		os.Exit(1)
	}

	reports := services.NewReportService(res.Backend, writer)
	w := worker.NewReportWorker(reports, cfg.ReportPublishInterval)

	g, gctx := errgroup.WithContext(ctx)
	if res.Events != nil {
		g.Go(func() error {
			err := res.Events.ConsumeRecordsReplaced(gctx, w.HandleRecordsReplaced)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if err := w.Start(gctx); err != nil {
		logger.Error("Failed to start periodic publishing", applog.FieldError, err.Error())
	}
	if !w.IsRunning() {
		logger.Info("Periodic publishing disabled, publishing on records.replaced only")
	}

	<-gctx.Done()
	logger.Info("Shutting down worker...")

	if w.IsRunning() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := w.Stop(stopCtx); err != nil {
			logger.Warn("Worker stop timed out", applog.FieldError, err.Error())
		}
		stopCancel()
	}

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", applog.FieldError, err.Error())
		res.Cleanup()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
