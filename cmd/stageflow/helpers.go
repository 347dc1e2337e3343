package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"stageflow/internal/config"
	"stageflow/internal/funnel"
	"stageflow/internal/sheets"
	"stageflow/internal/store"
)

// sheetIDEnv supplies the sheet ID when the config leaves it empty,
// typically from a .env file next to the config.
const sheetIDEnv = "STAGEFLOW_SHEET_ID"

func loadConfig() (config.Config, error) {
	return config.LoadOrDefault(configPath)
}

func resolveSheetID(cfg config.Config) (string, error) {
	if cfg.Sheet.ID != "" {
		return cfg.Sheet.ID, nil
	}
	if id := os.Getenv(sheetIDEnv); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no sheet ID configured\n\n"+
		"Set it in %s:\n"+
		"  sheet:\n"+
		"    id: <your spreadsheet ID>\n\n"+
		"Or via environment (a .env file works):\n"+
		"  export %s=<your spreadsheet ID>", configPath, sheetIDEnv)
}

// fetchRecords loads records live from the sheet.
func fetchRecords(ctx context.Context, cfg config.Config, log *slog.Logger) (string, []funnel.ApplicationRecord, error) {
	sheetID, err := resolveSheetID(cfg)
	if err != nil {
		return "", nil, err
	}
	client, err := sheets.New(sheets.WithLogger(log))
	if err != nil {
		return "", nil, err
	}
	header, rows, err := client.FetchCSV(ctx, sheetID, cfg.Sheet.Tab)
	if err != nil {
		return "", nil, err
	}
	records := funnel.ParseRows(header, rows, log)
	log.Info("records loaded",
		slog.Int("rows", len(rows)),
		slog.Int("records", len(records)))
	return sheetID, records, nil
}

// snapshotRecords saves a fetch into the local snapshot store.
func snapshotRecords(cfg config.Config, sheetID string, records []funnel.ApplicationRecord, log *slog.Logger) error {
	s, err := store.Open(cfg.Output.SnapshotDB)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer s.Close()
	runID, err := s.SaveRun(sheetID, records)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Info("snapshot saved",
		slog.Int64("run", runID),
		slog.Int("records", len(records)),
		slog.String("db", cfg.Output.SnapshotDB))
	return nil
}

// loadRecords obtains records either live or from the latest snapshot.
func loadRecords(ctx context.Context, cfg config.Config, offline bool, log *slog.Logger) ([]funnel.ApplicationRecord, error) {
	if !offline {
		_, records, err := fetchRecords(ctx, cfg, log)
		return records, err
	}
	s, err := store.Open(cfg.Output.SnapshotDB)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	defer s.Close()
	run, records, err := s.LatestRun()
	if err != nil {
		return nil, fmt.Errorf("offline mode needs a snapshot; run 'stageflow fetch' first: %w", err)
	}
	log.Info("using snapshot",
		slog.Int64("run", run.ID),
		slog.Time("fetched", run.FetchedAt),
		slog.Int("records", len(records)))
	return records, nil
}

// reduceRecords runs the stage-flow reducer over records with the configured
// funnel table.
func reduceRecords(cfg config.Config, records []funnel.ApplicationRecord, log *slog.Logger) funnel.Reduction {
	table := funnel.NewTable(cfg.Stages)
	red := funnel.Reduce(records, table, log)
	if len(red.Edges) == 0 {
		log.Warn("no stage transitions found; the diagram will be empty")
	}
	return red
}
