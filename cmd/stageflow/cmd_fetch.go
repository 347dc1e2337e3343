package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"stageflow/internal/config"
	"stageflow/internal/logging"
)

var fetchFlags struct {
	initConfig bool
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch sheet records into the local snapshot store",
	Long: `Fetches the application records from the configured sheet and saves
them to the local SQLite snapshot, so later renders and summaries can run
with --offline.

With --init, writes a commented starter config file instead and exits.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchFlags.initConfig, "init", false, "write a starter config file and exit")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if fetchFlags.initConfig {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s — set sheet.id (or %s) and run 'stageflow fetch'\n", configPath, sheetIDEnv)
		return nil
	}

	log := logging.New("fetch")
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sheetID, records, err := fetchRecords(ctx, cfg, log)
	if err != nil {
		return err
	}
	return snapshotRecords(cfg, sheetID, records, log)
}
