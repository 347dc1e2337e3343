package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"stageflow/internal/logging"
	"stageflow/internal/sankey"
)

var serveFlags struct {
	port    int
	bind    string
	offline bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive diagram on a local port",
	Long: `Loads records, reduces them, and hosts the interactive Sankey page on
a loopback HTTP server until interrupted. No artifacts are written.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.IntVar(&serveFlags.port, "port", 8400, "HTTP port")
	f.StringVar(&serveFlags.bind, "bind", "127.0.0.1", "bind address")
	f.BoolVar(&serveFlags.offline, "offline", false, "use the latest snapshot instead of fetching")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.New("serve")
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := loadRecords(ctx, cfg, serveFlags.offline, log)
	if err != nil {
		return err
	}
	red := reduceRecords(cfg, records, log)
	diagram := sankey.Build(red, cfg)

	log.Info("diagram ready",
		slog.String("url", fmt.Sprintf("http://%s:%d", serveFlags.bind, serveFlags.port)),
		slog.Int("nodes", len(red.Nodes)),
		slog.Int("edges", len(red.Edges)))
	return sankey.Serve(ctx, diagram, serveFlags.bind, serveFlags.port, log)
}
