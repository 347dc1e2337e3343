package main

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stageflow/internal/logging"
	"stageflow/internal/sankey"
)

var renderFlags struct {
	outHTML  string
	outPNG   string
	offline  bool
	skipPNG  bool
	snapshot bool
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run the full pipeline: load, reduce, write HTML and PNG artifacts",
	Long: `Loads application records from the configured sheet (or the local
snapshot with --offline), reduces them to stage transitions, writes the
interactive HTML artifact, and captures the static PNG via headless Chrome.

A run with zero transitions still succeeds and writes an empty diagram.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.outHTML, "html", "o", "", "HTML output path (default from config)")
	f.StringVar(&renderFlags.outPNG, "png", "", "PNG output path (default from config)")
	f.BoolVar(&renderFlags.offline, "offline", false, "use the latest snapshot instead of fetching")
	f.BoolVar(&renderFlags.skipPNG, "no-png", false, "skip the PNG capture (no Chrome needed)")
	f.BoolVar(&renderFlags.snapshot, "snapshot", false, "also save fetched records to the snapshot store")
}

func runRender(cmd *cobra.Command, _ []string) error {
	log := logging.New("render")
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	htmlPath := renderFlags.outHTML
	if htmlPath == "" {
		htmlPath = cfg.Output.HTML
	}
	pngPath := renderFlags.outPNG
	if pngPath == "" {
		pngPath = cfg.Output.PNG
	}

	recs, err := loadRecords(ctx, cfg, renderFlags.offline, log)
	if err != nil {
		return err
	}
	if renderFlags.snapshot && !renderFlags.offline {
		sheetID, _ := resolveSheetID(cfg)
		if err := snapshotRecords(cfg, sheetID, recs, log); err != nil {
			return err
		}
	}

	red := reduceRecords(cfg, recs, log)
	diagram := sankey.Build(red, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sankey.WriteHTML(diagram, htmlPath)
	})
	if !renderFlags.skipPNG {
		g.Go(func() error {
			return sankey.ExportPNG(gctx, diagram, pngPath, log)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("artifacts written",
		slog.String("html", htmlPath),
		slog.String("png", pngOrSkipped(pngPath)),
		slog.Int("nodes", len(red.Nodes)),
		slog.Int("transitions", red.TotalWeight()))
	return nil
}

func pngOrSkipped(path string) string {
	if renderFlags.skipPNG {
		return "(skipped)"
	}
	return path
}
