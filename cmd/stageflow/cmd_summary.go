package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"stageflow/internal/format"
	"stageflow/internal/logging"
)

var summaryFlags struct {
	markdown bool
	offline  bool
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the stage transition table",
	Long: `Loads records, reduces them, and prints the transition edges and
per-stage totals as a table. Useful for checking the numbers behind the
diagram without opening it.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.BoolVar(&summaryFlags.markdown, "markdown", false, "render Markdown instead of an ASCII table")
	f.BoolVar(&summaryFlags.offline, "offline", false, "use the latest snapshot instead of fetching")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	log := logging.New("summary")
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := loadRecords(ctx, cfg, summaryFlags.offline, log)
	if err != nil {
		return err
	}
	red := reduceRecords(cfg, records, log)

	mode := format.ASCII
	if summaryFlags.markdown {
		mode = format.Markdown
	}

	edges := format.NewTable(mode)
	edges.Header("From", "To", "Count")
	edges.AlignRight(3)
	for _, e := range red.Edges {
		edges.Row(e.From, e.To, e.Count)
	}
	edges.Footer("", "Total", red.TotalWeight())

	nodes := format.NewTable(mode)
	nodes.Header("Stage", "Applications")
	nodes.AlignRight(2)
	for _, n := range red.Nodes {
		nodes.Row(n.Name, n.Total)
	}

	fmt.Println(edges.String())
	fmt.Println()
	fmt.Println(nodes.String())
	if red.Skipped > 0 {
		fmt.Printf("\n%d record(s) had no recognized stages and were skipped\n", red.Skipped)
	}
	return nil
}
