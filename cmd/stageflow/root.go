package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stageflow/internal/config"
	"stageflow/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stageflow",
	Short: "Sankey diagram of internship application stages",
	Long: "Stageflow reads an application-tracking spreadsheet and renders a\n" +
		"Sankey diagram of how applications moved between stages\n" +
		"(source, interviews, offers, rejections).",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logging.Setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the stageflow config file")
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
