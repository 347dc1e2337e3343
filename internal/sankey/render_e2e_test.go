//go:build e2e

package sankey

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stageflow/internal/config"
)

// Requires a Chrome/Chromium binary and network access to the Plotly CDN.
func TestExportPNG_WritesImage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	dir := t.TempDir()
	out := filepath.Join(dir, "sankey.png")
	d := Build(testReduction(), config.Default())

	if err := ExportPNG(ctx, d, out, nil); err != nil {
		t.Fatalf("export: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("png not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("png is empty")
	}
	b, _ := os.ReadFile(out)
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Error("output does not look like a PNG")
	}
}
