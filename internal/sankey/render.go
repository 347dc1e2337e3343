package sankey

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// pngTimeout bounds the whole serve-navigate-capture round trip.
const pngTimeout = 60 * time.Second

// ExportPNG captures the static image artifact: the diagram page is served
// on an ephemeral loopback port, opened in headless Chrome, and screenshotted
// once the plot reports itself rendered. Requires a Chrome/Chromium binary
// on the host.
func ExportPNG(ctx context.Context, d Diagram, path string, log *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", ErrRenderFailure, err)
	}

	base, stop, err := serveEphemeral(d)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	defer stop()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(d.Width, d.Height),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, runCancel := context.WithTimeout(browserCtx, pngTimeout)
	defer runCancel()

	if log != nil {
		log.Debug("capturing png", slog.String("url", base), slog.String("out", path))
	}

	var buf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate(base),
		chromedp.WaitReady("#sankey", chromedp.ByID),
		chromedp.WaitReady(`body[data-rendered="1"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, 92),
	)
	if err != nil {
		return fmt.Errorf("%w: capture: %v", ErrRenderFailure, err)
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	if log != nil {
		log.Info("png written", slog.String("path", path), slog.Int("bytes", len(buf)))
	}
	return nil
}
