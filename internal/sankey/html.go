package sankey

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// ErrRenderFailure marks a fatal output failure: an artifact could not be
// written or captured.
var ErrRenderFailure = errors.New("render failure")

//go:embed assets/sankey.html.tmpl
var assetsFS embed.FS

var pageTmpl = template.Must(template.ParseFS(assetsFS, "assets/sankey.html.tmpl"))

// RenderHTML writes the interactive page for the diagram to w. An empty
// diagram renders a titled blank canvas; this is expected output for a run
// with no transitions, not an error.
func RenderHTML(d Diagram, w io.Writer) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal diagram: %w", err)
	}
	data := struct {
		Title string
		JSON  template.JS
	}{Title: d.Title, JSON: template.JS(raw)}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}

// WriteHTML renders the interactive artifact to path, creating parent
// directories as needed.
func WriteHTML(d Diagram, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", ErrRenderFailure, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	defer f.Close()
	if err := RenderHTML(d, f); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return nil
}
