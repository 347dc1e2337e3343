// Package sankey renders a stage-flow reduction as a Plotly sankey diagram:
// an interactive HTML page and a static PNG captured from headless Chrome.
package sankey

import (
	"fmt"
	"strings"

	"stageflow/internal/config"
	"stageflow/internal/funnel"
)

// Diagram is the fully resolved drawing spec: parallel node arrays and
// parallel link arrays, exactly as the plotting library wants them. It is
// built once per run and only read afterwards.
type Diagram struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`

	Labels     []string  `json:"labels"`
	NodeColors []string  `json:"nodeColors"`
	NodeX      []float64 `json:"nodeX,omitempty"`
	NodeY      []float64 `json:"nodeY,omitempty"`

	Source     []int    `json:"source"`
	Target     []int    `json:"target"`
	Value      []int    `json:"value"`
	LinkColors []string `json:"linkColors"`
}

// Empty reports whether the diagram has no links. An empty diagram still
// renders, as a blank canvas with the title.
func (d Diagram) Empty() bool { return len(d.Source) == 0 }

// Build resolves a reduction against the config into a Diagram: labels carry
// the per-node totals, node colors come from the category palette, and link
// colors are the target node's color at half opacity. Node positions are
// emitted only when every node has one; a partial layout confuses the
// plotting engine more than no layout at all.
func Build(red funnel.Reduction, cfg config.Config) Diagram {
	d := Diagram{
		Title:    cfg.Diagram.Title,
		Subtitle: cfg.Diagram.Subtitle,
		Width:    cfg.Diagram.Width,
		Height:   cfg.Diagram.Height,
	}

	pos := map[string][2]float64{}
	for _, s := range cfg.Stages {
		if s.X != 0 || s.Y != 0 {
			pos[s.Name] = [2]float64{s.X, s.Y}
		}
	}

	nodeColor := make([]string, len(red.Nodes))
	placed := true
	var xs, ys []float64
	for i, n := range red.Nodes {
		d.Labels = append(d.Labels, fmt.Sprintf("%s: %d", n.Name, n.Total))
		nodeColor[i] = cfg.Color(n.Category)
		d.NodeColors = append(d.NodeColors, nodeColor[i])

		p, ok := pos[n.Name]
		if !ok && n.Category == config.CategorySource {
			// sources are discovered from data; park them in the source band
			p, ok = [2]float64{0.3, 0.1}, true
		}
		if !ok {
			placed = false
			continue
		}
		xs = append(xs, p[0])
		ys = append(ys, p[1])
	}
	if placed && len(xs) == len(red.Nodes) {
		d.NodeX, d.NodeY = xs, ys
	}

	for _, e := range red.Edges {
		d.Source = append(d.Source, e.Source)
		d.Target = append(d.Target, e.Target)
		d.Value = append(d.Value, e.Count)
		d.LinkColors = append(d.LinkColors, halfAlpha(nodeColor[e.Target]))
	}
	return d
}

// halfAlpha rewrites an rgba() color to 0.5 opacity. Colors in any other
// notation are passed through unchanged.
func halfAlpha(c string) string {
	inner, ok := strings.CutPrefix(c, "rgba(")
	if !ok {
		return c
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return c
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return c
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	parts[3] = "0.5"
	return "rgba(" + strings.Join(parts, ", ") + ")"
}
