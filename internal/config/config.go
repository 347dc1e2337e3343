package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stage is one entry of the canonical funnel table. Order in the config file
// is the canonical display order. X/Y are optional fixed positions on the
// diagram canvas (0..1); zero values mean "let the layout engine place it".
type Stage struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	X        float64 `yaml:"x,omitempty"`
	Y        float64 `yaml:"y,omitempty"`
}

// Stage categories. Category drives node color and, for root/noreply, the
// synthetic funnel endpoints.
const (
	CategoryRoot         = "root"
	CategorySource       = "source"
	CategoryIntermediate = "intermediate"
	CategoryNoReply      = "noreply"
	CategoryRejection    = "rejection"
	CategoryDNF          = "dnf"
	CategoryOffer        = "offer"
)

type Config struct {
	Sheet struct {
		ID  string `yaml:"id"`
		Tab string `yaml:"tab"`
	} `yaml:"sheet"`

	Output struct {
		HTML       string `yaml:"html"`
		PNG        string `yaml:"png"`
		SnapshotDB string `yaml:"snapshot_db"`
	} `yaml:"output"`

	Diagram struct {
		Title    string `yaml:"title"`
		Subtitle string `yaml:"subtitle"`
		Width    int    `yaml:"width"`
		Height   int    `yaml:"height"`
	} `yaml:"diagram"`

	// Stages is the recognized-stage table in canonical order. Status values
	// not listed here are dropped during normalization. Sources need no
	// entries; anything observed in the Source column is recognized with
	// category "source".
	Stages []Stage `yaml:"stages"`

	// Palette maps category to an rgba() node color. Link colors are derived
	// from the target node color at half alpha.
	Palette map[string]string `yaml:"palette"`
}

// DefaultPath is where commands look for the config unless --config is given.
const DefaultPath = "stageflow.yaml"

// Default returns the built-in configuration: the original tracking
// convention's funnel table, palette, and layout. A sheet ID is the only
// thing it lacks.
func Default() Config {
	var c Config
	c.Sheet.Tab = "Applications"
	c.Output.HTML = "data/output/applications-sankey.html"
	c.Output.PNG = "data/output/applications-sankey.png"
	c.Output.SnapshotDB = ".stageflow/snapshots.db"
	c.Diagram.Title = "Internship Applications"
	c.Diagram.Width = 1200
	c.Diagram.Height = 800
	c.Stages = []Stage{
		{Name: "Applications", Category: CategoryRoot, X: 0.1, Y: 0.5},
		{Name: "No reply", Category: CategoryNoReply, X: 0.6, Y: 0.35},
		{Name: "Technical Assessment", Category: CategoryIntermediate, X: 0.55, Y: 0.725},
		{Name: "Online Interview", Category: CategoryIntermediate, X: 0.65, Y: 0.75},
		{Name: "On-site Interview", Category: CategoryIntermediate, X: 0.65, Y: 0.7},
		{Name: "Rejected after Applying", Category: CategoryRejection, X: 0.5, Y: 0.9},
		{Name: "Rejected after Interview", Category: CategoryRejection, X: 0.725, Y: 0.8},
		{Name: "Rejected", Category: CategoryRejection, X: 0.8, Y: 0.925},
		{Name: "DNF", Category: CategoryDNF, X: 0.625, Y: 0.825},
		{Name: "Offered", Category: CategoryOffer, X: 0.8, Y: 0.7},
		{Name: "Accepted", Category: CategoryOffer, X: 0.9, Y: 0.65},
		{Name: "Declined", Category: CategoryOffer, X: 0.85, Y: 0.75},
	}
	c.Palette = map[string]string{
		CategoryRoot:         "rgba(39, 125, 161, 1)",
		CategorySource:       "rgba(39, 125, 161, 1)",
		CategoryIntermediate: "rgba(249, 199, 79, 1)",
		CategoryNoReply:      "rgba(173, 181, 189, 1)",
		CategoryRejection:    "rgba(249, 65, 68, 1)",
		CategoryDNF:          "rgba(0, 0, 0, 1)",
		CategoryOffer:        "rgba(67, 170, 139, 1)",
	}
	return c
}

// Load reads a YAML config from path, layered over Default. A missing file
// is an error; use Default directly when no config exists.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, otherwise returns Default.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

var knownCategories = map[string]bool{
	CategoryRoot:         true,
	CategorySource:       true,
	CategoryIntermediate: true,
	CategoryNoReply:      true,
	CategoryRejection:    true,
	CategoryDNF:          true,
	CategoryOffer:        true,
}

// Validate checks the stage table and diagram geometry.
func (c Config) Validate() error {
	if c.Diagram.Width <= 0 || c.Diagram.Height <= 0 {
		return fmt.Errorf("diagram width/height must be positive")
	}
	seen := map[string]bool{}
	for _, s := range c.Stages {
		if s.Name == "" {
			return fmt.Errorf("stage with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stage %q", s.Name)
		}
		seen[s.Name] = true
		if !knownCategories[s.Category] {
			return fmt.Errorf("stage %q: unknown category %q", s.Name, s.Category)
		}
	}
	for cat := range c.Palette {
		if !knownCategories[cat] {
			return fmt.Errorf("palette: unknown category %q", cat)
		}
	}
	return nil
}

// Color returns the node color for a category, falling back to the default
// palette when the config omits one.
func (c Config) Color(category string) string {
	if col, ok := c.Palette[category]; ok {
		return col
	}
	return Default().Palette[category]
}

// WriteDefault writes a commented starter config to path. Refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	b, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	header := []byte("# stageflow configuration.\n" +
		"# sheet.id may be left empty and supplied via STAGEFLOW_SHEET_ID.\n" +
		"# stages lists the recognized status values in canonical funnel order;\n" +
		"# values not listed here are dropped with a warning.\n")
	return os.WriteFile(path, append(header, b...), 0644)
}
