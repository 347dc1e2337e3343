package sankey

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"stageflow/internal/config"
	"stageflow/internal/funnel"
)

func testReduction() funnel.Reduction {
	table := funnel.NewTable(config.Default().Stages)
	records := []funnel.ApplicationRecord{
		{Company: "A", Role: "x", Source: "LinkedIn", Statuses: []string{"Online Interview", "Offered"}},
		{Company: "B", Role: "y", Source: "LinkedIn"},
	}
	return funnel.Reduce(records, table, nil)
}

func TestBuild_LabelsAndColors(t *testing.T) {
	cfg := config.Default()
	d := Build(testReduction(), cfg)

	if d.Labels[0] != "Applications: 2" {
		t.Errorf("root label = %q, want totals appended", d.Labels[0])
	}
	if len(d.Labels) != len(d.NodeColors) {
		t.Fatalf("labels/colors length mismatch: %d vs %d", len(d.Labels), len(d.NodeColors))
	}
	if d.NodeColors[0] != cfg.Color(config.CategoryRoot) {
		t.Errorf("root color = %q", d.NodeColors[0])
	}

	if len(d.Source) != len(d.Target) || len(d.Source) != len(d.Value) || len(d.Source) != len(d.LinkColors) {
		t.Fatal("link arrays must be parallel")
	}
	for i, c := range d.LinkColors {
		if !strings.HasSuffix(c, "0.5)") {
			t.Errorf("link %d color %q not half-alpha", i, c)
		}
	}
}

func TestBuild_LinkColorFollowsTarget(t *testing.T) {
	cfg := config.Default()
	d := Build(testReduction(), cfg)
	for i, tgt := range d.Target {
		want := halfAlpha(d.NodeColors[tgt])
		if d.LinkColors[i] != want {
			t.Errorf("link %d color = %q, want %q (target node)", i, d.LinkColors[i], want)
		}
	}
}

func TestBuild_PositionsAllOrNothing(t *testing.T) {
	cfg := config.Default()
	d := Build(testReduction(), cfg)
	// every default stage has a position and sources get the source band,
	// so the layout must be emitted in full
	if len(d.NodeX) != len(d.Labels) || len(d.NodeY) != len(d.Labels) {
		t.Fatalf("expected full layout, got %d/%d positions for %d nodes",
			len(d.NodeX), len(d.NodeY), len(d.Labels))
	}

	// drop one stage's position: layout must disappear entirely
	cfg2 := config.Default()
	for i := range cfg2.Stages {
		if cfg2.Stages[i].Name == "No reply" {
			cfg2.Stages[i].X, cfg2.Stages[i].Y = 0, 0
		}
	}
	d2 := Build(testReduction(), cfg2)
	if len(d2.NodeX) != 0 || len(d2.NodeY) != 0 {
		t.Error("partial layout should be dropped entirely")
	}
}

func TestBuild_EmptyReduction(t *testing.T) {
	d := Build(funnel.Reduction{}, config.Default())
	if !d.Empty() {
		t.Error("empty reduction should build an empty diagram")
	}
	if len(d.Labels) != 0 {
		t.Errorf("labels = %v, want none", d.Labels)
	}
	if d.Title == "" {
		t.Error("empty diagram keeps its title")
	}
}

func TestHalfAlpha(t *testing.T) {
	cases := []struct{ in, want string }{
		{"rgba(249, 65, 68, 1)", "rgba(249, 65, 68, 0.5)"},
		{"rgba(0,0,0,1)", "rgba(0, 0, 0, 0.5)"},
		{"#ff0000", "#ff0000"},
		{"rgb(1, 2, 3)", "rgb(1, 2, 3)"},
	}
	for _, tc := range cases {
		if got := halfAlpha(tc.in); got != tc.want {
			t.Errorf("halfAlpha(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(testReduction(), config.Default())
	b := Build(testReduction(), config.Default())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("two builds differ:\n%s", diff)
	}
}
