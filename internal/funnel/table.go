package funnel

import (
	"sort"

	"stageflow/internal/config"
)

// Fallback endpoint names when the config table omits root/noreply stages.
const (
	defaultRoot    = "Applications"
	defaultNoReply = "No reply"
)

// Table is the recognized-stage table: canonical display order plus a
// category per stage. It is the single source of node ordering, so two runs
// over the same records always produce the same diagram.
type Table struct {
	order []string
	cat   map[string]string
}

// NewTable builds a Table from the configured stage list, preserving its
// order as the canonical order.
func NewTable(stages []config.Stage) *Table {
	t := &Table{cat: make(map[string]string, len(stages))}
	for _, s := range stages {
		if s.Name == "" || t.Recognized(s.Name) {
			continue
		}
		t.order = append(t.order, s.Name)
		t.cat[s.Name] = s.Category
	}
	return t
}

// WithSources returns a copy of the table that additionally recognizes the
// given source names. New sources are inserted directly after the root
// stage, sorted by name so encounter order never leaks into the output.
// Sources already present in the table keep their configured position.
func (t *Table) WithSources(names []string) *Table {
	var fresh []string
	seen := map[string]bool{}
	for _, n := range names {
		if n == "" || t.Recognized(n) || seen[n] {
			continue
		}
		seen[n] = true
		fresh = append(fresh, n)
	}
	if len(fresh) == 0 {
		return t
	}
	sort.Strings(fresh)

	out := &Table{cat: make(map[string]string, len(t.cat)+len(fresh))}
	for k, v := range t.cat {
		out.cat[k] = v
	}
	for _, n := range fresh {
		out.cat[n] = config.CategorySource
	}

	rootAt := -1
	for i, n := range t.order {
		if t.cat[n] == config.CategoryRoot {
			rootAt = i
			break
		}
	}
	out.order = append(out.order, t.order[:rootAt+1]...)
	out.order = append(out.order, fresh...)
	out.order = append(out.order, t.order[rootAt+1:]...)
	return out
}

// Recognized reports whether name is a known stage.
func (t *Table) Recognized(name string) bool {
	_, ok := t.cat[name]
	return ok
}

// Category returns the category for a recognized stage ("" otherwise).
func (t *Table) Category(name string) string { return t.cat[name] }

// Order returns the canonical stage order. Callers must not mutate it.
func (t *Table) Order() []string { return t.order }

// Root returns the name of the root stage every record flows out of.
func (t *Table) Root() string {
	for _, n := range t.order {
		if t.cat[n] == config.CategoryRoot {
			return n
		}
	}
	return defaultRoot
}

// NoReply returns the name of the synthetic terminal for applications that
// never got a response.
func (t *Table) NoReply() string {
	for _, n := range t.order {
		if t.cat[n] == config.CategoryNoReply {
			return n
		}
	}
	return defaultNoReply
}
