package funnel

import (
	"log/slog"
	"sort"
	"strings"
)

// Node is one stage of the output graph. Index is positional within a single
// reduction and carries no meaning beyond linking edges to nodes.
type Node struct {
	Name     string
	Category string
	Index    int
	// Total is the number of records whose normalized flow passes through
	// this stage; it is what the diagram prints after the node name.
	Total int
}

// Edge is a directed stage transition observed Count times. From/To name the
// stages; Source/Target are the node indices of the same reduction.
type Edge struct {
	From   string
	To     string
	Source int
	Target int
	Count  int
}

// Reduction is the complete output of the stage-flow reducer: everything the
// renderer needs, recomputed from scratch each run.
type Reduction struct {
	Nodes []Node
	Edges []Edge
	// Records is the number of records that contributed at least one stage;
	// Skipped counts records whose flow normalized to nothing.
	Records int
	Skipped int
}

// FlowSequence expands a record into its raw stage sequence: the root stage,
// the application source, then every status in order. A record with a source
// but no status updates ends at the synthetic no-reply terminal.
func FlowSequence(rec ApplicationRecord, t *Table) []string {
	seq := []string{t.Root()}
	if rec.Source != "" {
		seq = append(seq, rec.Source)
	}
	seq = append(seq, rec.Statuses...)
	if len(rec.Statuses) == 0 {
		seq = append(seq, t.NoReply())
	}
	return seq
}

// Normalize reduces a stage sequence to its canonical form: blank and
// unrecognized entries dropped, consecutive duplicates collapsed.
// Normalizing an already-normal sequence returns it unchanged.
func Normalize(seq []string, t *Table) []string {
	var out []string
	for _, s := range seq {
		s = strings.TrimSpace(s)
		if s == "" || !t.Recognized(s) {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Reduce counts stage transitions across all records. Each adjacent pair in
// a record's normalized sequence contributes exactly one to exactly one
// edge. Nodes are the endpoints of surviving edges, ordered by the canonical
// table order; stages touching no edge are left out entirely. Zero usable
// records produce an empty reduction, not an error.
func Reduce(records []ApplicationRecord, table *Table, log *slog.Logger) Reduction {
	if log == nil {
		log = discard()
	}

	sources := make([]string, 0, len(records))
	for _, rec := range records {
		sources = append(sources, rec.Source)
	}
	t := table.WithSources(sources)

	type pair struct{ from, to string }
	counts := map[pair]int{}
	totals := map[string]int{}
	var contributed, skipped int

	for _, rec := range records {
		seq := Normalize(FlowSequence(rec, t), t)
		if len(seq) == 0 {
			skipped++
			log.Warn("record has no recognized stages",
				slog.String("company", rec.Company),
				slog.String("role", rec.Role))
			continue
		}
		contributed++
		touched := map[string]bool{}
		for _, s := range seq {
			if !touched[s] {
				touched[s] = true
				totals[s]++
			}
		}
		for i := 0; i+1 < len(seq); i++ {
			counts[pair{seq[i], seq[i+1]}]++
		}
	}

	// Node set: canonical order, filtered to edge endpoints.
	endpoint := map[string]bool{}
	for p := range counts {
		endpoint[p.from] = true
		endpoint[p.to] = true
	}
	red := Reduction{Records: contributed, Skipped: skipped}
	index := map[string]int{}
	for _, name := range t.Order() {
		if !endpoint[name] {
			continue
		}
		index[name] = len(red.Nodes)
		red.Nodes = append(red.Nodes, Node{
			Name:     name,
			Category: t.Category(name),
			Index:    len(red.Nodes),
			Total:    totals[name],
		})
	}
	for p, n := range counts {
		red.Edges = append(red.Edges, Edge{
			From:   p.from,
			To:     p.to,
			Source: index[p.from],
			Target: index[p.to],
			Count:  n,
		})
	}
	sort.Slice(red.Edges, func(i, j int) bool {
		if red.Edges[i].Source != red.Edges[j].Source {
			return red.Edges[i].Source < red.Edges[j].Source
		}
		return red.Edges[i].Target < red.Edges[j].Target
	})
	return red
}

// TotalWeight sums all edge counts: the number of stage transitions observed
// across every record.
func (r Reduction) TotalWeight() int {
	var n int
	for _, e := range r.Edges {
		n += e.Count
	}
	return n
}
