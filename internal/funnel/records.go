// Package funnel turns rows of a personal application-tracking sheet into a
// weighted graph of stage transitions.
package funnel

import (
	"io"
	"log/slog"
	"strings"
)

// ApplicationRecord is one application row from the sheet. Immutable once
// parsed; the pipeline owns it for a single run.
type ApplicationRecord struct {
	Company   string
	Role      string
	Source    string
	AppliedAt string   // raw date text, kept as-is
	Statuses  []string // status columns in sheet order, blanks removed
}

// Column headers recognized in the sheet. Status columns are any header
// with the StatusPrefix ("Status 1", "Status 2", ...).
const (
	colCompany   = "Company"
	colRole      = "Position"
	colSource    = "Source"
	colAppliedAt = "Date Applied"

	// StatusPrefix marks the ordered status columns.
	StatusPrefix = "Status"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseRows maps raw CSV rows to ApplicationRecords. Rows that identify no
// application (blank company and role) or carry no flow at all (no source
// and no statuses) are skipped with a warning; parsing never fails on a
// single bad row.
func ParseRows(header []string, rows [][]string, log *slog.Logger) []ApplicationRecord {
	if log == nil {
		log = discard()
	}

	col := map[string]int{}
	var statusCols []int
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.HasPrefix(h, StatusPrefix) {
			statusCols = append(statusCols, i)
			continue
		}
		col[h] = i
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []ApplicationRecord
	for n, row := range rows {
		rec := ApplicationRecord{
			Company:   cell(row, colCompany),
			Role:      cell(row, colRole),
			Source:    cell(row, colSource),
			AppliedAt: cell(row, colAppliedAt),
		}
		for _, i := range statusCols {
			if i >= len(row) {
				continue
			}
			if s := strings.TrimSpace(row[i]); s != "" {
				rec.Statuses = append(rec.Statuses, s)
			}
		}

		if rec.Company == "" && rec.Role == "" {
			if !blankRow(row) {
				log.Warn("skipping row with no company or role", slog.Int("row", n+2))
			}
			continue
		}
		if rec.Source == "" && len(rec.Statuses) == 0 {
			log.Warn("skipping row with no source or status",
				slog.Int("row", n+2),
				slog.String("company", rec.Company),
				slog.String("role", rec.Role))
			continue
		}
		records = append(records, rec)
	}
	return records
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
