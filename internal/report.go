package internal

import "factorrisk/internal/domain"

// Report is the analyst-facing result: one named, truncated and
// rounded decomposition table.
type Report struct {
	Name  string
	Table domain.DecompositionMatrix
}

type ReportOptions struct {
	Name string
	// NrowPrint caps the row count, portfolio row included
	NrowPrint int
	Digits    int
}

// FormatReport truncates then rounds - truncation first so rounding
// never runs on rows that get dropped anyway.
func FormatReport(m domain.DecompositionMatrix, opts ReportOptions) Report {
	table := m.Truncate(opts.NrowPrint).Round(opts.Digits)
	return Report{
		Name:  opts.Name,
		Table: table,
	}
}
