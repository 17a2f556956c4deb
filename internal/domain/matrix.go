package domain

import "github.com/shopspring/decimal"

// DecompositionMatrix is a labeled table of contribution figures. Row 0
// is the portfolio row (or the first risk measure in portfolio-only
// reports); columns follow the layout of the decomposition mode.
type DecompositionMatrix struct {
	RowLabels []string
	ColLabels []string
	Values    [][]float64
}

func (m DecompositionMatrix) NumRows() int {
	return len(m.RowLabels)
}

func (m DecompositionMatrix) NumCols() int {
	return len(m.ColLabels)
}

// Truncate keeps the first n rows. The portfolio row is row 0, so it
// always survives truncation.
func (m DecompositionMatrix) Truncate(n int) DecompositionMatrix {
	if n < 0 || n >= len(m.RowLabels) {
		return m
	}
	return DecompositionMatrix{
		RowLabels: m.RowLabels[:n],
		ColLabels: m.ColLabels,
		Values:    m.Values[:n],
	}
}

// Round rounds every value to the given number of decimal digits,
// half away from zero.
func (m DecompositionMatrix) Round(digits int) DecompositionMatrix {
	out := DecompositionMatrix{
		RowLabels: m.RowLabels,
		ColLabels: m.ColLabels,
		Values:    make([][]float64, len(m.Values)),
	}
	for i, row := range m.Values {
		rounded := make([]float64, len(row))
		for j, v := range row {
			rounded[j] = decimal.NewFromFloat(v).Round(int32(digits)).InexactFloat64()
		}
		out.Values[i] = rounded
	}
	return out
}

func (m DecompositionMatrix) Transpose() DecompositionMatrix {
	out := DecompositionMatrix{
		RowLabels: m.ColLabels,
		ColLabels: m.RowLabels,
		Values:    make([][]float64, len(m.ColLabels)),
	}
	for j := range m.ColLabels {
		row := make([]float64, len(m.RowLabels))
		for i := range m.RowLabels {
			row[i] = m.Values[i][j]
		}
		out.Values[j] = row
	}
	return out
}

func (m DecompositionMatrix) DropLeadingColumn() DecompositionMatrix {
	if len(m.ColLabels) == 0 {
		return m
	}
	out := DecompositionMatrix{
		RowLabels: m.RowLabels,
		ColLabels: m.ColLabels[1:],
		Values:    make([][]float64, len(m.Values)),
	}
	for i, row := range m.Values {
		out.Values[i] = row[1:]
	}
	return out
}

func (m DecompositionMatrix) ReverseRows() DecompositionMatrix {
	n := len(m.RowLabels)
	out := DecompositionMatrix{
		RowLabels: make([]string, n),
		ColLabels: m.ColLabels,
		Values:    make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		out.RowLabels[i] = m.RowLabels[n-1-i]
		out.Values[i] = m.Values[n-1-i]
	}
	return out
}
