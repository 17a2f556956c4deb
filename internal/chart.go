package internal

import "factorrisk/internal/domain"

// PanelLayout is the grid the chart panels are arranged in.
type PanelLayout struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// BarChartData is the shape handed to an external bar-chart renderer:
// one panel per row label, one bar per column label.
type BarChartData struct {
	Title       string      `json:"title"`
	Layout      PanelLayout `json:"layout"`
	PanelLabels []string    `json:"panelLabels"`
	BarLabels   []string    `json:"barLabels"`
	Values      [][]float64 `json:"values"`
}

type BarChartRenderer interface {
	RenderBarChart(data BarChartData) error
}

type ChartOptions struct {
	Title     string
	Decomp    domain.DecompositionMode
	NrowPrint int
	SliceBy   domain.SliceBy
	Layout    *PanelLayout
}

// BuildBarChart reshapes an assembled decomposition matrix for panel
// charting. Charting only ever shows the factor+residual allocation
// columns, so the leading RM/Total column is dropped for component and
// percentage tables. Rows are reversed last because the renderer draws
// panels bottom-up.
func BuildBarChart(m domain.DecompositionMatrix, opts ChartOptions) BarChartData {
	if opts.Decomp != domain.DecompositionMode_Marginal {
		m = m.DropLeadingColumn()
	}
	m = m.Truncate(opts.NrowPrint)
	if opts.SliceBy == domain.SliceBy_Asset {
		m = m.Transpose()
	}
	m = m.ReverseRows()

	layout := PanelLayout{Columns: defaultPanelColumns(m.NumRows()), Rows: 1}
	if opts.Layout != nil {
		layout = *opts.Layout
	}

	return BarChartData{
		Title:       opts.Title,
		Layout:      layout,
		PanelLabels: m.RowLabels,
		BarLabels:   m.ColLabels,
		Values:      m.Values,
	}
}

// defaultPanelColumns finds the smallest column count >= 3 that does
// not leave a single panel stranded on the last grid row.
func defaultPanelColumns(numPanels int) int {
	if numPanels <= 1 {
		return 3
	}
	columns := 3
	for numPanels%columns == 1 {
		columns++
	}
	return columns
}
