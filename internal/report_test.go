package internal

import (
	"factorrisk/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func Test_FormatReport(t *testing.T) {
	matrix := domain.DecompositionMatrix{
		RowLabels: []string{"Portfolio", "AAPL", "MSFT"},
		ColLabels: []string{"Total", "MKT", "Residual"},
		Values: [][]float64{
			{100, 81.26, 18.74},
			{100, 66.666, 33.334},
			{100, 91.15, 8.85},
		},
	}

	t.Run("truncates then rounds", func(t *testing.T) {
		report := FormatReport(matrix, ReportOptions{
			Name:      "Sd Percentage Contribution",
			NrowPrint: 2,
			Digits:    1,
		})

		require.Equal(t, "Sd Percentage Contribution", report.Name)
		require.Equal(t, []string{"Portfolio", "AAPL"}, report.Table.RowLabels)
		require.Equal(t, "", cmp.Diff([][]float64{
			{100, 81.3, 18.7},
			{100, 66.7, 33.3},
		}, report.Table.Values))
	})

	t.Run("source matrix is left untouched", func(t *testing.T) {
		FormatReport(matrix, ReportOptions{NrowPrint: 1, Digits: 0})
		require.Equal(t, 3, matrix.NumRows())
		require.Equal(t, 81.26, matrix.Values[0][1])
	})
}
