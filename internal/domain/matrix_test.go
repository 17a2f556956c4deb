package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testMatrix() DecompositionMatrix {
	return DecompositionMatrix{
		RowLabels: []string{"Portfolio", "AAPL", "MSFT"},
		ColLabels: []string{"MKT", "Residual"},
		Values: [][]float64{
			{1.23456, 0.11111},
			{2.34567, 0.22222},
			{3.45678, 0.33333},
		},
	}
}

func Test_DecompositionMatrix_Truncate(t *testing.T) {
	t.Run("keeps the first n rows", func(t *testing.T) {
		out := testMatrix().Truncate(2)
		require.Equal(t, []string{"Portfolio", "AAPL"}, out.RowLabels)
		require.Len(t, out.Values, 2)
	})

	t.Run("n beyond the row count is a no-op", func(t *testing.T) {
		out := testMatrix().Truncate(10)
		require.Equal(t, 3, out.NumRows())
	})
}

func Test_DecompositionMatrix_Round(t *testing.T) {
	out := testMatrix().Round(1)
	require.Equal(
		t,
		"",
		cmp.Diff(
			[][]float64{
				{1.2, 0.1},
				{2.3, 0.2},
				{3.5, 0.3},
			},
			out.Values,
		),
	)
}

func Test_DecompositionMatrix_Transpose(t *testing.T) {
	out := testMatrix().Transpose()
	require.Equal(t, []string{"MKT", "Residual"}, out.RowLabels)
	require.Equal(t, []string{"Portfolio", "AAPL", "MSFT"}, out.ColLabels)
	require.Equal(t, [][]float64{
		{1.23456, 2.34567, 3.45678},
		{0.11111, 0.22222, 0.33333},
	}, out.Values)
}

func Test_DecompositionMatrix_DropLeadingColumn(t *testing.T) {
	out := testMatrix().DropLeadingColumn()
	require.Equal(t, []string{"Residual"}, out.ColLabels)
	require.Equal(t, [][]float64{{0.11111}, {0.22222}, {0.33333}}, out.Values)
}

func Test_DecompositionMatrix_ReverseRows(t *testing.T) {
	out := testMatrix().ReverseRows()
	require.Equal(t, []string{"MSFT", "AAPL", "Portfolio"}, out.RowLabels)
	require.Equal(t, 3.45678, out.Values[0][0])
	require.Equal(t, 1.23456, out.Values[2][0])
}
