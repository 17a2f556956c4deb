package app

import (
	"context"
	"errors"
	"factorrisk/internal"
	"factorrisk/internal/calculator"
	"factorrisk/internal/domain"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func reportTestModel(t *testing.T) *domain.TimeSeriesFactorModel {
	t.Helper()

	assets := []string{"AAPL", "MSFT", "XOM", "JPM"}
	factors := []string{"MKT", "SMB", "HML"}
	numObs := 120

	rng := rand.New(rand.NewSource(11))

	loadings := [][]float64{
		{1.1, 0.2, -0.3},
		{1.0, 0.1, -0.2},
		{0.8, -0.1, 0.5},
		{0.9, 0.0, 0.4},
	}

	factorReturns := make([][]float64, numObs)
	residuals := make([][]float64, numObs)
	for ti := 0; ti < numObs; ti++ {
		factorReturns[ti] = []float64{
			rng.NormFloat64() * 0.04,
			rng.NormFloat64() * 0.02,
			rng.NormFloat64() * 0.02,
		}
		residuals[ti] = []float64{
			rng.NormFloat64() * 0.01,
			rng.NormFloat64() * 0.01,
			rng.NormFloat64() * 0.015,
			rng.NormFloat64() * 0.012,
		}
	}

	model, err := domain.NewTimeSeriesFactorModel(assets, factors, loadings, factorReturns, residuals)
	require.NoError(t, err)
	return model
}

// fakeDecomposer records every request and answers with fixed figures
// shaped to the requested granularity.
type fakeDecomposer struct {
	requests []calculator.DecompositionRequest
	err      error
}

func (f *fakeDecomposer) Decompose(req calculator.DecompositionRequest) (*calculator.ContributionSet, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}

	labels := []string{"Portfolio"}
	if req.Granularity == calculator.Granularity_Asset {
		labels = req.Model.AssetNames()
	}

	out := &calculator.ContributionSet{RowLabels: labels}
	numCols := len(req.Model.FactorNames()) + 1
	for range labels {
		out.Risk = append(out.Risk, 0.1)
		out.Marginal = append(out.Marginal, make([]float64, numCols))
		out.Component = append(out.Component, make([]float64, numCols))
		out.Percentage = append(out.Percentage, make([]float64, numCols))
	}
	return out, nil
}

type failingRenderer struct{}

func (failingRenderer) RenderBarChart(internal.BarChartData) error {
	return errors.New("no display attached")
}

func Test_Decompose_Dispatch(t *testing.T) {
	model := reportTestModel(t)

	t.Run("single measure decomposes portfolio weighted and assets standalone", func(t *testing.T) {
		fake := &fakeDecomposer{}
		handler := RiskReportHandler{Decomposer: fake}

		_, err := handler.Decompose(context.Background(), DecompositionInput{
			Model: model,
			Risk:  []string{"VaR"},
		})
		require.NoError(t, err)
		require.Len(t, fake.requests, 2)

		require.Equal(t, calculator.Granularity_Portfolio, fake.requests[0].Granularity)
		require.Equal(t, "", cmp.Diff([]float64{0.25, 0.25, 0.25, 0.25}, fake.requests[0].Weights))
		require.Equal(t, domain.RiskMeasure_VaR, fake.requests[0].Measure)
		require.Equal(t, 0.05, fake.requests[0].P)

		require.Equal(t, calculator.Granularity_Asset, fake.requests[1].Granularity)
		require.Nil(t, fake.requests[1].Weights)
	})

	t.Run("portfolio-only issues one portfolio request per measure", func(t *testing.T) {
		fake := &fakeDecomposer{}
		handler := RiskReportHandler{Decomposer: fake}

		_, err := handler.Decompose(context.Background(), DecompositionInput{
			Model:         model,
			Risk:          []string{"ES", "VaR", "Sd"},
			PortfolioOnly: true,
		})
		require.NoError(t, err)
		require.Len(t, fake.requests, 3)

		var measures []domain.RiskMeasure
		for _, req := range fake.requests {
			require.Equal(t, calculator.Granularity_Portfolio, req.Granularity)
			require.NotNil(t, req.Weights)
			measures = append(measures, req.Measure)
		}
		require.Equal(t, []domain.RiskMeasure{
			domain.RiskMeasure_Sd,
			domain.RiskMeasure_VaR,
			domain.RiskMeasure_Es,
		}, measures)
	})

	t.Run("wraps decomposer failures", func(t *testing.T) {
		fake := &fakeDecomposer{err: errors.New("singular covariance")}
		handler := RiskReportHandler{Decomposer: fake}

		_, err := handler.Decompose(context.Background(), DecompositionInput{Model: model})
		require.ErrorContains(t, err, "failed to decompose portfolio Sd")
		require.ErrorContains(t, err, "singular covariance")
	})
}

func Test_Decompose_Report(t *testing.T) {
	model := reportTestModel(t)
	handler := RiskReportHandler{Decomposer: calculator.NewRiskDecompService()}

	t.Run("default percentage report is portfolio row plus asset rows", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{
			Model: model,
			Print: true,
		})
		require.NoError(t, err)
		require.NotNil(t, out.Report)
		require.Nil(t, out.Chart)

		table := out.Report.Table
		require.Equal(t, "Sd Percentage Contribution", out.Report.Name)
		require.Equal(t, []string{"Portfolio", "AAPL", "MSFT", "XOM", "JPM"}, table.RowLabels)
		require.Equal(t, []string{"Total", "MKT", "SMB", "HML", "Residual"}, table.ColLabels)

		// percentage rows sum to the Total column, which is 100 up to
		// the default 1-digit rounding
		for r, row := range table.Values {
			require.InDelta(t, 100, row[0], 0.5, "total for row %s", table.RowLabels[r])
			sum := 0.0
			for _, v := range row[1:] {
				sum += v
			}
			require.InDelta(t, row[0], sum, 0.5)
		}
	})

	t.Run("component report leads with the risk measure value", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{
			Model:  model,
			Decomp: "FCR",
			Print:  true,
		})
		require.NoError(t, err)

		table := out.Report.Table
		require.Equal(t, []string{"RM", "MKT", "SMB", "HML", "Residual"}, table.ColLabels)
		for r, row := range table.Values {
			sum := 0.0
			for _, v := range row[1:] {
				sum += v
			}
			// components sum to the RM column up to 3-digit rounding
			require.InDelta(t, row[0], sum, 0.005, "row %s", table.RowLabels[r])
		}
	})

	t.Run("marginal report has no leading summary column", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{
			Model:  model,
			Decomp: "FMCR",
			Print:  true,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"MKT", "SMB", "HML", "Residual"}, out.Report.Table.ColLabels)
	})

	t.Run("truncates the printed table to nrowPrint rows", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{
			Model:     model,
			NrowPrint: 2,
			Print:     true,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"Portfolio", "AAPL"}, out.Report.Table.RowLabels)
	})

	t.Run("portfolio-only report labels rows by measure", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{
			Model:         model,
			Risk:          []string{"VaR", "Sd", "ES"},
			PortfolioOnly: true,
			Print:         true,
		})
		require.NoError(t, err)
		require.Equal(t, "Sd, VaR, ES Percentage Contribution (Non-Parametric)", out.Report.Name)
		require.Equal(t, []string{"Sd", "VaR", "ES"}, out.Report.Table.RowLabels)
	})

	t.Run("no print and no plot yields figures only", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{Model: model})
		require.NoError(t, err)
		require.Nil(t, out.Report)
		require.Nil(t, out.Chart)
		require.NoError(t, out.RenderErr)
	})

	t.Run("renderer failure keeps the computed outputs", func(t *testing.T) {
		out, err := handler.Decompose(context.Background(), DecompositionInput{
			Model:    model,
			Print:    true,
			Plot:     true,
			Renderer: failingRenderer{},
		})
		require.NoError(t, err)
		require.NotNil(t, out.Report)
		require.NotNil(t, out.Chart)
		require.ErrorContains(t, out.RenderErr, "failed to render chart")
		require.ErrorContains(t, out.RenderErr, "no display attached")
	})
}
