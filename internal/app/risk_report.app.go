package app

import (
	"context"
	"factorrisk/internal"
	"factorrisk/internal/calculator"
	"factorrisk/internal/domain"
	"factorrisk/internal/logger"
	"fmt"
	"strings"
)

// RiskDecomposer produces marginal, component and percentage
// contribution figures for one risk measure at one granularity.
type RiskDecomposer interface {
	Decompose(req calculator.DecompositionRequest) (*calculator.ContributionSet, error)
}

type RiskReportHandler struct {
	Decomposer RiskDecomposer
}

type DecompositionOutput struct {
	// Report is set when Print was requested
	Report *internal.Report
	// Chart is set when Plot was requested
	Chart *internal.BarChartData
	// RenderErr carries a renderer failure without discarding the
	// computed table
	RenderErr error
}

// Decompose validates the requested options, assembles the
// decomposition matrix for the requested risk measure(s), and derives
// the printed table and/or chart payload from that one matrix.
func (h RiskReportHandler) Decompose(ctx context.Context, in DecompositionInput) (*DecompositionOutput, error) {
	log := logger.FromContext(ctx)

	opts, err := resolveOptions(in)
	if err != nil {
		return nil, err
	}

	var matrix domain.DecompositionMatrix
	if opts.portfolioOnly {
		matrix, err = h.assemblePortfolioOnly(in.Model, opts)
	} else {
		matrix, err = h.assembleSingleMeasure(in.Model, opts)
	}
	if err != nil {
		return nil, err
	}

	log.Infow("assembled risk decomposition",
		"measures", opts.measures,
		"decomp", opts.decomp,
		"portfolioOnly", opts.portfolioOnly,
		"rows", matrix.NumRows(),
	)

	out := &DecompositionOutput{}

	if in.Print {
		report := internal.FormatReport(matrix, internal.ReportOptions{
			Name:      reportName(opts),
			NrowPrint: opts.nrowPrint,
			Digits:    opts.digits,
		})
		out.Report = &report
	}

	if in.Plot {
		chart := internal.BuildBarChart(matrix, internal.ChartOptions{
			Title:     reportName(opts),
			Decomp:    opts.decomp,
			NrowPrint: opts.nrowPrint,
			SliceBy:   opts.sliceBy,
			Layout:    opts.layout,
		})
		out.Chart = &chart

		if in.Renderer != nil {
			if err := in.Renderer.RenderBarChart(chart); err != nil {
				// the table was already computed; keep it
				out.RenderErr = fmt.Errorf("failed to render chart: %w", err)
				log.Warnw("chart rendering failed", "error", err)
			}
		}
	}

	return out, nil
}

// assembleSingleMeasure builds the multi-asset matrix for the first
// requested measure: the weighted portfolio row stacked above one
// standalone row per asset, in the model's asset order.
func (h RiskReportHandler) assembleSingleMeasure(model domain.FittedFactorModel, opts *resolvedOptions) (domain.DecompositionMatrix, error) {
	measure := opts.measures[0]

	portfolio, err := h.Decomposer.Decompose(calculator.DecompositionRequest{
		Model:       model,
		Measure:     measure,
		Granularity: calculator.Granularity_Portfolio,
		Weights:     opts.weights,
		P:           opts.p,
		Method:      opts.method,
		Invert:      opts.invert,
		Use:         opts.use,
	})
	if err != nil {
		return domain.DecompositionMatrix{}, fmt.Errorf("failed to decompose portfolio %s: %w", measure, err)
	}

	assets, err := h.Decomposer.Decompose(calculator.DecompositionRequest{
		Model:       model,
		Measure:     measure,
		Granularity: calculator.Granularity_Asset,
		P:           opts.p,
		Method:      opts.method,
		Invert:      opts.invert,
		Use:         opts.use,
	})
	if err != nil {
		return domain.DecompositionMatrix{}, fmt.Errorf("failed to decompose per-asset %s: %w", measure, err)
	}

	rowLabels := append([]string{}, portfolio.RowLabels...)
	rowLabels = append(rowLabels, assets.RowLabels...)

	risks := append([]float64{}, portfolio.Risk...)
	risks = append(risks, assets.Risk...)

	contributions := stackRows(contributionRows(portfolio, opts.decomp), contributionRows(assets, opts.decomp))

	return layoutMatrix(model, opts.decomp, rowLabels, risks, contributions), nil
}

// assemblePortfolioOnly builds the portfolio-row-only matrix with one
// row per requested measure, in canonical Sd, VaR, ES order.
func (h RiskReportHandler) assemblePortfolioOnly(model domain.FittedFactorModel, opts *resolvedOptions) (domain.DecompositionMatrix, error) {
	var rowLabels []string
	var risks []float64
	var contributions [][]float64

	for _, measure := range opts.measures {
		portfolio, err := h.Decomposer.Decompose(calculator.DecompositionRequest{
			Model:       model,
			Measure:     measure,
			Granularity: calculator.Granularity_Portfolio,
			Weights:     opts.weights,
			P:           opts.p,
			Method:      opts.method,
			Invert:      opts.invert,
			Use:         opts.use,
		})
		if err != nil {
			return domain.DecompositionMatrix{}, fmt.Errorf("failed to decompose portfolio %s: %w", measure, err)
		}

		rowLabels = append(rowLabels, string(measure))
		risks = append(risks, portfolio.Risk...)
		contributions = stackRows(contributions, contributionRows(portfolio, opts.decomp))
	}

	return layoutMatrix(model, opts.decomp, rowLabels, risks, contributions), nil
}

// contributionRows picks the mode's underlying quantity.
func contributionRows(set *calculator.ContributionSet, decomp domain.DecompositionMode) [][]float64 {
	switch decomp {
	case domain.DecompositionMode_Marginal:
		return set.Marginal
	case domain.DecompositionMode_Component:
		return set.Component
	default:
		return set.Percentage
	}
}

// layoutMatrix applies the mode-specific column layout: FMCR rows are
// the K+1 contribution columns alone, FCR prepends the risk-measure
// value, FPCR prepends a Total column equal to the row-wise sum.
func layoutMatrix(
	model domain.FittedFactorModel,
	decomp domain.DecompositionMode,
	rowLabels []string,
	risks []float64,
	contributions [][]float64,
) domain.DecompositionMatrix {
	contributionCols := append([]string{}, model.FactorNames()...)
	contributionCols = append(contributionCols, "Residual")

	switch decomp {
	case domain.DecompositionMode_Marginal:
		return domain.DecompositionMatrix{
			RowLabels: rowLabels,
			ColLabels: contributionCols,
			Values:    contributions,
		}

	case domain.DecompositionMode_Component:
		values := make([][]float64, len(contributions))
		for i, row := range contributions {
			values[i] = append([]float64{risks[i]}, row...)
		}
		return domain.DecompositionMatrix{
			RowLabels: rowLabels,
			ColLabels: append([]string{"RM"}, contributionCols...),
			Values:    values,
		}

	default:
		values := make([][]float64, len(contributions))
		for i, row := range contributions {
			total := 0.0
			for _, v := range row {
				total += v
			}
			values[i] = append([]float64{total}, row...)
		}
		return domain.DecompositionMatrix{
			RowLabels: rowLabels,
			ColLabels: append([]string{"Total"}, contributionCols...),
			Values:    values,
		}
	}
}

func stackRows(a, b [][]float64) [][]float64 {
	out := append([][]float64{}, a...)
	return append(out, b...)
}

func reportName(opts *resolvedOptions) string {
	labels := make([]string, len(opts.measures))
	for i, m := range opts.measures {
		labels[i] = string(m)
	}
	name := fmt.Sprintf("%s %s", strings.Join(labels, ", "), opts.decomp.Label())
	if opts.portfolioOnly {
		name = fmt.Sprintf("%s (%s)", name, opts.method.Label())
	}
	return name
}
