package main

import (
	"context"
	"factorrisk/cmd"
	"factorrisk/internal"
	"factorrisk/internal/app"
	"factorrisk/internal/domain"
	"factorrisk/internal/logger"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// runs a percentage decomposition of portfolio Sd over a synthetic
// 3-factor model. pass a weights csv (symbol,weight) to override the
// equal-weight default.
func main() {
	handler, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.WithValue(context.Background(), logger.ContextKey, logger.New())

	model, err := sampleModel()
	if err != nil {
		log.Fatal(err)
	}

	var weights domain.WeightVector
	if len(os.Args) > 1 {
		weights, err = loadWeightsCsv(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
	}

	out, err := handler.RiskReportHandler.Decompose(ctx, app.DecompositionInput{
		Model:    model,
		Weights:  weights,
		Risk:     []string{"Sd"},
		Decomp:   "FPCR",
		Print:    true,
		Plot:     true,
		Renderer: textRenderer{},
	})
	if err != nil {
		log.Fatal(err)
	}
	if out.RenderErr != nil {
		log.Println(out.RenderErr)
	}

	internal.Pprint(out.Report)
}

type weightRow struct {
	Symbol string  `csv:"symbol"`
	Weight float64 `csv:"weight"`
}

func loadWeightsCsv(path string) (domain.WeightVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	rows := []*weightRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse weights csv: %w", err)
	}

	weights := domain.WeightVector{}
	for _, row := range rows {
		weights[row.Symbol] = row.Weight
	}
	return weights, nil
}

func sampleModel() (*domain.TimeSeriesFactorModel, error) {
	assets := []string{"AAPL", "MSFT", "XOM", "JPM"}
	factors := []string{"MKT", "SMB", "HML"}
	numObs := 120

	rng := rand.New(rand.NewSource(7))

	loadings := [][]float64{
		{1.1, 0.3, -0.2},
		{1.0, 0.1, -0.3},
		{0.8, -0.2, 0.5},
		{1.2, 0.0, 0.4},
	}
	factorVols := []float64{0.04, 0.02, 0.02}

	factorReturns := make([][]float64, numObs)
	residuals := make([][]float64, numObs)
	for t := 0; t < numObs; t++ {
		factorReturns[t] = make([]float64, len(factors))
		for j := range factors {
			factorReturns[t][j] = rng.NormFloat64() * factorVols[j]
		}
		residuals[t] = make([]float64, len(assets))
		for i := range assets {
			residuals[t][i] = rng.NormFloat64() * 0.01
		}
	}

	return domain.NewTimeSeriesFactorModel(assets, factors, loadings, factorReturns, residuals)
}

// textRenderer is a stand-in for a real charting backend
type textRenderer struct{}

func (textRenderer) RenderBarChart(data internal.BarChartData) error {
	fmt.Println(data.Title)
	for i, label := range data.PanelLabels {
		cells := make([]string, len(data.BarLabels))
		for j, bar := range data.BarLabels {
			cells[j] = fmt.Sprintf("%s=%.2f", bar, data.Values[i][j])
		}
		fmt.Printf("  %-12s %s\n", label, strings.Join(cells, " "))
	}
	return nil
}
