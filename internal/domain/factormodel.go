package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FittedFactorModel is the capability both fitted-model variants share:
// everything the risk decomposition needs, independent of how the model
// was estimated.
type FittedFactorModel interface {
	AssetNames() []string
	FactorNames() []string
	// Loadings is N x K (asset rows, factor columns)
	Loadings() *mat.Dense
	// FactorReturns is T x K (time rows, factor columns)
	FactorReturns() *mat.Dense
	// Residuals is T x N
	Residuals() *mat.Dense
	ResidualSds() []float64
	FactorCovariance(use MissingDataMode) (*mat.SymDense, error)
}

// TimeSeriesFactorModel holds the output of a time-series regression of
// asset returns on factor returns (one regression per asset).
type TimeSeriesFactorModel struct {
	assets        []string
	factors       []string
	loadings      *mat.Dense
	factorReturns *mat.Dense
	residuals     *mat.Dense
	residSds      []float64
}

func NewTimeSeriesFactorModel(
	assets []string,
	factors []string,
	loadings [][]float64,
	factorReturns [][]float64,
	residuals [][]float64,
) (*TimeSeriesFactorModel, error) {
	b, f, e, sds, err := buildModelData(assets, factors, loadings, factorReturns, residuals)
	if err != nil {
		return nil, err
	}
	return &TimeSeriesFactorModel{
		assets:        assets,
		factors:       factors,
		loadings:      b,
		factorReturns: f,
		residuals:     e,
		residSds:      sds,
	}, nil
}

func (m TimeSeriesFactorModel) AssetNames() []string { return m.assets }
func (m TimeSeriesFactorModel) FactorNames() []string { return m.factors }
func (m TimeSeriesFactorModel) Loadings() *mat.Dense { return m.loadings }
func (m TimeSeriesFactorModel) FactorReturns() *mat.Dense { return m.factorReturns }
func (m TimeSeriesFactorModel) Residuals() *mat.Dense { return m.residuals }
func (m TimeSeriesFactorModel) ResidualSds() []float64 { return m.residSds }

func (m TimeSeriesFactorModel) FactorCovariance(use MissingDataMode) (*mat.SymDense, error) {
	return factorCovariance(m.factorReturns, use)
}

// FundamentalFactorModel holds the output of cross-sectional regressions
// of asset returns on fundamental exposures. Exposures play the role of
// loadings; factor returns are the estimated cross-sectional premia.
type FundamentalFactorModel struct {
	assets        []string
	factors       []string
	exposures     *mat.Dense
	factorReturns *mat.Dense
	residuals     *mat.Dense
	residSds      []float64
}

func NewFundamentalFactorModel(
	assets []string,
	factors []string,
	exposures [][]float64,
	factorReturns [][]float64,
	residuals [][]float64,
) (*FundamentalFactorModel, error) {
	b, f, e, sds, err := buildModelData(assets, factors, exposures, factorReturns, residuals)
	if err != nil {
		return nil, err
	}
	return &FundamentalFactorModel{
		assets:        assets,
		factors:       factors,
		exposures:     b,
		factorReturns: f,
		residuals:     e,
		residSds:      sds,
	}, nil
}

func (m FundamentalFactorModel) AssetNames() []string { return m.assets }
func (m FundamentalFactorModel) FactorNames() []string { return m.factors }
func (m FundamentalFactorModel) Loadings() *mat.Dense { return m.exposures }
func (m FundamentalFactorModel) FactorReturns() *mat.Dense { return m.factorReturns }
func (m FundamentalFactorModel) Residuals() *mat.Dense { return m.residuals }
func (m FundamentalFactorModel) ResidualSds() []float64 { return m.residSds }

func (m FundamentalFactorModel) FactorCovariance(use MissingDataMode) (*mat.SymDense, error) {
	return factorCovariance(m.factorReturns, use)
}

func buildModelData(
	assets []string,
	factors []string,
	loadings [][]float64,
	factorReturns [][]float64,
	residuals [][]float64,
) (*mat.Dense, *mat.Dense, *mat.Dense, []float64, error) {
	n := len(assets)
	k := len(factors)
	if n == 0 {
		return nil, nil, nil, nil, fmt.Errorf("model must have at least one asset")
	}
	if k == 0 {
		return nil, nil, nil, nil, fmt.Errorf("model must have at least one factor")
	}

	b, err := denseFromRows(loadings, n, k, "loadings")
	if err != nil {
		return nil, nil, nil, nil, err
	}

	t := len(factorReturns)
	if t < 2 {
		return nil, nil, nil, nil, fmt.Errorf("model must have at least 2 factor return observations, got %d", t)
	}
	f, err := denseFromRows(factorReturns, t, k, "factor returns")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	e, err := denseFromRows(residuals, t, n, "residuals")
	if err != nil {
		return nil, nil, nil, nil, err
	}

	sds := make([]float64, n)
	col := make([]float64, t)
	for i := 0; i < n; i++ {
		mat.Col(col, i, e)
		sds[i] = stat.StdDev(col, nil)
	}

	return b, f, e, sds, nil
}

func denseFromRows(rows [][]float64, numRows, numCols int, name string) (*mat.Dense, error) {
	if len(rows) != numRows {
		return nil, fmt.Errorf("%s should have %d rows, got %d", name, numRows, len(rows))
	}
	out := mat.NewDense(numRows, numCols, nil)
	for i, row := range rows {
		if len(row) != numCols {
			return nil, fmt.Errorf("%s row %d should have %d values, got %d", name, i, numCols, len(row))
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// factorCovariance estimates the K x K factor covariance matrix,
// handling missing (NaN) observations per the requested mode.
func factorCovariance(factorReturns *mat.Dense, use MissingDataMode) (*mat.SymDense, error) {
	t, k := factorReturns.Dims()

	switch use {
	case MissingDataMode_Everything, "":
		cov := mat.NewSymDense(k, nil)
		cols := factorColumns(factorReturns)
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				cov.SetSym(i, j, stat.Covariance(cols[i], cols[j], nil))
			}
		}
		if matrixHasNaN(cov) {
			return nil, fmt.Errorf("factor covariance contains NaN: missing factor returns with use='everything'")
		}
		return cov, nil

	case MissingDataMode_CompleteObs:
		complete := [][]float64{}
		row := make([]float64, k)
		for ti := 0; ti < t; ti++ {
			mat.Row(row, ti, factorReturns)
			if rowHasNaN(row) {
				continue
			}
			cp := make([]float64, k)
			copy(cp, row)
			complete = append(complete, cp)
		}
		if len(complete) < 2 {
			return nil, fmt.Errorf("only %d complete factor return observations: cannot estimate covariance", len(complete))
		}
		cov := mat.NewSymDense(k, nil)
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				xi := make([]float64, len(complete))
				xj := make([]float64, len(complete))
				for r, obs := range complete {
					xi[r] = obs[i]
					xj[r] = obs[j]
				}
				cov.SetSym(i, j, stat.Covariance(xi, xj, nil))
			}
		}
		return cov, nil

	case MissingDataMode_Pairwise:
		cols := factorColumns(factorReturns)
		cov := mat.NewSymDense(k, nil)
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				var xi, xj []float64
				for ti := 0; ti < t; ti++ {
					if math.IsNaN(cols[i][ti]) || math.IsNaN(cols[j][ti]) {
						continue
					}
					xi = append(xi, cols[i][ti])
					xj = append(xj, cols[j][ti])
				}
				if len(xi) < 2 {
					return nil, fmt.Errorf("factors %d and %d share only %d complete observations: cannot estimate covariance", i, j, len(xi))
				}
				cov.SetSym(i, j, stat.Covariance(xi, xj, nil))
			}
		}
		return cov, nil
	}

	return nil, fmt.Errorf("invalid missing-data mode '%s': must be one of everything, complete.obs, pairwise.complete.obs", use)
}

func factorColumns(m *mat.Dense) [][]float64 {
	t, k := m.Dims()
	cols := make([][]float64, k)
	for i := 0; i < k; i++ {
		cols[i] = make([]float64, t)
		mat.Col(cols[i], i, m)
	}
	return cols
}

func rowHasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func matrixHasNaN(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(m.At(i, j)) {
				return true
			}
		}
	}
	return false
}
