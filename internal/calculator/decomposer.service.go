package calculator

import (
	"factorrisk/internal/domain"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Granularity string

const (
	// one set of figures for the weighted portfolio
	Granularity_Portfolio Granularity = "portfolio"
	// one set of figures per asset, each using the asset's own
	// exposures (standalone risk, ignoring portfolio weights)
	Granularity_Asset Granularity = "asset"
)

type DecompositionRequest struct {
	Model       domain.FittedFactorModel
	Measure     domain.RiskMeasure
	Granularity Granularity
	// Weights are aligned to Model.AssetNames(). Only read at
	// portfolio granularity.
	Weights []float64
	// P is the tail probability for VaR/ES
	P      float64
	Method domain.CalcMethod
	Invert bool
	Use    domain.MissingDataMode
}

// ContributionSet holds the decomposition figures for one risk measure.
// Each row has K+1 contribution columns: one per factor plus a residual
// column. Component figures sum to the row's Risk value and percentage
// figures sum to 100, per the Euler allocation identity.
type ContributionSet struct {
	RowLabels  []string
	Risk       []float64
	Marginal   [][]float64
	Component  [][]float64
	Percentage [][]float64
}

type RiskDecompService struct{}

func NewRiskDecompService() *RiskDecompService {
	return &RiskDecompService{}
}

func (s *RiskDecompService) Decompose(req DecompositionRequest) (*ContributionSet, error) {
	profiles, err := buildExposureProfiles(req.Model, req.Granularity, req.Weights)
	if err != nil {
		return nil, err
	}

	switch req.Measure {
	case domain.RiskMeasure_Sd:
		return s.decomposeSd(req, profiles)
	case domain.RiskMeasure_VaR, domain.RiskMeasure_Es:
		if req.P <= 0 || req.P >= 1 {
			return nil, fmt.Errorf("tail probability must be in (0, 1), got %f", req.P)
		}
		if req.Method == domain.CalcMethod_ParametricNormal {
			return s.decomposeTailNormal(req, profiles)
		}
		return s.decomposeTailEmpirical(req, profiles)
	}
	return nil, fmt.Errorf("invalid risk measure '%s': must be one of Sd, VaR, ES", req.Measure)
}

// exposureProfile is one row of the decomposition: augmented loadings
// [beta_1..beta_K, residual sd], the matching augmented factor series
// (factor returns plus the standardized residual), and the implied
// return series. series[t] is exactly the dot product of bstar with row
// t of fstar, which is what makes the allocation additive.
type exposureProfile struct {
	label  string
	bstar  []float64
	fstar  *mat.Dense
	series []float64
}

func buildExposureProfiles(model domain.FittedFactorModel, granularity Granularity, weights []float64) ([]exposureProfile, error) {
	assets := model.AssetNames()
	loadings := model.Loadings()
	residuals := model.Residuals()
	residSds := model.ResidualSds()
	factorReturns := model.FactorReturns()
	t, k := factorReturns.Dims()

	switch granularity {
	case Granularity_Asset:
		profiles := make([]exposureProfile, len(assets))
		for i, symbol := range assets {
			bstar := make([]float64, k+1)
			copy(bstar, loadings.RawRowView(i))
			bstar[k] = residSds[i]

			residCol := make([]float64, t)
			mat.Col(residCol, i, residuals)

			profiles[i] = newProfile(symbol, bstar, factorReturns, residCol, residSds[i])
		}
		return profiles, nil

	case Granularity_Portfolio:
		if len(weights) != len(assets) {
			return nil, fmt.Errorf("expected %d aligned weights, got %d", len(assets), len(weights))
		}

		bstar := make([]float64, k+1)
		for j := 0; j < k; j++ {
			for i := range assets {
				bstar[j] += weights[i] * loadings.At(i, j)
			}
		}
		residVar := 0.0
		for i := range assets {
			residVar += weights[i] * weights[i] * residSds[i] * residSds[i]
		}
		residSd := math.Sqrt(residVar)
		bstar[k] = residSd

		residSeries := make([]float64, t)
		for ti := 0; ti < t; ti++ {
			for i := range assets {
				residSeries[ti] += weights[i] * residuals.At(ti, i)
			}
		}

		return []exposureProfile{newProfile("Portfolio", bstar, factorReturns, residSeries, residSd)}, nil
	}

	return nil, fmt.Errorf("invalid granularity '%s'", granularity)
}

func newProfile(label string, bstar []float64, factorReturns *mat.Dense, residSeries []float64, residSd float64) exposureProfile {
	t, k := factorReturns.Dims()

	fstar := mat.NewDense(t, k+1, nil)
	series := make([]float64, t)
	row := make([]float64, k)
	for ti := 0; ti < t; ti++ {
		mat.Row(row, ti, factorReturns)
		for j := 0; j < k; j++ {
			fstar.Set(ti, j, row[j])
		}
		z := 0.0
		if residSd > 0 {
			z = residSeries[ti] / residSd
		}
		fstar.Set(ti, k, z)

		for j := 0; j <= k; j++ {
			series[ti] += bstar[j] * fstar.At(ti, j)
		}
	}

	return exposureProfile{
		label:  label,
		bstar:  bstar,
		fstar:  fstar,
		series: series,
	}
}

// augmentedCovariance builds the (K+1) x (K+1) block-diagonal covariance
// of the augmented factor vector: factor covariance in the top-left
// block, unit variance for the standardized residual, zero cross terms.
func augmentedCovariance(model domain.FittedFactorModel, use domain.MissingDataMode) (*mat.SymDense, error) {
	factorCov, err := model.FactorCovariance(use)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate factor covariance: %w", err)
	}
	k, _ := factorCov.Dims()

	out := mat.NewSymDense(k+1, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			out.SetSym(i, j, factorCov.At(i, j))
		}
	}
	out.SetSym(k, k, 1)
	return out, nil
}

// covTimesBeta returns cov * bstar as a slice.
func covTimesBeta(cov *mat.SymDense, bstar []float64) []float64 {
	n := len(bstar)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i] += cov.At(i, j) * bstar[j]
		}
	}
	return out
}

func quadraticForm(cov *mat.SymDense, bstar []float64) float64 {
	total := 0.0
	for i, ci := range covTimesBeta(cov, bstar) {
		total += bstar[i] * ci
	}
	return total
}

func columnMeans(m *mat.Dense, rows []int) []float64 {
	_, c := m.Dims()
	out := make([]float64, c)
	if len(rows) == 0 {
		return out
	}
	for _, ri := range rows {
		for j := 0; j < c; j++ {
			out[j] += m.At(ri, j)
		}
	}
	for j := 0; j < c; j++ {
		out[j] /= float64(len(rows))
	}
	return out
}

func seriesHasNaN(series []float64) bool {
	for _, v := range series {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
