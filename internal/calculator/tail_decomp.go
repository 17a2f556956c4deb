package calculator

import (
	"factorrisk/internal/domain"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// decomposeTailEmpirical computes VaR or ES contributions from the
// empirical return distribution. VaR is the empirical p-quantile of the
// row's return series; marginal contributions are the average augmented
// factor realizations over the relevant tail observations (a small
// neighborhood of the quantile for VaR, the whole tail for ES).
// Components are rescaled so the allocation sums exactly to the risk
// figure.
func (s *RiskDecompService) decomposeTailEmpirical(req DecompositionRequest, profiles []exposureProfile) (*ContributionSet, error) {
	out := newContributionSet(len(profiles))

	for r, profile := range profiles {
		if seriesHasNaN(profile.series) {
			return nil, fmt.Errorf("return series for %s contains missing observations: non-parametric %s decomposition requires complete data", profile.label, req.Measure)
		}

		valueAtRisk, err := empiricalQuantile(profile.series, req.P)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate %f quantile for %s: %w", req.P, profile.label, err)
		}

		var risk float64
		var tailIdx []int
		if req.Measure == domain.RiskMeasure_VaR {
			risk = valueAtRisk
			tailIdx = quantileNeighborhood(profile.series, valueAtRisk)
		} else {
			for i, v := range profile.series {
				if v <= valueAtRisk {
					tailIdx = append(tailIdx, i)
				}
			}
			if len(tailIdx) == 0 {
				return nil, fmt.Errorf("degenerate quantile estimate for %s: no observations at or below VaR", profile.label)
			}
			tailSum := 0.0
			for _, i := range tailIdx {
				tailSum += profile.series[i]
			}
			risk = tailSum / float64(len(tailIdx))
		}
		if risk == 0 {
			return nil, fmt.Errorf("degenerate %s estimate of 0 for %s", req.Measure, profile.label)
		}

		marginal := columnMeans(profile.fstar, tailIdx)
		component := make([]float64, len(profile.bstar))
		componentSum := 0.0
		for j := range profile.bstar {
			component[j] = marginal[j] * profile.bstar[j]
			componentSum += component[j]
		}
		if componentSum == 0 {
			return nil, fmt.Errorf("degenerate tail for %s: component contributions sum to 0", profile.label)
		}

		// enforce the Euler identity: raw tail averages only sum to
		// the risk figure approximately
		scale := risk / componentSum
		percentage := make([]float64, len(component))
		for j := range component {
			component[j] *= scale
			percentage[j] = 100 * component[j] / risk
		}

		if req.Invert {
			risk = -risk
			for j := range marginal {
				marginal[j] = -marginal[j]
				component[j] = -component[j]
			}
		}

		out.RowLabels[r] = profile.label
		out.Risk[r] = risk
		out.Marginal[r] = marginal
		out.Component[r] = component
		out.Percentage[r] = percentage
	}

	return out, nil
}

// decomposeTailNormal computes VaR or ES contributions assuming jointly
// normal factor and residual returns, using the closed-form
// location-scale expressions.
func (s *RiskDecompService) decomposeTailNormal(req DecompositionRequest, profiles []exposureProfile) (*ContributionSet, error) {
	cov, err := augmentedCovariance(req.Model, req.Use)
	if err != nil {
		return nil, err
	}

	z := distuv.UnitNormal.Quantile(req.P)
	// multiplier on the scale term: z for VaR, -phi(z)/p for ES
	scaleMult := z
	if req.Measure == domain.RiskMeasure_Es {
		scaleMult = -distuv.UnitNormal.Prob(z) / req.P
	}

	out := newContributionSet(len(profiles))
	for r, profile := range profiles {
		variance := quadraticForm(cov, profile.bstar)
		if variance <= 0 || math.IsNaN(variance) {
			return nil, fmt.Errorf("degenerate variance %f for %s: covariance matrix may be ill-conditioned", variance, profile.label)
		}
		sd := math.Sqrt(variance)

		allIdx := make([]int, len(profile.series))
		for i := range allIdx {
			allIdx[i] = i
		}
		meanFstar := columnMeans(profile.fstar, allIdx)

		mean := 0.0
		for j := range profile.bstar {
			mean += profile.bstar[j] * meanFstar[j]
		}
		risk := mean + scaleMult*sd
		if risk == 0 {
			return nil, fmt.Errorf("degenerate %s estimate of 0 for %s", req.Measure, profile.label)
		}

		covBeta := covTimesBeta(cov, profile.bstar)
		marginal := make([]float64, len(profile.bstar))
		component := make([]float64, len(profile.bstar))
		percentage := make([]float64, len(profile.bstar))
		for j := range profile.bstar {
			marginal[j] = meanFstar[j] + scaleMult*covBeta[j]/sd
			component[j] = marginal[j] * profile.bstar[j]
			percentage[j] = 100 * component[j] / risk
		}

		if req.Invert {
			risk = -risk
			for j := range marginal {
				marginal[j] = -marginal[j]
				component[j] = -component[j]
			}
		}

		out.RowLabels[r] = profile.label
		out.Risk[r] = risk
		out.Marginal[r] = marginal
		out.Component[r] = component
		out.Percentage[r] = percentage
	}

	return out, nil
}

func empiricalQuantile(series []float64, p float64) (float64, error) {
	q, err := stats.Percentile(series, p*100)
	if err != nil {
		return 0, err
	}
	return q, nil
}

// quantileNeighborhood returns the indexes of observations within a
// small band around the VaR estimate, widening to the single nearest
// observation when the band is empty.
func quantileNeighborhood(series []float64, valueAtRisk float64) []int {
	sd, err := stats.StandardDeviationSample(series)
	if err != nil {
		sd = 0
	}
	eps := 0.05 * sd

	var idx []int
	for i, v := range series {
		if v >= valueAtRisk-eps && v <= valueAtRisk+eps {
			idx = append(idx, i)
		}
	}
	if len(idx) > 0 {
		return idx
	}

	nearest := 0
	best := math.Inf(1)
	for i, v := range series {
		if d := math.Abs(v - valueAtRisk); d < best {
			best = d
			nearest = i
		}
	}
	return []int{nearest}
}
