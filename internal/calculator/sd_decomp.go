package calculator

import (
	"fmt"
	"math"
)

// decomposeSd allocates each row's standard deviation across factors
// and residual. With the augmented covariance S and augmented loadings
// b, sd = sqrt(b'Sb), marginal = Sb/sd and component = marginal * b,
// so components sum to sd exactly.
func (s *RiskDecompService) decomposeSd(req DecompositionRequest, profiles []exposureProfile) (*ContributionSet, error) {
	cov, err := augmentedCovariance(req.Model, req.Use)
	if err != nil {
		return nil, err
	}

	out := newContributionSet(len(profiles))
	for r, profile := range profiles {
		variance := quadraticForm(cov, profile.bstar)
		if variance <= 0 || math.IsNaN(variance) {
			return nil, fmt.Errorf("degenerate variance %f for %s: covariance matrix may be ill-conditioned", variance, profile.label)
		}
		sd := math.Sqrt(variance)

		covBeta := covTimesBeta(cov, profile.bstar)
		marginal := make([]float64, len(profile.bstar))
		component := make([]float64, len(profile.bstar))
		percentage := make([]float64, len(profile.bstar))
		for j := range profile.bstar {
			marginal[j] = covBeta[j] / sd
			component[j] = marginal[j] * profile.bstar[j]
			percentage[j] = 100 * component[j] / sd
		}

		out.RowLabels[r] = profile.label
		out.Risk[r] = sd
		out.Marginal[r] = marginal
		out.Component[r] = component
		out.Percentage[r] = percentage
	}

	return out, nil
}

func newContributionSet(rows int) *ContributionSet {
	return &ContributionSet{
		RowLabels:  make([]string, rows),
		Risk:       make([]float64, rows),
		Marginal:   make([][]float64, rows),
		Component:  make([][]float64, rows),
		Percentage: make([][]float64, rows),
	}
}
