package app

import (
	"factorrisk/internal"
	"factorrisk/internal/domain"
	"fmt"
)

// DecompositionInput mirrors the options surface of the risk report.
// String-typed options are validated and defaulted here, before any
// computation runs.
type DecompositionInput struct {
	Model   domain.FittedFactorModel
	Weights domain.WeightVector
	// Risk is the requested risk measure set. Only the first entry is
	// honored unless PortfolioOnly is set. Default: ["Sd"].
	Risk []string
	// Decomp is one of FMCR, FCR, FPCR. Default: FPCR.
	Decomp string
	// Digits overrides the mode-dependent rounding default.
	Digits *int
	// NrowPrint caps printed and plotted rows, portfolio row included.
	// Default: 20.
	NrowPrint int
	// P is the VaR/ES tail probability. Default: 0.05.
	P float64
	// Type is the VaR/ES method, np or normal. Default: np.
	Type string
	// Use is the missing-data mode for covariance estimation.
	// Default: pairwise.complete.obs.
	Use string
	// SliceBy governs the chart axis, factor or asset. Default: factor.
	SliceBy       string
	Invert        bool
	Layout        *internal.PanelLayout
	PortfolioOnly bool
	Print         bool
	Plot          bool
	// Renderer receives the chart payload when Plot is set. May be nil,
	// in which case the payload is only returned.
	Renderer internal.BarChartRenderer
}

type resolvedOptions struct {
	measures      []domain.RiskMeasure
	decomp        domain.DecompositionMode
	method        domain.CalcMethod
	use           domain.MissingDataMode
	sliceBy       domain.SliceBy
	weights       []float64
	digits        int
	nrowPrint     int
	p             float64
	invert        bool
	layout        *internal.PanelLayout
	portfolioOnly bool
}

func resolveOptions(in DecompositionInput) (*resolvedOptions, error) {
	if in.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	switch in.Model.(type) {
	case *domain.TimeSeriesFactorModel, *domain.FundamentalFactorModel:
	default:
		return nil, fmt.Errorf("model must be a fitted time-series or fundamental factor model, got %T", in.Model)
	}

	methodStr := in.Type
	if methodStr == "" {
		methodStr = string(domain.CalcMethod_NonParametric)
	}
	method, err := domain.NewCalcMethod(methodStr)
	if err != nil {
		return nil, err
	}

	riskStrs := in.Risk
	if len(riskStrs) == 0 {
		riskStrs = []string{string(domain.RiskMeasure_Sd)}
	}
	requested := map[domain.RiskMeasure]bool{}
	var firstMeasure domain.RiskMeasure
	for i, s := range riskStrs {
		measure, err := domain.NewRiskMeasure(s)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			firstMeasure = *measure
		}
		requested[*measure] = true
	}

	var measures []domain.RiskMeasure
	if in.PortfolioOnly {
		// canonical order regardless of request order
		for _, m := range domain.CanonicalRiskMeasures {
			if requested[m] {
				measures = append(measures, m)
			}
		}
	} else {
		// single-measure path: excess entries silently ignored
		measures = []domain.RiskMeasure{firstMeasure}
	}

	decompStr := in.Decomp
	if decompStr == "" {
		decompStr = string(DefaultDecompositionMode)
	}
	decomp, err := domain.NewDecompositionMode(decompStr)
	if err != nil {
		return nil, err
	}

	useStr := in.Use
	if useStr == "" {
		useStr = string(domain.MissingDataMode_Pairwise)
	}
	use, err := domain.NewMissingDataMode(useStr)
	if err != nil {
		return nil, err
	}

	sliceByStr := in.SliceBy
	if sliceByStr == "" {
		sliceByStr = string(domain.SliceBy_Factor)
	}
	sliceBy, err := domain.NewSliceBy(sliceByStr)
	if err != nil {
		return nil, err
	}

	weights := in.Weights
	if weights == nil {
		weights = domain.EqualWeights(in.Model.AssetNames())
	}
	aligned, err := weights.Align(in.Model.AssetNames())
	if err != nil {
		return nil, err
	}

	digits := defaultDigits(*decomp)
	if in.Digits != nil {
		digits = *in.Digits
	}

	nrowPrint := in.NrowPrint
	if nrowPrint <= 0 {
		nrowPrint = DefaultNrowPrint
	}

	p := in.P
	if p == 0 {
		p = DefaultTailProbability
	}

	return &resolvedOptions{
		measures:      measures,
		decomp:        *decomp,
		method:        *method,
		use:           *use,
		sliceBy:       *sliceBy,
		weights:       aligned,
		digits:        digits,
		nrowPrint:     nrowPrint,
		p:             p,
		invert:        in.Invert,
		layout:        in.Layout,
		portfolioOnly: in.PortfolioOnly,
	}, nil
}

const (
	DefaultDecompositionMode = domain.DecompositionMode_Percentage
	DefaultNrowPrint         = 20
	DefaultTailProbability   = 0.05
)

// percentage tables read naturally at 1 decimal; raw risk figures
// need more
func defaultDigits(decomp domain.DecompositionMode) int {
	if decomp == domain.DecompositionMode_Percentage {
		return 1
	}
	return 3
}
