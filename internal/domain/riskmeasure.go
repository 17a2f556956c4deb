package domain

import (
	"fmt"
	"strings"
)

type RiskMeasure string

const (
	RiskMeasure_Sd  RiskMeasure = "Sd"
	RiskMeasure_VaR RiskMeasure = "VaR"
	RiskMeasure_Es  RiskMeasure = "ES"
)

// CanonicalRiskMeasures is the fixed ordering used for multi-measure
// reports, regardless of the order measures were requested in.
var CanonicalRiskMeasures = []RiskMeasure{
	RiskMeasure_Sd,
	RiskMeasure_VaR,
	RiskMeasure_Es,
}

func NewRiskMeasure(s string) (*RiskMeasure, error) {
	m := map[string]RiskMeasure{
		"SD":  RiskMeasure_Sd,
		"VAR": RiskMeasure_VaR,
		"ES":  RiskMeasure_Es,
	}
	if v, ok := m[strings.ToUpper(s)]; ok {
		return &v, nil
	}
	return nil, fmt.Errorf("invalid risk measure '%s': must be one of Sd, VaR, ES", s)
}

type DecompositionMode string

const (
	// per-unit sensitivity of the risk measure to factor exposure
	DecompositionMode_Marginal DecompositionMode = "FMCR"
	// additive contribution in the units of the risk measure
	DecompositionMode_Component DecompositionMode = "FCR"
	// component contribution as a share of total risk
	DecompositionMode_Percentage DecompositionMode = "FPCR"
)

func NewDecompositionMode(s string) (*DecompositionMode, error) {
	m := map[string]DecompositionMode{
		"FMCR": DecompositionMode_Marginal,
		"FCR":  DecompositionMode_Component,
		"FPCR": DecompositionMode_Percentage,
	}
	if v, ok := m[strings.ToUpper(s)]; ok {
		return &v, nil
	}
	return nil, fmt.Errorf("invalid decomposition mode '%s': must be one of FMCR, FCR, FPCR", s)
}

func (d DecompositionMode) Label() string {
	switch d {
	case DecompositionMode_Marginal:
		return "Marginal Contribution"
	case DecompositionMode_Component:
		return "Component Contribution"
	case DecompositionMode_Percentage:
		return "Percentage Contribution"
	}
	return string(d)
}

type CalcMethod string

const (
	CalcMethod_NonParametric    CalcMethod = "np"
	CalcMethod_ParametricNormal CalcMethod = "normal"
)

func NewCalcMethod(s string) (*CalcMethod, error) {
	m := map[string]CalcMethod{
		"NP":     CalcMethod_NonParametric,
		"NORMAL": CalcMethod_ParametricNormal,
	}
	if v, ok := m[strings.ToUpper(s)]; ok {
		return &v, nil
	}
	return nil, fmt.Errorf("invalid calculation method '%s': must be one of np, normal", s)
}

func (c CalcMethod) Label() string {
	if c == CalcMethod_ParametricNormal {
		return "Parametric Normal"
	}
	return "Non-Parametric"
}

type SliceBy string

const (
	SliceBy_Factor SliceBy = "factor"
	SliceBy_Asset  SliceBy = "asset"
)

func NewSliceBy(s string) (*SliceBy, error) {
	m := map[string]SliceBy{
		"FACTOR": SliceBy_Factor,
		"ASSET":  SliceBy_Asset,
	}
	if v, ok := m[strings.ToUpper(s)]; ok {
		return &v, nil
	}
	return nil, fmt.Errorf("invalid sliceby '%s': must be one of factor, asset", s)
}

type MissingDataMode string

const (
	MissingDataMode_Everything  MissingDataMode = "everything"
	MissingDataMode_CompleteObs MissingDataMode = "complete.obs"
	MissingDataMode_Pairwise    MissingDataMode = "pairwise.complete.obs"
)

func NewMissingDataMode(s string) (*MissingDataMode, error) {
	m := map[string]MissingDataMode{
		"EVERYTHING":            MissingDataMode_Everything,
		"COMPLETE.OBS":          MissingDataMode_CompleteObs,
		"PAIRWISE.COMPLETE.OBS": MissingDataMode_Pairwise,
	}
	if v, ok := m[strings.ToUpper(s)]; ok {
		return &v, nil
	}
	return nil, fmt.Errorf("invalid missing-data mode '%s': must be one of everything, complete.obs, pairwise.complete.obs", s)
}
