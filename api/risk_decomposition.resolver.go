package api

import (
	"factorrisk/internal"
	"factorrisk/internal/app"
	"factorrisk/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin"
)

type fittedModelPayload struct {
	// Variant is tsfm (time-series) or ffm (fundamental)
	Variant       string      `json:"variant"`
	Assets        []string    `json:"assets"`
	Factors       []string    `json:"factors"`
	Loadings      [][]float64 `json:"loadings"`
	FactorReturns [][]float64 `json:"factorReturns"`
	Residuals     [][]float64 `json:"residuals"`
}

type riskDecompositionRequest struct {
	Model         fittedModelPayload    `json:"model"`
	Weights       map[string]float64    `json:"weights"`
	Risk          []string              `json:"risk"`
	Decomp        string                `json:"decomp"`
	Digits        *int                  `json:"digits"`
	NrowPrint     int                   `json:"nrowPrint"`
	P             float64               `json:"p"`
	Type          string                `json:"type"`
	Use           string                `json:"use"`
	SliceBy       string                `json:"sliceby"`
	Invert        bool                  `json:"invert"`
	Layout        *internal.PanelLayout `json:"layout"`
	PortfolioOnly bool                  `json:"portfolioOnly"`
	IsPrint       *bool                 `json:"isPrint"`
	IsPlot        *bool                 `json:"isPlot"`
}

type riskDecompositionResponse struct {
	Name      string                 `json:"name,omitempty"`
	RowLabels []string               `json:"rowLabels,omitempty"`
	ColLabels []string               `json:"colLabels,omitempty"`
	Values    [][]float64            `json:"values,omitempty"`
	Chart     *internal.BarChartData `json:"chart,omitempty"`
}

func (m ApiHandler) riskDecomposition(c *gin.Context) {
	ctx := c.Request.Context()

	var requestBody riskDecompositionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	model, err := buildFittedModel(requestBody.Model)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	// the table is returned unless explicitly disabled; the chart is
	// opt-in
	print := requestBody.IsPrint == nil || *requestBody.IsPrint
	plot := requestBody.IsPlot != nil && *requestBody.IsPlot

	out, err := m.RiskReportHandler.Decompose(ctx, app.DecompositionInput{
		Model:         model,
		Weights:       requestBody.Weights,
		Risk:          requestBody.Risk,
		Decomp:        requestBody.Decomp,
		Digits:        requestBody.Digits,
		NrowPrint:     requestBody.NrowPrint,
		P:             requestBody.P,
		Type:          requestBody.Type,
		Use:           requestBody.Use,
		SliceBy:       requestBody.SliceBy,
		Invert:        requestBody.Invert,
		Layout:        requestBody.Layout,
		PortfolioOnly: requestBody.PortfolioOnly,
		Print:         print,
		Plot:          plot,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	response := riskDecompositionResponse{
		Chart: out.Chart,
	}
	if out.Report != nil {
		response.Name = out.Report.Name
		response.RowLabels = out.Report.Table.RowLabels
		response.ColLabels = out.Report.Table.ColLabels
		response.Values = out.Report.Table.Values
	}

	c.JSON(200, response)
}

func buildFittedModel(payload fittedModelPayload) (domain.FittedFactorModel, error) {
	switch payload.Variant {
	case "tsfm":
		return domain.NewTimeSeriesFactorModel(
			payload.Assets,
			payload.Factors,
			payload.Loadings,
			payload.FactorReturns,
			payload.Residuals,
		)
	case "ffm":
		return domain.NewFundamentalFactorModel(
			payload.Assets,
			payload.Factors,
			payload.Loadings,
			payload.FactorReturns,
			payload.Residuals,
		)
	}
	return nil, fmt.Errorf("invalid model variant '%s': must be one of tsfm, ffm", payload.Variant)
}
