package cmd

import (
	"factorrisk/api"
	"factorrisk/internal/app"
	"factorrisk/internal/calculator"
)

func InitializeDependencies() (*api.ApiHandler, error) {
	decomposer := calculator.NewRiskDecompService()

	return &api.ApiHandler{
		RiskReportHandler: app.RiskReportHandler{
			Decomposer: decomposer,
		},
	}, nil
}
