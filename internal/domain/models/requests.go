package models

// Request DTOs of the ranking HTTP API. Binding uses the json, query and
// param tags; defaults and validation come from the default and validate tags.

type RunRequest struct {
	TopN int `json:"top_n" query:"top_n" default:"5" validate:"gte=1,lte=50"`
}

type EvaluationRequest struct {
	Symbol string `param:"symbol" validate:"required,max=32,ticker"`
	Period string `query:"period" default:"1y" validate:"oneof=3mo 6mo 1y 2y 5y"`
}

type BacktestRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32,ticker"`
	Days   int    `query:"days" json:"days" default:"200" validate:"gte=10,lte=2000"`
}
