package types

import "time"

// AnalysisRow is one symbol of a run as it appears in the analysis table.
type AnalysisRow struct {
	Symbol           string  `json:"symbol" csv:"symbol"`
	CurrentPrice     float64 `json:"current_price" csv:"current_price"`
	ChangePercent    float64 `json:"change_percent" csv:"change_percent"`
	Evaluation       string  `json:"manual_financial_analysis" csv:"manual_financial_analysis"`
	Confidence       float64 `json:"confidence" csv:"confidence"`
	TechnicalOpinion string  `json:"trading_view_opinion" csv:"trading_view_opinion"`
	LLMOpinion       string  `json:"llm_opinion" csv:"llm_opinion"`
	CustomOpinion    string  `json:"custom_opinion" csv:"custom_opinion"`
	Action           string  `json:"action" csv:"action"`
}

// PositionRow is the flat, printable form of a ledger position. Empty strings stand for unset fields.
type PositionRow struct {
	ID                string `json:"id" csv:"id"`
	Symbol            string `json:"symbol" csv:"symbol"`
	BuyPrice          string `json:"buy_price" csv:"buy_price"`
	BuyDate           string `json:"buy_date" csv:"buy_date"`
	SellPrice         string `json:"sell_price" csv:"sell_price"`
	SellDate          string `json:"sell_date" csv:"sell_date"`
	DaysHeld          string `json:"days_held" csv:"days_held"`
	PercentageBenefit string `json:"percentage_benefit" csv:"percentage_benefit"`
}

// RunReport is everything one batch run produced.
type RunReport struct {
	RunID       string        `json:"run_id"`
	At          time.Time     `json:"at"`
	Policy      string        `json:"policy"`
	Rows        []AnalysisRow `json:"rows"`
	Evaluations []Evaluation  `json:"evaluations"`
	NewBuys     []Quote       `json:"new_buys"`
	Closed      []PositionRow `json:"closed"`
	Ledger      []PositionRow `json:"ledger"`
}
