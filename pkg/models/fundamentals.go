package models

// FinancialStatement is one published report from the offline SimFin
// dataset: the latest balance sheet, cash flow statement, or income
// statement released on or before a trading date. Line values stay as
// the dataset's raw strings; statements mix currencies and magnitudes,
// so numeric parsing is left to the consumer.
type FinancialStatement struct {
	Symbol       string          `json:"symbol"`
	Statement    string          `json:"statement"` // "balance sheet", "cash flow statement", "income statement"
	Freq         string          `json:"freq"`      // "annual" or "quarterly"
	Currency     string          `json:"currency,omitempty"`
	FiscalYear   string          `json:"fiscal_year,omitempty"`
	FiscalPeriod string          `json:"fiscal_period,omitempty"`
	ReportDate   string          `json:"report_date,omitempty"`  // YYYY-MM-DD
	PublishDate  string          `json:"publish_date,omitempty"` // YYYY-MM-DD
	Lines        []StatementLine `json:"lines"`
}

// StatementLine is one line item in dataset column order.
type StatementLine struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
