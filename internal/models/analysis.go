package models

import "time"

// Analysis is computed once per Statement and never updated afterwards.
type Analysis struct {
	TotalTransactions  int             `json:"total_transactions"`
	DebitTransactions  int             `json:"debit_transactions"`
	CreditTransactions int             `json:"credit_transactions"`
	TimePeriod         TimePeriod      `json:"time_period"`
	Amounts            Amounts         `json:"amounts"`
	Balance            *BalanceSummary `json:"balance,omitempty"`
	Daily              DailyAnalysis   `json:"daily_analysis"`
	MonthlyTrends      []PeriodTotal   `json:"monthly_trends"`
	Merchants          []KeywordCount  `json:"merchant_analysis"`
	Chronological      bool            `json:"chronological"`
	AnalyzedAt         time.Time       `json:"analysis_date"`
	Raw                RawSeries       `json:"raw_data"`
}

type TimePeriod struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
	Days  int       `json:"days"`
}

type Amounts struct {
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	AvgDebit    float64 `json:"avg_debit"`
	AvgCredit   float64 `json:"avg_credit"`
}

// BalanceSummary is positional: opening is the first record, closing the last.
type BalanceSummary struct {
	Opening float64 `json:"opening_balance"`
	Closing float64 `json:"closing_balance"`
	Net     float64 `json:"net_savings"`
}

// PeriodTotal sums debit and credit over a day or a calendar month.
// For monthly totals Date is the first day of the month.
type PeriodTotal struct {
	Date   time.Time `json:"date"`
	Debit  float64   `json:"dr"`
	Credit float64   `json:"cr"`
}

type DailyAnalysis struct {
	TopDebitDays  []PeriodTotal `json:"top_debit_days"`
	TopCreditDays []PeriodTotal `json:"top_credit_days"`
	LowSpendDays  []PeriodTotal `json:"low_spend_days"`
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type RawSeries struct {
	Daily   []PeriodTotal `json:"daily"`
	Monthly []PeriodTotal `json:"monthly"`
}
