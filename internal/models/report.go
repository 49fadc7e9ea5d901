package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStyle string

const (
	StyleDefault         AnalysisStyle = "default"
	StyleSummary         AnalysisStyle = "summary"
	StyleFraudCheck      AnalysisStyle = "fraud_check"
	StyleIncomeVsExpense AnalysisStyle = "income_vs_expense"
	StyleBudgetAdvice    AnalysisStyle = "budget_advice"
)

// Valid reports whether the style is one of the known prompt styles.
func (s AnalysisStyle) Valid() bool {
	switch s {
	case StyleDefault, StyleSummary, StyleFraudCheck, StyleIncomeVsExpense, StyleBudgetAdvice:
		return true
	}
	return false
}

// Report is a question/answer pair produced by the language model for a statement.
type Report struct {
	ID          uuid.UUID     `db:"id"`
	StatementID uuid.UUID     `db:"statement_id"`
	UserID      uuid.UUID     `db:"user_id"`
	Style       AnalysisStyle `db:"style"`
	Question    string        `db:"question"`
	Answer      string        `db:"answer"`
	CreatedAt   time.Time     `db:"created_at"`
}
