package analysis

import (
	"fmt"
	"strings"

	"statement-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

// DescriptionWidth is the maximum number of description characters rendered per
// transaction line.
const DescriptionWidth = 40

const (
	// DefaultCurrency prefixes amounts when RenderOptions.Currency is empty.
	DefaultCurrency = "₹"
	rule            = "=================================================="
)

// RenderOptions controls how Render formats amounts.
type RenderOptions struct {
	Currency string
}

// Render produces the narrative text handed to the language model: the analysis
// sections followed by one line per transaction in source order.
func Render(a *models.Analysis, stmt *models.Statement, opts RenderOptions) string {
	cur := opts.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	money := func(v float64) string { return cur + formatAmount(v) }

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("Bank Statement Analysis")
	line(rule)

	line("")
	line("Time Period:")
	line("- From: %s", a.TimePeriod.Start.Format("02-Jan-2006"))
	line("- To: %s", a.TimePeriod.End.Format("02-Jan-2006"))
	line("- Duration: %d days", a.TimePeriod.Days)

	line("")
	line("Transaction Summary:")
	line("- Total Transactions: %d", a.TotalTransactions)
	line("  Debits: %d", a.DebitTransactions)
	line("  Credits: %d", a.CreditTransactions)

	line("")
	line("Amounts:")
	line("- Total Debited: %s", money(a.Amounts.TotalDebit))
	line("- Total Credited: %s", money(a.Amounts.TotalCredit))
	line("- Average Debit: %s", money(a.Amounts.AvgDebit))
	line("- Average Credit: %s", money(a.Amounts.AvgCredit))

	if a.Balance != nil {
		direction := "Increase"
		if a.Balance.Net < 0 {
			direction = "Decrease"
		}
		line("")
		line("Balance Information:")
		line("- Opening Balance: %s", money(a.Balance.Opening))
		line("- Closing Balance: %s", money(a.Balance.Closing))
		line("- Net Change: %s (%s)", money(a.Balance.Net), direction)
	}

	line("")
	line("Top Spending Days:")
	for _, d := range a.Daily.TopDebitDays {
		line("  %s: %s", d.Date.Format("2006-01-02"), money(d.Debit))
	}

	line("")
	line("Top Income Days:")
	for _, d := range a.Daily.TopCreditDays {
		line("  %s: %s", d.Date.Format("2006-01-02"), money(d.Credit))
	}

	line("")
	line("Most Frugal Days:")
	for _, d := range a.Daily.LowSpendDays {
		line("  %s: Spent %s, Received %s", d.Date.Format("2006-01-02"), money(d.Debit), money(d.Credit))
	}

	if len(a.Merchants) > 0 {
		line("")
		line("Frequent Merchants/Keywords:")
		for _, m := range a.Merchants {
			line("  - %s: %d mentions", titleCase(m.Keyword), m.Count)
		}
	}

	if len(a.MonthlyTrends) > 0 {
		line("")
		line("Monthly Trends:")
		for _, m := range a.MonthlyTrends {
			line("  - %s: Spent %s, Received %s", m.Date.Format("Jan 2006"), money(m.Debit), money(m.Credit))
		}
	}

	line("")
	line(rule)
	line("Analysis performed on: %s", a.AnalyzedAt.Format("2006-01-02 15:04:05"))

	if stmt != nil {
		withBalance := stmt.Has(models.ColumnBalance)
		line("")
		line("Transactions:")
		for _, tx := range stmt.Transactions {
			line("%s", TransactionLine(tx, withBalance))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// TransactionLine formats one record as "date | description | -debit +credit = balance".
// Zero amounts leave their side blank.
func TransactionLine(tx models.Transaction, withBalance bool) string {
	debit, credit := "", ""
	if tx.Debit > 0 {
		debit = formatAmount(tx.Debit)
	}
	if tx.Credit > 0 {
		credit = formatAmount(tx.Credit)
	}

	s := fmt.Sprintf("%s | %s | -%s +%s", tx.Date.Format("02-01-2006"), Truncate(tx.Description, DescriptionWidth), debit, credit)
	if withBalance && tx.Balance != nil {
		s += " = " + formatAmount(*tx.Balance)
	}
	return s
}

// Truncate cuts s to width characters and marks the cut with "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "..."
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
