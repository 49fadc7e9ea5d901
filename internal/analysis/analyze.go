// Package analysis derives descriptive statistics from a canonical statement and
// renders them as a narrative text block for a language model.
package analysis

import (
	"math"
	"sort"
	"strings"
	"time"

	"statement-analyzer/internal/models"
)

// Keywords is the merchant vocabulary scanned for in descriptions. Matching is a
// plain case-insensitive substring count, not word-boundary aware, so "ola" also
// counts inside "cola".
var Keywords = []string{
	"amazon", "zomato", "blinkit", "dmrc", "razorpay", "swiggy",
	"uber", "ola", "paytm", "google", "lic", "airtel", "jio",
}

const (
	topDaysLimit       = 3
	lowSpendDaysLimit  = 2
	lowSpendPercentile = 0.1
	secondsPerDay      = 24 * 60 * 60
)

var requiredColumns = []models.Column{models.ColumnDate, models.ColumnDebit, models.ColumnCredit}

// Analyze computes the Analysis for stmt, stamped with the current time.
func Analyze(stmt *models.Statement) (*models.Analysis, error) {
	return AnalyzeAt(stmt, time.Now())
}

// AnalyzeAt computes the Analysis for stmt, stamped with at.
func AnalyzeAt(stmt *models.Statement, at time.Time) (*models.Analysis, error) {
	if stmt == nil {
		return nil, &models.ValidationError{Stage: "schema", Msg: "no statement to analyze"}
	}

	var missing []string
	for _, col := range requiredColumns {
		if !stmt.Has(col) {
			missing = append(missing, string(col))
		}
	}
	if len(missing) > 0 {
		return nil, &models.ValidationError{
			Stage: "schema",
			Msg:   "missing required columns: " + strings.Join(missing, ", "),
		}
	}

	txs := datedRecords(stmt.Transactions)
	if len(txs) == 0 {
		return nil, &models.ValidationError{Stage: "records", Msg: "no transactions to analyze"}
	}

	result := &models.Analysis{
		TotalTransactions: len(txs),
		Chronological:     true,
		AnalyzedAt:        at,
	}

	start, end := txs[0].Date, txs[0].Date
	var descriptions []string
	for i, tx := range txs {
		if tx.Date.Before(start) {
			start = tx.Date
		}
		if tx.Date.After(end) {
			end = tx.Date
		}
		if i > 0 && tx.Date.Before(txs[i-1].Date) {
			result.Chronological = false
		}
		if tx.Debit > 0 {
			result.DebitTransactions++
		}
		if tx.Credit > 0 {
			result.CreditTransactions++
		}
		result.Amounts.TotalDebit += tx.Debit
		result.Amounts.TotalCredit += tx.Credit
		descriptions = append(descriptions, tx.Description)
	}

	result.TimePeriod = models.TimePeriod{
		Start: start,
		End:   end,
		Days:  daysBetween(start, end) + 1,
	}
	if result.DebitTransactions > 0 {
		result.Amounts.AvgDebit = result.Amounts.TotalDebit / float64(result.DebitTransactions)
	}
	if result.CreditTransactions > 0 {
		result.Amounts.AvgCredit = result.Amounts.TotalCredit / float64(result.CreditTransactions)
	}

	if stmt.HasBalance() {
		opening := *txs[0].Balance
		closing := *txs[len(txs)-1].Balance
		result.Balance = &models.BalanceSummary{
			Opening: opening,
			Closing: closing,
			Net:     closing - opening,
		}
	}

	daily := groupBy(txs, func(d time.Time) time.Time { return d })
	monthly := groupBy(txs, func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	})

	result.Daily = models.DailyAnalysis{
		TopDebitDays:  topBy(daily, func(p models.PeriodTotal) float64 { return p.Debit }),
		TopCreditDays: topBy(daily, func(p models.PeriodTotal) float64 { return p.Credit }),
		LowSpendDays:  lowSpend(daily),
	}
	result.MonthlyTrends = monthly
	result.Merchants = CountKeywords(descriptions)
	result.Raw = models.RawSeries{
		Daily:   daily,
		Monthly: append([]models.PeriodTotal(nil), monthly...),
	}

	return result, nil
}

// datedRecords drops any record without a calendar date.
func datedRecords(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		tx.Date = time.Date(tx.Date.Year(), tx.Date.Month(), tx.Date.Day(), 0, 0, 0, 0, time.UTC)
		out = append(out, tx)
	}
	return out
}

// daysBetween counts whole calendar days from start to end. Both are UTC
// midnight; time.Duration would saturate past about 292 years.
func daysBetween(start, end time.Time) int {
	return int((end.Unix() - start.Unix()) / secondsPerDay)
}

// groupBy sums debit and credit per key and returns one row per key, oldest first.
func groupBy(txs []models.Transaction, key func(time.Time) time.Time) []models.PeriodTotal {
	index := make(map[time.Time]int)
	var out []models.PeriodTotal
	for _, tx := range txs {
		k := key(tx.Date)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, models.PeriodTotal{Date: k})
		}
		out[i].Debit += tx.Debit
		out[i].Credit += tx.Credit
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// topBy returns up to three rows with the largest value, earlier dates first on ties.
func topBy(days []models.PeriodTotal, value func(models.PeriodTotal) float64) []models.PeriodTotal {
	sorted := append([]models.PeriodTotal(nil), days...)
	sort.SliceStable(sorted, func(i, j int) bool { return value(sorted[i]) > value(sorted[j]) })
	if len(sorted) > topDaysLimit {
		sorted = sorted[:topDaysLimit]
	}
	return sorted
}

// lowSpend returns the two cheapest days among those strictly below the 10th
// percentile of daily debit.
func lowSpend(days []models.PeriodTotal) []models.PeriodTotal {
	debits := make([]float64, len(days))
	for i, d := range days {
		debits[i] = d.Debit
	}
	threshold := Percentile(debits, lowSpendPercentile)

	var below []models.PeriodTotal
	for _, d := range days {
		if d.Debit < threshold {
			below = append(below, d)
		}
	}
	sort.SliceStable(below, func(i, j int) bool { return below[i].Debit < below[j].Debit })
	if len(below) > lowSpendDaysLimit {
		below = below[:lowSpendDaysLimit]
	}
	if below == nil {
		below = []models.PeriodTotal{}
	}
	return below
}

// Percentile returns the p-quantile of values using linear interpolation between
// closest ranks. It returns NaN for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// CountKeywords counts vocabulary occurrences across all descriptions and returns
// the keywords seen at least once, most frequent first.
func CountKeywords(descriptions []string) []models.KeywordCount {
	text := strings.ToLower(strings.Join(descriptions, " "))

	counts := []models.KeywordCount{}
	for _, kw := range Keywords {
		if n := strings.Count(text, kw); n > 0 {
			counts = append(counts, models.KeywordCount{Keyword: kw, Count: n})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}
