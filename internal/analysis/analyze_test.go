package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"statement-analyzer/internal/models"
	"statement-analyzer/internal/statement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allColumns = []models.Column{
	models.ColumnDate, models.ColumnDescription, models.ColumnDebit, models.ColumnCredit, models.ColumnBalance,
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func bal(v float64) *float64 {
	return &v
}

func fixture() *models.Statement {
	return &models.Statement{
		Columns: allColumns,
		Transactions: []models.Transaction{
			{Date: day(time.January, 1), Description: "UPI AMAZON pay", Debit: 100, Balance: bal(900)},
			{Date: day(time.January, 1), Description: "amazon refund", Credit: 50, Balance: bal(950)},
			{Date: day(time.January, 2), Description: "Zomato order", Debit: 300, Balance: bal(650)},
			{Date: day(time.January, 3), Description: "Salary", Credit: 5000, Balance: bal(5650)},
			{Date: day(time.January, 5), Description: "Uber ride", Debit: 200, Balance: bal(5450)},
			{Date: day(time.February, 10), Description: "Swiggy", Debit: 50, Balance: bal(5400)},
		},
	}
}

func dates(rows []models.PeriodTotal) []time.Time {
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.Date
	}
	return out
}

func TestAnalyzeAt(t *testing.T) {
	at := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	got, err := AnalyzeAt(fixture(), at)
	require.NoError(t, err)

	assert.Equal(t, 6, got.TotalTransactions)
	assert.Equal(t, 4, got.DebitTransactions)
	assert.Equal(t, 2, got.CreditTransactions)
	assert.Equal(t, models.TimePeriod{Start: day(time.January, 1), End: day(time.February, 10), Days: 41}, got.TimePeriod)

	assert.InDelta(t, 650, got.Amounts.TotalDebit, 1e-9)
	assert.InDelta(t, 5050, got.Amounts.TotalCredit, 1e-9)
	assert.InDelta(t, 162.5, got.Amounts.AvgDebit, 1e-9)
	assert.InDelta(t, 2525, got.Amounts.AvgCredit, 1e-9)

	require.NotNil(t, got.Balance)
	assert.Equal(t, models.BalanceSummary{Opening: 900, Closing: 5400, Net: 4500}, *got.Balance)

	assert.Equal(t, []time.Time{day(time.January, 2), day(time.January, 5), day(time.January, 1)}, dates(got.Daily.TopDebitDays))
	assert.Equal(t, []time.Time{day(time.January, 3), day(time.January, 1), day(time.January, 2)}, dates(got.Daily.TopCreditDays))
	assert.Equal(t, []time.Time{day(time.January, 3)}, dates(got.Daily.LowSpendDays))

	assert.Equal(t, []models.PeriodTotal{
		{Date: day(time.January, 1), Debit: 600, Credit: 5050},
		{Date: day(time.February, 1), Debit: 50, Credit: 0},
	}, got.MonthlyTrends)
	assert.Equal(t, got.MonthlyTrends, got.Raw.Monthly)
	assert.Len(t, got.Raw.Daily, 5)

	assert.Equal(t, []models.KeywordCount{
		{Keyword: "amazon", Count: 2},
		{Keyword: "zomato", Count: 1},
		{Keyword: "swiggy", Count: 1},
		{Keyword: "uber", Count: 1},
	}, got.Merchants)

	assert.True(t, got.Chronological)
	assert.Equal(t, at, got.AnalyzedAt)
}

func TestAnalyze_Conservation(t *testing.T) {
	stmt := fixture()
	got, err := Analyze(stmt)
	require.NoError(t, err)

	var debit, credit float64
	debitCount := 0
	for _, tx := range stmt.Transactions {
		debit += tx.Debit
		credit += tx.Credit
		if tx.Debit > 0 {
			debitCount++
		}
	}
	assert.Equal(t, debit, got.Amounts.TotalDebit)
	assert.Equal(t, credit, got.Amounts.TotalCredit)
	assert.Equal(t, debitCount, got.DebitTransactions)
	assert.GreaterOrEqual(t, got.TimePeriod.Days, 1)
	assert.False(t, got.TimePeriod.End.Before(got.TimePeriod.Start))
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		stmt    *models.Statement
		stage   string
		message string
	}{
		{
			name:    "nil statement",
			stmt:    nil,
			stage:   "schema",
			message: "no statement to analyze",
		},
		{
			name: "missing credit column",
			stmt: &models.Statement{
				Columns:      []models.Column{models.ColumnDate, models.ColumnDescription, models.ColumnDebit},
				Transactions: []models.Transaction{{Date: day(time.January, 1), Debit: 1}},
			},
			stage:   "schema",
			message: "missing required columns: cr",
		},
		{
			name:    "empty record set",
			stmt:    &models.Statement{Columns: allColumns, Transactions: []models.Transaction{}},
			stage:   "records",
			message: "no transactions to analyze",
		},
		{
			name: "only undated records",
			stmt: &models.Statement{
				Columns:      allColumns,
				Transactions: []models.Transaction{{Description: "no date", Debit: 10}},
			},
			stage:   "records",
			message: "no transactions to analyze",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Analyze(tt.stmt)
			assert.Nil(t, got)

			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.stage, validationErr.Stage)
			assert.Equal(t, tt.message, validationErr.Msg)
		})
	}
}

func TestAnalyze_EmptyAfterCleaning(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit,Balance\n" +
		"garbage,Coffee,10,,90\n" +
		"also garbage,Tea,5,,85\n"

	stmt, err := statement.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, stmt.Transactions)

	_, err = Analyze(stmt)
	var validationErr *models.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestAnalyze_DaySpanAcrossCenturies(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit\n" +
		"01/01/0001,Zero year,1,\n" +
		"02/01/1500,Mistyped year,2,\n" +
		"01/01/2024,Rent,3,\n"

	stmt, err := statement.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 2)

	got, err := Analyze(stmt)
	require.NoError(t, err)

	assert.Equal(t, len(stmt.Transactions), got.TotalTransactions)
	assert.Equal(t, time.Date(1500, time.January, 2, 0, 0, 0, 0, time.UTC), got.TimePeriod.Start)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), got.TimePeriod.End)
	assert.Equal(t, 191387, got.TimePeriod.Days)
}

func TestAnalyze_BalanceOnlyWhenAllRecordsCarryIt(t *testing.T) {
	t.Run("no balance column", func(t *testing.T) {
		stmt := fixture()
		stmt.Columns = allColumns[:4]
		for i := range stmt.Transactions {
			stmt.Transactions[i].Balance = nil
		}
		got, err := Analyze(stmt)
		require.NoError(t, err)
		assert.Nil(t, got.Balance)
	})

	t.Run("one record without balance", func(t *testing.T) {
		stmt := fixture()
		stmt.Transactions[3].Balance = nil
		got, err := Analyze(stmt)
		require.NoError(t, err)
		assert.Nil(t, got.Balance)
	})
}

func TestAnalyze_TopDaysTieBreak(t *testing.T) {
	stmt := &models.Statement{Columns: allColumns[:4]}
	for d := 5; d >= 1; d-- {
		stmt.Transactions = append(stmt.Transactions, models.Transaction{Date: day(time.April, d), Debit: 10})
	}

	got, err := Analyze(stmt)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(time.April, 1), day(time.April, 2), day(time.April, 3)}, dates(got.Daily.TopDebitDays))
	assert.Empty(t, got.Daily.LowSpendDays)
	assert.False(t, got.Chronological)
}

func TestAnalyze_TopDaysBound(t *testing.T) {
	got, err := Analyze(fixture())
	require.NoError(t, err)

	require.LessOrEqual(t, len(got.Daily.TopDebitDays), 3)
	listed := map[time.Time]bool{}
	minListed := math.Inf(1)
	for _, d := range got.Daily.TopDebitDays {
		listed[d.Date] = true
		minListed = math.Min(minListed, d.Debit)
	}
	for _, d := range got.Raw.Daily {
		if !listed[d.Date] {
			assert.LessOrEqual(t, d.Debit, minListed)
		}
	}
}

func TestAnalyze_LowSpendDays(t *testing.T) {
	stmt := &models.Statement{Columns: allColumns[:4]}
	debits := []float64{0, 0, 5, 100, 200, 300, 400, 500, 600, 700, 800, 900}
	for i, v := range debits {
		stmt.Transactions = append(stmt.Transactions, models.Transaction{Date: day(time.May, i+1), Debit: v})
	}

	got, err := Analyze(stmt)
	require.NoError(t, err)

	// 10th percentile of the twelve daily sums is 0.5.
	assert.Equal(t, []time.Time{day(time.May, 1), day(time.May, 2)}, dates(got.Daily.LowSpendDays))
}

func TestPercentile(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 0.1)))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.1))
	assert.InDelta(t, 20.0, Percentile([]float64{100, 300, 0, 200, 50}, 0.1), 1e-9)
	assert.InDelta(t, 1.9, Percentile([]float64{1, 10}, 0.1), 1e-9)
	assert.Equal(t, 3.0, Percentile([]float64{5, 1, 3}, 0.5))
}

func TestCountKeywords(t *testing.T) {
	tests := []struct {
		name         string
		descriptions []string
		want         []models.KeywordCount
	}{
		{
			name:         "case insensitive across rows",
			descriptions: []string{"AMAZON marketplace", "refund amazon"},
			want:         []models.KeywordCount{{Keyword: "amazon", Count: 2}},
		},
		{
			name:         "substring matches are counted",
			descriptions: []string{"Coca cola", "Public library"},
			want:         []models.KeywordCount{{Keyword: "ola", Count: 1}, {Keyword: "lic", Count: 1}},
		},
		{
			name:         "ordered by count",
			descriptions: []string{"jio recharge", "Paytm", "JIO fiber", "jio"},
			want:         []models.KeywordCount{{Keyword: "jio", Count: 3}, {Keyword: "paytm", Count: 1}},
		},
		{
			name:         "nothing known",
			descriptions: []string{"Rent", "Electricity"},
			want:         []models.KeywordCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountKeywords(tt.descriptions))
		})
	}
}
