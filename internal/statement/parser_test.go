package statement

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"statement-analyzer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const preamble = `Account Name :,Mr. A Kumar
Address :,"12 Park Street, Kolkata"
Account Number :,00000012345678
Statement period,01 Jan 2024 to 31 Jan 2024
,
`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 {
	return &v
}

func TestParse_TypicalRow(t *testing.T) {
	input := preamble +
		"Txn Date,Description,Debit,Credit,Balance\n" +
		`="15/01/2024",Payment to Amazon,"500.00",,"4500.00"` + "\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 6, stmt.HeaderLine)
	assert.Equal(t, []models.Column{
		models.ColumnDate, models.ColumnDescription, models.ColumnDebit, models.ColumnCredit, models.ColumnBalance,
	}, stmt.Columns)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, models.Transaction{
		Date:        date(2024, time.January, 15),
		Description: "Payment to Amazon",
		Debit:       500.0,
		Credit:      0.0,
		Balance:     ptr(4500.0),
	}, stmt.Transactions[0])
}

func TestParse_FullExport(t *testing.T) {
	input := preamble +
		"Txn Date,Value Date,Description,Cheque No.,Debit,Credit,Balance,\n" +
		`="01/01/2024",="01/01/2024",UPI/ZOMATO/food,="000123","1,250.50",,"10,000.00",` + "\n" +
		`="02/01/2024",="03/01/2024",NEFT salary,,,"50,000.00","60,000.00",` + "\n" +
		`="bad date",,Opening balance carried,,,,"0.00",` + "\n" +
		`="03/01/2024",,ATM withdrawal,,NaN,None,"58,000.00",` + "\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, stmt.Transactions, 3)
	assert.Equal(t, 1, stmt.DroppedRows)

	first := stmt.Transactions[0]
	assert.Equal(t, date(2024, time.January, 1), first.Date)
	assert.Equal(t, "000123", first.Reference)
	assert.Equal(t, 1250.50, first.Debit)
	assert.Equal(t, 10000.0, *first.Balance)

	second := stmt.Transactions[1]
	require.NotNil(t, second.ValueDate)
	assert.Equal(t, date(2024, time.January, 3), *second.ValueDate)
	assert.Equal(t, 0.0, second.Debit)
	assert.Equal(t, 50000.0, second.Credit)

	third := stmt.Transactions[2]
	assert.Nil(t, third.ValueDate)
	assert.Equal(t, 0.0, third.Debit)
	assert.Equal(t, 0.0, third.Credit)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStage string
		format    bool
	}{
		{
			name:      "no header line",
			input:     preamble + "Date,Details,Amount\n01/01/2024,Coffee,10\n",
			wantStage: "header",
			format:    true,
		},
		{
			name:      "empty input",
			input:     "",
			wantStage: "header",
			format:    true,
		},
		{
			name: "non numeric debit",
			input: "Txn Date,Description,Debit,Credit\n" +
				"01/01/2024,Coffee,abc,\n",
			wantStage: "amount",
			format:    true,
		},
		{
			name:      "date column not recognised",
			input:     "Txn Date (IST),Description,Debit,Credit\n01/01/2024,Coffee,1,\n",
			wantStage: "columns",
			format:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, stmt)

			if tt.format {
				var formatErr *models.FormatError
				require.True(t, errors.As(err, &formatErr), "expected FormatError, got %T", err)
				assert.Equal(t, tt.wantStage, formatErr.Stage)
			} else {
				var validationErr *models.ValidationError
				require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T", err)
				assert.Equal(t, tt.wantStage, validationErr.Stage)
			}
		})
	}
}

func TestParse_HeaderNotFoundMessage(t *testing.T) {
	_, err := Parse(strings.NewReader("just,some,text\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction table header not found")
}

func TestParse_AllDatesMalformed(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit,Balance\n" +
		"not a date,Coffee,10,,100\n" +
		"32/13/2024,Tea,5,,95\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, stmt.Transactions)
	assert.Equal(t, 2, stmt.DroppedRows)
}

func TestParse_BlankCreditIsZero(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit,Balance\n" +
		"05/02/2024,Grocery,120.00,,880.00\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, 0.0, stmt.Transactions[0].Credit)
}

func TestParse_NoBalanceColumn(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit\n" +
		"05/02/2024,Grocery,120.00,\n" +
		"06/02/2024,Refund,,20.00\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.False(t, stmt.Has(models.ColumnBalance))
	assert.False(t, stmt.HasBalance())
	for _, tx := range stmt.Transactions {
		assert.Nil(t, tx.Balance)
	}
}

func TestParse_DropsZeroDate(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit\n" +
		"01/01/0001,Typo row,10,\n" +
		"01/01/2024,Rent,500,\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "Rent", stmt.Transactions[0].Description)
	assert.Equal(t, 1, stmt.DroppedRows)
}

func TestParse_PreservesSourceOrder(t *testing.T) {
	input := "Txn Date,Description,Debit,Credit\n" +
		"10/03/2024,third,1,\n" +
		"01/03/2024,first,2,\n" +
		"05/03/2024,second,3,\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	var got []string
	for _, tx := range stmt.Transactions {
		got = append(got, tx.Description)
	}
	assert.Equal(t, []string{"third", "first", "second"}, got)
}

func TestParse_Idempotent(t *testing.T) {
	input := preamble +
		"Txn Date,Description,Debit,Credit,Balance\n" +
		`="15/01/2024",Payment to Amazon,"500.00",,"4500.00"` + "\n" +
		`="16/01/2024",Salary,,"20000.00","24500.00"` + "\n"

	first, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	second, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParse_CRLFAndBOM(t *testing.T) {
	input := "\xef\xbb\xbfBank statement\r\n" +
		"Txn Date,Narration,Withdrawal,Deposit,Balance\r\n" +
		"15-Jan-2024,Swiggy order,250,,750\r\n"

	stmt, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, stmt.HeaderLine)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "Swiggy order", stmt.Transactions[0].Description)
	assert.Equal(t, 250.0, stmt.Transactions[0].Debit)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")
	content := "Txn Date,Description,Debit,Credit\n01/01/2024,Coffee,10,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	stmt, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, stmt.Transactions, 1)

	_, err = ParseFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
