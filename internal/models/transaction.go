package models

import "time"

// Transaction is one canonical statement row. Date is truncated to the day.
type Transaction struct {
	Date        time.Time  `json:"date"`
	ValueDate   *time.Time `json:"value_date,omitempty"`
	Description string     `json:"desc"`
	Reference   string     `json:"ref,omitempty"`
	Debit       float64    `json:"dr"`
	Credit      float64    `json:"cr"`
	Balance     *float64   `json:"bal,omitempty"`
}

// Column names a canonical field of the record set.
type Column string

const (
	ColumnDate        Column = "date"
	ColumnDescription Column = "desc"
	ColumnDebit       Column = "dr"
	ColumnCredit      Column = "cr"
	ColumnBalance     Column = "bal"
)

// CanonicalColumns is the projection order used by the normalizer.
var CanonicalColumns = []Column{ColumnDate, ColumnDescription, ColumnDebit, ColumnCredit, ColumnBalance}

// Statement is a canonical record set together with the schema it was read with.
// Transactions keep the order in which they appeared in the source file.
type Statement struct {
	Columns      []Column      `json:"columns"`
	Transactions []Transaction `json:"transactions"`
	HeaderLine   int           `json:"header_line"`
	DroppedRows  int           `json:"dropped_rows"`
}

// Has reports whether the source carried the given canonical column.
func (s *Statement) Has(c Column) bool {
	for _, col := range s.Columns {
		if col == c {
			return true
		}
	}
	return false
}

// HasBalance reports whether every record carries a balance.
func (s *Statement) HasBalance() bool {
	if !s.Has(ColumnBalance) || len(s.Transactions) == 0 {
		return false
	}
	for _, tx := range s.Transactions {
		if tx.Balance == nil {
			return false
		}
	}
	return true
}
