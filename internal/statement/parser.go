// Package statement turns a raw bank statement export into a canonical record set.
//
// An export is a delimited text file with an arbitrary preamble (account holder,
// statement period banner and so on) in front of the transaction table. The table
// header is the first line naming both a transaction date column and a description
// column. Parsing is a pure function of the input bytes.
package statement

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"statement-analyzer/internal/models"
)

// ParseFile opens path and parses it as a statement export.
func ParseFile(path string) (*models.Statement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file %s: %w", path, err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a statement export and returns its validated canonical records.
// Rows whose transaction date cannot be parsed are dropped; a table with no
// valid rows yields an empty Statement rather than an error.
func Parse(r io.Reader) (*models.Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	offset, headerLine, err := locateHeader(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data[offset:]))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &models.FormatError{Stage: "header", Msg: "unreadable table header", Err: err}
	}

	cols := newLayout(header)
	if !cols.has(roleDate) {
		return nil, &models.ValidationError{Stage: "columns", Msg: "missing required column \"Txn Date\""}
	}

	stmt := &models.Statement{
		Columns:      cols.columns(),
		Transactions: []models.Transaction{},
		HeaderLine:   headerLine,
	}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &models.FormatError{Stage: "table", Msg: fmt.Sprintf("row %d", row), Err: err}
		}

		tx, ok, err := parseRow(cols, record, row)
		if err != nil {
			return nil, err
		}
		if !ok {
			stmt.DroppedRows++
			continue
		}
		stmt.Transactions = append(stmt.Transactions, tx)
	}

	return stmt, nil
}

// locateHeader returns the byte offset and 1-based line number of the table header.
func locateHeader(data []byte) (int, int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	scanner.Split(scanLinesKeepEOL)

	offset := 0
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if isHeaderLine(text) {
			return offset, line, nil
		}
		offset += len(text)
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, &models.FormatError{Stage: "header", Msg: "failed to scan lines", Err: err}
	}
	return 0, 0, &models.FormatError{Stage: "header", Msg: "transaction table header not found"}
}

// scanLinesKeepEOL is bufio.ScanLines without stripping the terminator, so token
// lengths add up to byte offsets.
func scanLinesKeepEOL(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// parseRow maps one table row to a Transaction. ok is false when the row has no
// usable transaction date.
func parseRow(cols layout, record []string, row int) (models.Transaction, bool, error) {
	date, ok := parseDate(cols.cell(record, roleDate))
	if !ok {
		return models.Transaction{}, false, nil
	}

	tx := models.Transaction{
		Date:        date,
		Description: strings.TrimSpace(cols.cell(record, roleDescription)),
		Reference:   stripArtifacts(cols.cell(record, roleReference)),
	}
	if cols.has(roleValueDate) {
		if vd, ok := parseDate(cols.cell(record, roleValueDate)); ok {
			tx.ValueDate = &vd
		}
	}

	amounts := []struct {
		role role
		name string
		dst  *float64
	}{
		{roleDebit, "Debit", &tx.Debit},
		{roleCredit, "Credit", &tx.Credit},
	}
	for _, a := range amounts {
		if !cols.has(a.role) {
			continue
		}
		v, err := amountCell(cols, record, a.role, a.name, row)
		if err != nil {
			return models.Transaction{}, false, err
		}
		*a.dst = v
	}

	if cols.has(roleBalance) {
		v, err := amountCell(cols, record, roleBalance, "Balance", row)
		if err != nil {
			return models.Transaction{}, false, err
		}
		tx.Balance = &v
	}

	return tx, true, nil
}

func amountCell(cols layout, record []string, r role, name string, row int) (float64, error) {
	raw := cols.cell(record, r)
	v, err := parseAmount(raw)
	if err != nil {
		return 0, &models.FormatError{
			Stage: "amount",
			Msg:   fmt.Sprintf("column %s row %d: %q is not a number", name, row, raw),
			Err:   err,
		}
	}
	return v, nil
}
