package statement

import (
	"strings"

	"statement-analyzer/internal/models"
)

type role int

const (
	roleNone role = iota
	roleDate
	roleValueDate
	roleDescription
	roleReference
	roleDebit
	roleCredit
	roleBalance
)

// headerAliases maps a lower-cased, trimmed header cell to the column it carries.
var headerAliases = map[string]role{
	"txn date":           roleDate,
	"transaction date":   roleDate,
	"value date":         roleValueDate,
	"description":        roleDescription,
	"narration":          roleDescription,
	"particulars":        roleDescription,
	"cheque no.":         roleReference,
	"ref no./cheque no.": roleReference,
	"reference":          roleReference,
	"debit":              roleDebit,
	"withdrawal":         roleDebit,
	"credit":             roleCredit,
	"deposit":            roleCredit,
	"balance":            roleBalance,
}

// Markers that identify the transaction table header line.
var (
	dateMarkers        = []string{"txn date", "transaction date"}
	descriptionMarkers = []string{"description", "narration", "particulars"}
)

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	return containsAny(lower, dateMarkers) && containsAny(lower, descriptionMarkers)
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// layout records which source column carries each role. -1 means absent.
type layout map[role]int

func newLayout(header []string) layout {
	l := layout{}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		if isUnlabeled(name) {
			continue
		}
		r, ok := headerAliases[name]
		if !ok {
			continue
		}
		if _, seen := l[r]; !seen {
			l[r] = i
		}
	}
	return l
}

// isUnlabeled matches spreadsheet index artifacts: empty cells and "Unnamed: N".
func isUnlabeled(name string) bool {
	return name == "" || strings.HasPrefix(name, "unnamed")
}

func (l layout) has(r role) bool {
	_, ok := l[r]
	return ok
}

func (l layout) cell(record []string, r role) string {
	i, ok := l[r]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// columns lists the canonical fields present, in canonical order.
func (l layout) columns() []models.Column {
	present := map[models.Column]bool{
		models.ColumnDate:        l.has(roleDate),
		models.ColumnDescription: l.has(roleDescription),
		models.ColumnDebit:       l.has(roleDebit),
		models.ColumnCredit:      l.has(roleCredit),
		models.ColumnBalance:     l.has(roleBalance),
	}
	var cols []models.Column
	for _, c := range models.CanonicalColumns {
		if present[c] {
			cols = append(cols, c)
		}
	}
	return cols
}
