package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{`="15/01/2024"`, date(2024, time.January, 15), true},
		{"01/02/2024", date(2024, time.February, 1), true},
		{"1/2/24", date(2024, time.February, 1), true},
		{"01/13/2024", date(2024, time.January, 13), true},
		{"15-01-2024", date(2024, time.January, 15), true},
		{"15.01.2024", date(2024, time.January, 15), true},
		{"15 Jan 2024", date(2024, time.January, 15), true},
		{"15-Jan-24", date(2024, time.January, 15), true},
		{"15 january 2024", date(2024, time.January, 15), true},
		{"2024-01-15", date(2024, time.January, 15), true},
		{"15/01/2024 10:30:00", date(2024, time.January, 15), true},
		{"", time.Time{}, false},
		{"nan", time.Time{}, false},
		{"31/02/2024", time.Time{}, false},
		{"01/01/0001", time.Time{}, false},
		{"02/01/1500", date(1500, time.January, 2), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"500.00", 500, false},
		{`="500.00"`, 500, false},
		{"1,234.56", 1234.56, false},
		{"₹ 2,000.00", 2000, false},
		{"-75.25", -75.25, false},
		{"250.00 Dr", 250, false},
		{"", 0, false},
		{"   ", 0, false},
		{"NaN", 0, false},
		{"nan", 0, false},
		{"None", 0, false},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripArtifacts(t *testing.T) {
	assert.Equal(t, "000123", stripArtifacts(`="000123"`))
	assert.Equal(t, "15/01/2024", stripArtifacts(`"15/01/2024"`))
	assert.Equal(t, "REF 42", stripArtifacts("  REF 42 "))
}
