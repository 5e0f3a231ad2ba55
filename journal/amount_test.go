package journal

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		want     string
	}{
		{name: "two decimals", input: "25", decimals: 2, want: "25.00"},
		{name: "rounding", input: "25.005", decimals: 2, want: "25.01"},
		{name: "negative", input: "-20", decimals: 2, want: "-20.00"},
		{name: "thousands grouping", input: "1234567.8", decimals: 2, want: "1,234,567.80"},
		{name: "negative grouping", input: "-1234.5", decimals: 2, want: "-1,234.50"},
		{name: "six decimals", input: "1.234", decimals: 6, want: "1.234000"},
		{name: "zero", input: "0", decimals: 2, want: "0.00"},
		{name: "no decimals", input: "-1234", decimals: 0, want: "-1,234"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, err := decimal.NewFromString(test.input)
			assert.NoError(t, err)
			assert.Equal(t, test.want, FormatAmount(d, test.decimals))
		})
	}
}

// Reconciliation finishes by rendering the remaining difference and
// comparing it to "0.00"; tiny negative residues must not read as nonzero
// or as "-0.00".
func TestFormatAmountStableZero(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		want     string
	}{
		{name: "negative residue", input: "-0.000000000000001", decimals: 2, want: "0.00"},
		{name: "negative zero shares", input: "-0.0000000001", decimals: 6, want: "0.000000"},
		{name: "negative epsilon rounds away", input: "-0.004", decimals: 2, want: "0.00"},
		{name: "real negative survives", input: "-0.01", decimals: 2, want: "-0.01"},
		{name: "zero with no decimals", input: "-0.4", decimals: 0, want: "0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, err := decimal.NewFromString(test.input)
			assert.NoError(t, err)
			assert.Equal(t, test.want, FormatAmount(d, test.decimals))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "25.17", want: "25.17"},
		{name: "dollar sign", input: "$-35", want: "-35"},
		{name: "commas", input: "1,234.56", want: "1234.56"},
		{name: "whitespace", input: "  12 ", want: "12"},
		{name: "words", input: "lots", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseAmount(test.input)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.want, got.String())
		})
	}
}
