package journal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount renders d with a fixed number of decimals and thousands
// separators. Any value that would render as "-0.00…0" is rewritten to the
// positive zero form; amounts compared textually for equality must go
// through this function so that residues like -1e-15 read as zero.
func FormatAmount(d decimal.Decimal, decimals int) string {
	s := d.StringFixed(int32(decimals))

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	// Stable zero sign.
	if neg && strings.Trim(intPart, "0") == "" && strings.Trim(fracPart, "0") == "" {
		neg = false
	}

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err == nil {
		intPart = humanize.Comma(n)
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(intPart)
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// ParseAmount parses a plain numeric amount, tolerating a currency prefix
// and grouping commas ("$-1,234.56").
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
