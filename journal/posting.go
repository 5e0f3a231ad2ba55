package journal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the reconciliation state of a posting or transaction header.
type Status string

const (
	Uncleared Status = ""
	Pending   Status = "!"
	Cleared   Status = "*"
)

// Glyph returns the one-character rendering of the status, with a space
// standing in for uncleared.
func (s Status) Glyph() string {
	if s == Uncleared {
		return " "
	}
	return string(s)
}

// Posting is one indented line inside a transaction: an account and,
// optionally, a share quantity and/or a currency amount.
//
// When both a share block and a price annotation are present, Amount holds
// shares × price. That product only feeds currency totals; the share
// quantity itself stays in Shares.
type Posting struct {
	Status  Status
	Account string
	Shares  *decimal.Decimal
	Symbol  string
	Amount  *decimal.Decimal
}

// Matches reports whether the posting's account contains the given
// reconcile fragment.
func (p *Posting) Matches(fragment string) bool {
	return fragment != "" && strings.Contains(p.Account, fragment)
}

var (
	accountSepRx = regexp.MustCompile(`\t| {2,}`)
	shareBlockRx = regexp.MustCompile(`^(-?[\d,]+(?:\.\d+)?)\s+([A-Za-z]+)(?:\s+@\s+(.+))?$`)
)

// ParsePosting parses one journal line into a Posting. It returns (nil, nil)
// for lines that are not postings: blanks, comments, and unindented lines
// (headers and control directives live at column 0 and are handled by the
// block parser). An indented line that looks like a posting but carries a
// malformed value is an error.
func ParsePosting(line string) (*Posting, error) {
	if line == "" || !isIndented(line) {
		return nil, nil
	}

	rest := strings.TrimSpace(line)
	if rest == "" || rest[0] == ';' || rest[0] == '#' {
		return nil, nil
	}

	p := &Posting{}

	if rest[0] == '!' || rest[0] == '*' {
		p.Status = Status(rest[:1])
		rest = strings.TrimLeft(rest[1:], " \t")
	}

	// Trailing comment and balance assertion carry no reconciliation
	// meaning; drop them.
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		rest = strings.TrimSpace(rest[:i])
	}
	if i := strings.IndexByte(rest, '='); i >= 0 {
		rest = strings.TrimSpace(rest[:i])
	}

	// The account runs until the first tab or two-space gap.
	loc := accountSepRx.FindStringIndex(rest)
	if loc == nil {
		p.Account = rest
		return p, nil
	}

	p.Account = rest[:loc[0]]
	value := strings.TrimSpace(rest[loc[1]:])
	if value == "" {
		return p, nil
	}

	if m := shareBlockRx.FindStringSubmatch(value); m != nil {
		shares, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid share quantity %q: %w", m[1], err)
		}
		p.Shares = &shares
		p.Symbol = m[2]

		if m[3] != "" {
			price, err := EvaluateExpression(m[3])
			if err != nil {
				return nil, fmt.Errorf("invalid share price %q: %w", m[3], err)
			}
			amount := shares.Mul(price)
			p.Amount = &amount
		}
		return p, nil
	}

	amount, err := EvaluateExpression(value)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	p.Amount = &amount

	return p, nil
}

func isIndented(line string) bool {
	return line[0] == ' ' || line[0] == '\t'
}
