package journal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnspecifiedPayee is the sentinel payee for transaction headers that name
// no payee.
const UnspecifiedPayee = "<Unspecified payee>"

// Thing is one top-level block of a journal file: a dated transaction, or
// an opaque run of lines preceding the first transaction. Lines are kept
// verbatim; the only mutations serialization performs are rewriting the
// header date and the status of the matched posting line.
type Thing struct {
	lines    []string
	fragment string

	// Number is the attach-time ordinal assigned by the owning File. It is
	// the stable tie-breaker when sorting by date.
	Number int

	// Date is the parsed header date, or the inherited date assigned to
	// opaque blocks during sorting. Zero until either happens.
	Date Date

	IsTransaction bool
	Payee         string
	Code          string

	// topLineStatus records a ! or * on the header line itself. Such a
	// transaction cannot participate in reconciliation.
	topLineStatus bool

	// Rec is the reconciliation projection over the matched account's
	// postings, or nil when the Thing was built without a fragment or
	// nothing matched.
	Rec *Reconciliation
}

// Reconciliation is the projection of a Thing onto the single account that
// matched the reconcile fragment.
type Reconciliation struct {
	Account  string
	Status   Status
	Amount   decimal.Decimal
	IsShares bool
	Symbol   string
}

// NewThing builds a Thing from the lines of one block. When fragment is
// non-empty and the block is a transaction, the reconciliation projection
// is computed and its invariants enforced.
func NewThing(lines []string, fragment string) (*Thing, error) {
	t := &Thing{lines: lines, fragment: fragment}

	if len(lines) == 0 || !IsTransactionStart(lines[0]) {
		return t, nil
	}

	t.IsTransaction = true
	t.parseHeader(lines[0])

	if fragment != "" {
		if err := t.project(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Thing) parseHeader(line string) {
	t.Date = MustParseDate(line[:len(DateLayout)])

	rest := line[len(DateLayout):]
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)

	if rest != "" && (rest[0] == '!' || rest[0] == '*') {
		if len(rest) == 1 || rest[1] == ' ' || rest[1] == '\t' {
			t.topLineStatus = true
			rest = strings.TrimSpace(rest[1:])
		}
	}

	if strings.HasPrefix(rest, "(") {
		if i := strings.IndexByte(rest, ')'); i >= 0 {
			t.Code = rest[1:i]
			rest = strings.TrimSpace(rest[i+1:])
		}
	}

	t.Payee = rest
	if t.Payee == "" {
		t.Payee = UnspecifiedPayee
	}
}

// project walks the posting lines and accumulates the matched account's
// total, status and share mode, enforcing the single-account,
// single-status and single-symbol invariants.
//
// An elided matched amount is inferred from the fact that the transaction
// balances: it equals the negated sum of every explicit amount, so the
// account total becomes accountTotal - transactionTotal. That inference is
// only defined in currency mode.
func (t *Thing) project() error {
	var (
		transactionTotal = decimal.Zero
		accountTotal     = decimal.Zero
		needMath         bool
		isShares         bool

		accounts = map[string]bool{}
		statuses = map[Status]bool{}
		symbols  = map[string]bool{}
	)

	for _, line := range t.lines[1:] {
		p, err := ParsePosting(line)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}

		if p.Amount != nil {
			transactionTotal = transactionTotal.Add(*p.Amount)
		}

		if !p.Matches(t.fragment) {
			continue
		}

		if t.topLineStatus {
			return &TopLineStatusError{Account: p.Account, Date: t.Date}
		}

		accounts[p.Account] = true
		if len(accounts) > 1 {
			return &MultipleAccountsError{Fragment: t.fragment, Accounts: mapKeys(accounts)}
		}

		statuses[p.Status] = true
		if len(statuses) > 1 {
			return &MultipleStatusesError{Account: p.Account}
		}

		var contribution decimal.Decimal
		switch {
		case p.Shares != nil:
			if needMath {
				return &MixedSharesError{Account: p.Account}
			}
			isShares = true
			symbols[p.Symbol] = true
			if len(symbols) > 1 {
				return &MultipleSymbolsError{Account: p.Account, Symbols: mapKeys(symbols)}
			}
			contribution = *p.Shares

		case p.Amount != nil:
			if isShares {
				return &MixedSharesError{Account: p.Account}
			}
			contribution = *p.Amount

		default:
			if isShares {
				return &MixedSharesError{Account: p.Account}
			}
			needMath = true
		}

		if !needMath {
			accountTotal = accountTotal.Add(contribution)
		}
	}

	if len(accounts) == 0 {
		return nil
	}

	if needMath {
		accountTotal = accountTotal.Sub(transactionTotal)
	}

	rec := &Reconciliation{
		Amount:   accountTotal,
		IsShares: isShares,
	}
	for account := range accounts {
		rec.Account = account
	}
	for status := range statuses {
		rec.Status = status
	}
	for symbol := range symbols {
		rec.Symbol = symbol
	}
	t.Rec = rec

	return nil
}

// SetStatus changes the reconciliation status of the matched account's
// postings. The change takes effect textually on the next Lines call.
func (t *Thing) SetStatus(s Status) {
	if t.Rec != nil {
		t.Rec.Status = s
	}
}

// RawLines returns the block's original lines unmodified.
func (t *Thing) RawLines() []string {
	return t.lines
}

// Lines serializes the Thing. Opaque blocks come back verbatim. For
// transactions, the header date is rewritten to the current Date and the
// matched posting lines are normalized to a four-space indent with the
// current status glyph; every other line is emitted untouched.
func (t *Thing) Lines() []string {
	if !t.IsTransaction {
		return t.lines
	}

	out := make([]string, 0, len(t.lines))

	header := t.lines[0]
	if datePrefixRx.MatchString(header) && !t.Date.IsZero() {
		header = t.Date.String() + header[len(DateLayout):]
	}
	out = append(out, header)

	for _, line := range t.lines[1:] {
		if t.Rec != nil {
			if p, err := ParsePosting(line); err == nil && p != nil && p.Matches(t.fragment) {
				out = append(out, rewriteStatus(line, t.Rec.Status))
				continue
			}
		}
		out = append(out, line)
	}

	return out
}

// rewriteStatus renders a matched posting line with a normalized prefix:
// four spaces, the status glyph, one space, then the remainder of the line
// after any previous status.
func rewriteStatus(line string, s Status) string {
	rest := strings.TrimLeft(line, " \t")
	if rest != "" && (rest[0] == '!' || rest[0] == '*') {
		rest = strings.TrimLeft(rest[1:], " \t")
	}
	return "    " + s.Glyph() + " " + rest
}

func mapKeys[K comparable](m map[K]bool) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
