package journal

import (
	"fmt"
	"sort"
	"strings"
)

// Invariant violations discovered while projecting reconciliation state.
// Any of these is fatal to the operation that found it; the journal must
// not be rewritten afterwards.

// MultipleAccountsError is returned when a reconcile fragment matches more
// than one full account name, either inside one transaction or across the
// whole file.
type MultipleAccountsError struct {
	Fragment string
	Accounts []string
}

func (e *MultipleAccountsError) Error() string {
	accounts := append([]string(nil), e.Accounts...)
	sort.Strings(accounts)
	return fmt.Sprintf("more than one account matches %q: %s",
		e.Fragment, strings.Join(accounts, ", "))
}

// MultipleStatusesError is returned when the matched account's postings
// within one transaction disagree on their reconciliation status.
type MultipleStatusesError struct {
	Account string
}

func (e *MultipleStatusesError) Error() string {
	return fmt.Sprintf("multiple statuses for account %q within one transaction", e.Account)
}

// MultipleSymbolsError is returned when the matched account holds share
// postings in more than one commodity within one transaction.
type MultipleSymbolsError struct {
	Account string
	Symbols []string
}

func (e *MultipleSymbolsError) Error() string {
	symbols := append([]string(nil), e.Symbols...)
	sort.Strings(symbols)
	return fmt.Sprintf("multiple symbols for account %q: %s",
		e.Account, strings.Join(symbols, ", "))
}

// MixedSharesError is returned when a transaction combines share postings
// and amount-only postings for the matched account. Elided amounts are
// assumed to be currency, so the two cannot be summed.
type MixedSharesError struct {
	Account string
}

func (e *MixedSharesError) Error() string {
	return fmt.Sprintf("account %q mixes share and non-share postings within one transaction", e.Account)
}

// TopLineStatusError is returned when the matched account appears inside a
// transaction whose header line already carries a ! or * status; such
// transactions cannot participate in reconciliation.
type TopLineStatusError struct {
	Account string
	Date    Date
}

func (e *TopLineStatusError) Error() string {
	return fmt.Sprintf("transaction dated %s carries a top-line status; cannot reconcile account %q inside it",
		e.Date, e.Account)
}
