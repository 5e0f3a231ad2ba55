// Package reconcile implements the interactive reconciliation session: a
// line-oriented loop over a journal filtered by an account fragment, which
// marks postings pending, tracks running totals against a statement ending
// balance, and promotes pending postings to cleared when the statement
// zeroes out.
package reconcile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/okrahn/ledgerhand/cache"
	"github.com/okrahn/ledgerhand/journal"
	"github.com/okrahn/ledgerhand/output"
	"github.com/okrahn/ledgerhand/telemetry"
)

// ModeConflictError is returned when the matched account holds both share
// and currency transactions; the session cannot mix the two modes.
type ModeConflictError struct {
	Account string
}

func (e *ModeConflictError) Error() string {
	return fmt.Sprintf("account %q mixes share and currency transactions", e.Account)
}

// SymbolConflictError is returned when the matched account holds share
// transactions in more than one commodity.
type SymbolConflictError struct {
	Account string
	Symbols []string
}

func (e *SymbolConflictError) Error() string {
	symbols := append([]string(nil), e.Symbols...)
	sort.Strings(symbols)
	return fmt.Sprintf("account %q holds multiple symbols: %s", e.Account, strings.Join(symbols, ", "))
}

// Session is the state of one reconciliation run. Mutations are staged in
// memory and flushed to the journal file immediately after the command
// that caused them succeeds.
type Session struct {
	journalPath string
	fragment    string
	cachePath   string

	file    *journal.File
	store   *cache.Store
	account string

	open    []*journal.Thing
	listing []*journal.Thing

	totalCleared decimal.Decimal
	totalPending decimal.Decimal

	endingDate    journal.Date
	endingBalance *decimal.Decimal

	previousDate    string
	previousBalance string

	isShares bool
	symbol   string

	today journal.Date

	in          io.Reader
	out, errOut io.Writer
	scanner     *bufio.Scanner
	styles      *output.Styles
	interactive bool
	watcher     *journalWatcher
}

// Option configures a Session.
type Option func(*Session)

// WithStreams redirects the session's input and output, primarily for
// tests. It also disables the interactive prompt forms.
func WithStreams(in io.Reader, out, errOut io.Writer) Option {
	return func(s *Session) {
		s.in = in
		s.out = out
		s.errOut = errOut
		s.interactive = false
	}
}

// WithCachePath overrides the statement cache location.
func WithCachePath(path string) Option {
	return func(s *Session) {
		s.cachePath = path
	}
}

// WithToday pins the session's notion of today, for deterministic tests.
func WithToday(d journal.Date) Option {
	return func(s *Session) {
		s.today = d
	}
}

// NewSession reads the journal, applies any cached statement progress for
// the matched account, and returns a ready session. Invariant violations
// discovered while reading abort before anything is touched.
func NewSession(ctx context.Context, journalPath, fragment string, opts ...Option) (*Session, error) {
	s := &Session{
		journalPath: journalPath,
		fragment:    fragment,
		cachePath:   cache.DefaultPath(),
		today:       journal.Today(),
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scanner = bufio.NewScanner(s.in)
	s.styles = output.NewStyles(s.out)
	s.endingDate = s.today

	if err := s.populate(ctx); err != nil {
		return nil, err
	}

	store, err := cache.Load(s.cachePath)
	if err != nil {
		s.warnf("%v", err)
	}
	s.store = store
	s.applyCache()

	if w, err := watchJournal(journalPath); err != nil {
		s.warnf("cannot watch journal for outside changes: %v", err)
	} else {
		s.watcher = w
	}

	return s, nil
}

// populate reads the journal and rebuilds the session's totals and open
// transaction set from scratch.
func (s *Session) populate(ctx context.Context) error {
	timer := telemetry.StartTimer(ctx, "populate session")
	defer timer.End()

	file, err := journal.Read(s.journalPath, s.fragment)
	if err != nil {
		return err
	}
	s.file = file

	account := file.MatchedAccount()
	if account == "" {
		return fmt.Errorf("no account matches %q in %s", s.fragment, s.journalPath)
	}
	s.account = account

	if err := s.resolveMode(); err != nil {
		return err
	}

	s.recompute()
	s.listing = nil
	return nil
}

// resolveMode derives the session's share/currency mode from the matched
// transactions. Mixed modes or mixed symbols are fatal.
func (s *Session) resolveMode() error {
	var sawShares, sawCurrency bool
	symbols := map[string]bool{}

	for _, t := range s.file.Things {
		if t.Rec == nil {
			continue
		}
		if t.Rec.IsShares {
			sawShares = true
			symbols[t.Rec.Symbol] = true
		} else {
			sawCurrency = true
		}
	}

	if sawShares && sawCurrency {
		return &ModeConflictError{Account: s.account}
	}
	if len(symbols) > 1 {
		var list []string
		for sym := range symbols {
			list = append(list, sym)
		}
		return &SymbolConflictError{Account: s.account, Symbols: list}
	}

	s.isShares = sawShares
	for sym := range symbols {
		s.symbol = sym
	}
	return nil
}

// recompute walks the matched transactions: cleared amounts feed the
// cleared total; pending ones feed the pending total and stay open;
// uncleared ones stay open without feeding a total.
func (s *Session) recompute() {
	s.totalCleared = decimal.Zero
	s.totalPending = decimal.Zero
	s.open = nil

	for _, t := range s.file.Things {
		if t.Rec == nil {
			continue
		}
		switch t.Rec.Status {
		case journal.Cleared:
			s.totalCleared = s.totalCleared.Add(t.Rec.Amount)
		case journal.Pending:
			s.totalPending = s.totalPending.Add(t.Rec.Amount)
			s.open = append(s.open, t)
		default:
			s.open = append(s.open, t)
		}
	}
}

// decimals returns the rendering precision of the session's mode: two for
// currency, six for shares.
func (s *Session) decimals() int {
	if s.isShares {
		return 6
	}
	return 2
}

// formatAmount renders an amount in session precision with the stable-zero
// rule applied.
func (s *Session) formatAmount(d decimal.Decimal) string {
	return journal.FormatAmount(d, s.decimals())
}

// toZero returns ending balance minus cleared and pending totals; the
// statement is finishable when this renders as zero.
func (s *Session) toZero() decimal.Decimal {
	if s.endingBalance == nil {
		return decimal.Zero
	}
	return s.endingBalance.Sub(s.totalCleared).Sub(s.totalPending)
}

func (s *Session) zeroString() string {
	return journal.FormatAmount(decimal.Zero, s.decimals())
}

// applyCache restores statement progress recorded for the matched account.
func (s *Session) applyCache() {
	entry := s.store.Get(s.account)
	if entry == nil {
		return
	}

	if entry.EndingDate != "" {
		if d, err := journal.ParseDate(entry.EndingDate); err == nil {
			s.endingDate = d
		}
	}
	if entry.EndingBalance != "" {
		if d, err := journal.ParseAmount(entry.EndingBalance); err == nil {
			s.endingBalance = &d
		}
	}
	s.previousDate = entry.PreviousDate
	s.previousBalance = entry.PreviousBalance
}

// saveStatement persists the in-flight statement fields for the account.
func (s *Session) saveStatement() {
	entry := s.store.Get(s.account)
	if entry == nil {
		entry = &cache.Entry{}
	}
	entry.EndingDate = s.endingDate.String()
	entry.EndingBalance = ""
	if s.endingBalance != nil {
		entry.EndingBalance = s.endingBalance.String()
	}
	entry.Shares = s.isShares
	s.store.Put(s.account, entry)
	if err := s.store.Save(); err != nil {
		s.warnf("%v", err)
	}
}

// saveFinished records a completed statement: the ending fields clear and
// become the previous statement.
func (s *Session) saveFinished(balance decimal.Decimal) {
	entry := &cache.Entry{
		PreviousDate:    s.today.String(),
		PreviousBalance: balance.String(),
		Shares:          s.isShares,
	}
	s.store.Put(s.account, entry)
	if err := s.store.Save(); err != nil {
		s.warnf("%v", err)
	}
	s.previousDate = entry.PreviousDate
	s.previousBalance = entry.PreviousBalance
}

// writeJournal flushes the in-memory journal to disk and swallows our own
// watcher events so they do not read as outside edits.
func (s *Session) writeJournal() error {
	if err := s.file.Write(); err != nil {
		return err
	}
	if s.watcher != nil {
		s.watcher.drain()
	}
	return nil
}

func (s *Session) warnf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.errOut, "warning: "+format+"\n", args...)
}

func (s *Session) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Close releases the journal watcher.
func (s *Session) Close() {
	if s.watcher != nil {
		s.watcher.close()
	}
}
