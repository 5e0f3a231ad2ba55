package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/okrahn/ledgerhand/journal"
)

// errQuit signals a clean exit from the command loop.
var errQuit = errors.New("quit")

type command struct {
	name  string
	alias string
	usage string
	help  string
	run   func(ctx context.Context, s *Session, args []string) error
}

var commands []*command

func init() {
	commands = []*command{
		{
			name:  "list",
			alias: "l",
			usage: "list [all]",
			help:  "List open transactions dated through the ending date, plus all pending ones. With 'all', list every open transaction.",
			run: func(ctx context.Context, s *Session, args []string) error {
				s.rebuildListing(len(args) > 0 && args[0] == "all")
				s.renderListing()
				return nil
			},
		},
		{
			name:  "mark",
			alias: "m",
			usage: "mark <ids…>|all",
			help:  "Mark listed transactions pending. A bare number on the command line is shorthand for mark.",
			run: func(ctx context.Context, s *Session, args []string) error {
				return s.setMarks(args, true)
			},
		},
		{
			name:  "unmark",
			alias: "u",
			usage: "unmark <ids…>|all",
			help:  "Return pending listed transactions to uncleared.",
			run: func(ctx context.Context, s *Session, args []string) error {
				return s.setMarks(args, false)
			},
		},
		{
			name:  "show",
			alias: "sh",
			usage: "show <ids…>",
			help:  "Print the raw journal lines of the referenced transactions.",
			run: func(ctx context.Context, s *Session, args []string) error {
				s.show(args)
				return nil
			},
		},
		{
			name:  "statement",
			alias: "st",
			usage: "statement",
			help:  "Capture the statement ending date and ending balance. Enter 'cancel' to clear them.",
			run: func(ctx context.Context, s *Session, args []string) error {
				return s.captureStatement()
			},
		},
		{
			name:  "finish",
			alias: "f",
			usage: "finish",
			help:  "Promote pending transactions to cleared once the statement zeroes out.",
			run: func(ctx context.Context, s *Session, args []string) error {
				return s.finish(ctx)
			},
		},
		{
			name:  "account",
			alias: "a",
			usage: "account",
			help:  "Print the full account name being reconciled.",
			run: func(ctx context.Context, s *Session, args []string) error {
				s.printf("%s\n", s.account)
				return nil
			},
		},
		{
			name:  "reload",
			alias: "r",
			usage: "reload",
			help:  "Re-read the journal file and rebuild the session.",
			run: func(ctx context.Context, s *Session, args []string) error {
				if err := s.populate(ctx); err != nil {
					return err
				}
				s.rebuildListing(false)
				s.renderListing()
				return nil
			},
		},
		{
			name:  "help",
			alias: "h",
			usage: "help [command]",
			help:  "Show command documentation.",
			run: func(ctx context.Context, s *Session, args []string) error {
				s.printHelp(args)
				return nil
			},
		},
		{
			name:  "aliases",
			alias: "al",
			usage: "aliases",
			help:  "Show the short alias of every command.",
			run: func(ctx context.Context, s *Session, args []string) error {
				for _, cmd := range commands {
					s.printf("%-4s %s\n", cmd.alias, cmd.name)
				}
				return nil
			},
		},
		{
			name:  "quit",
			alias: "q",
			usage: "quit",
			help:  "Leave the session. Every change is already on disk.",
			run: func(ctx context.Context, s *Session, args []string) error {
				return errQuit
			},
		},
	}
}

func lookup(verb string) *command {
	for _, cmd := range commands {
		if cmd.name == verb || cmd.alias == verb {
			return cmd
		}
	}
	return nil
}

// Run drives the command loop until quit or end of input. User mistakes
// are printed and the loop continues; only invariant violations and
// journal IO failures end the session with an error.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	s.printf("reconciling %s\n", s.account)
	s.rebuildListing(false)
	s.renderListing()

	for {
		if s.watcher != nil && s.watcher.changed() {
			s.warnf("journal changed on disk; run 'reload' to pick up outside edits")
		}

		s.printf("> ")
		if !s.scanner.Scan() {
			s.printf("\n")
			return s.scanner.Err()
		}

		fields := strings.Fields(s.scanner.Text())
		if len(fields) == 0 {
			continue
		}

		verb, args := fields[0], fields[1:]
		if _, err := strconv.Atoi(verb); err == nil {
			verb, args = "mark", fields
		}

		cmd := lookup(verb)
		if cmd == nil {
			s.printf("unknown command %q; try 'help'\n", verb)
			continue
		}

		switch err := cmd.run(ctx, s, args); {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			return err
		}
	}
}

// rebuildListing selects the Things shown to the user and assigns their
// 1-based display ids. Without 'all', open transactions qualify when dated
// through the ending date; pending ones always show.
func (s *Session) rebuildListing(all bool) {
	s.listing = nil
	for _, t := range s.open {
		if all || t.Rec.Status == journal.Pending || !t.Date.After(s.endingDate.Time) {
			s.listing = append(s.listing, t)
		}
	}
}

// resolveIDs maps id arguments onto listed Things. "all" expands to every
// listed Thing whose status matches fromStatus.
func (s *Session) resolveIDs(args []string, fromStatus journal.Status) []*journal.Thing {
	if len(args) == 1 && args[0] == "all" {
		var targets []*journal.Thing
		for _, t := range s.listing {
			if t.Rec.Status == fromStatus {
				targets = append(targets, t)
			}
		}
		if len(targets) == 0 {
			s.printf("nothing to change\n")
		}
		return targets
	}

	var targets []*journal.Thing
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(s.listing) {
			s.printf("unknown id %q\n", arg)
			continue
		}
		targets = append(targets, s.listing[n-1])
	}
	return targets
}

// setMarks moves listed transactions between uncleared and pending and,
// on any success, rewrites the journal and refreshes the listing.
func (s *Session) setMarks(args []string, toPending bool) error {
	if len(args) == 0 {
		s.printf("usage: mark <ids…>|all\n")
		return nil
	}
	if len(s.listing) == 0 {
		s.printf("nothing listed; run 'list' first\n")
		return nil
	}

	fromStatus := journal.Uncleared
	if !toPending {
		fromStatus = journal.Pending
	}

	changed := false
	for _, t := range s.resolveIDs(args, fromStatus) {
		if toPending {
			if t.Rec.Status == journal.Pending {
				s.printf("%s %s is already pending\n", t.Date, t.Payee)
				continue
			}
			t.SetStatus(journal.Pending)
		} else {
			if t.Rec.Status != journal.Pending {
				s.printf("%s %s is not pending; cannot unmark\n", t.Date, t.Payee)
				continue
			}
			t.SetStatus(journal.Uncleared)
		}
		changed = true
	}

	if !changed {
		return nil
	}

	s.recompute()
	if err := s.writeJournal(); err != nil {
		return err
	}
	s.rebuildListing(false)
	s.renderListing()
	return nil
}

func (s *Session) show(args []string) {
	if len(s.listing) == 0 {
		s.printf("nothing listed; run 'list' first\n")
		return
	}
	for _, t := range s.resolveIDs(args, journal.Uncleared) {
		for _, line := range t.RawLines() {
			s.printf("%s\n", line)
		}
	}
}

// captureStatement asks for the statement ending date and balance.
// "cancel" at either prompt clears the ending balance and resets the
// ending date to today. Any change persists to the cache and re-lists.
func (s *Session) captureStatement() error {
	dateStr, err := s.prompt("Statement ending date (YYYY/MM/DD)", s.endingDate.String(), func(v string) error {
		if v == "" || v == "cancel" || journal.IsValidDate(v) {
			return nil
		}
		return fmt.Errorf("expected YYYY/MM/DD")
	})
	if err != nil {
		return nil
	}
	if dateStr == "cancel" {
		s.cancelStatement()
		return nil
	}

	balanceDefault := ""
	if s.endingBalance != nil {
		balanceDefault = s.formatAmount(*s.endingBalance)
	}
	balanceStr, err := s.prompt("Statement ending balance", balanceDefault, func(v string) error {
		if v == "" || v == "cancel" {
			return nil
		}
		_, err := journal.ParseAmount(v)
		return err
	})
	if err != nil {
		return nil
	}
	if balanceStr == "cancel" {
		s.cancelStatement()
		return nil
	}

	if dateStr != "" {
		s.endingDate = journal.MustParseDate(dateStr)
	}
	if balanceStr != "" {
		balance, parseErr := journal.ParseAmount(balanceStr)
		if parseErr != nil {
			s.printf("%v\n", parseErr)
			return nil
		}
		s.endingBalance = &balance
	}

	s.saveStatement()
	s.rebuildListing(false)
	s.renderListing()
	return nil
}

func (s *Session) cancelStatement() {
	s.endingBalance = nil
	s.endingDate = s.today
	s.saveStatement()
	s.rebuildListing(false)
	s.renderListing()
}

// prompt reads one validated line. Interactive sessions get a huh input
// form; otherwise the line comes from the session reader. An error means
// input was exhausted.
func (s *Session) prompt(title, initial string, validate func(string) error) (string, error) {
	if s.interactive {
		value := initial
		input := huh.NewInput().
			Title(title).
			Validate(validate).
			Value(&value)
		if err := input.Run(); err != nil {
			return "", err
		}
		return strings.TrimSpace(value), nil
	}

	for {
		s.printf("%s [%s]: ", title, initial)
		if !s.scanner.Scan() {
			return "", fmt.Errorf("input closed")
		}
		value := strings.TrimSpace(s.scanner.Text())
		if err := validate(value); err != nil {
			s.printf("%v\n", err)
			continue
		}
		return value, nil
	}
}

// finish promotes every pending transaction to cleared, but only when the
// statement balances exactly: ending balance minus cleared minus pending
// must render as zero in session precision.
func (s *Session) finish(ctx context.Context) error {
	if s.endingBalance == nil {
		s.printf("no ending balance set; run 'statement' first\n")
		return nil
	}

	if got := s.formatAmount(s.toZero()); got != s.zeroString() {
		s.printf("%s left to zero; keep marking\n", got)
		return nil
	}

	balance := *s.endingBalance

	promoted := 0
	for _, t := range s.file.Things {
		if t.Rec != nil && t.Rec.Status == journal.Pending {
			t.SetStatus(journal.Cleared)
			promoted++
		}
	}

	if err := s.writeJournal(); err != nil {
		return err
	}

	s.saveFinished(balance)
	s.endingBalance = nil
	s.endingDate = s.today

	if err := s.populate(ctx); err != nil {
		return err
	}

	s.printf("finished statement; cleared %d transaction(s)\n", promoted)
	s.rebuildListing(false)
	s.renderListing()
	return nil
}

func (s *Session) printHelp(args []string) {
	if len(args) > 0 {
		cmd := lookup(args[0])
		if cmd == nil {
			s.printf("unknown command %q\n", args[0])
			return
		}
		s.printf("%s (%s)\n  %s\n", cmd.usage, cmd.alias, cmd.help)
		return
	}
	for _, cmd := range commands {
		s.printf("%-20s %s\n", cmd.usage, cmd.help)
	}
	s.printf("\nA bare number marks that listing entry pending.\n")
}
