// Package schedule materializes recurring transactions. A schedule file is
// journal-shaped: its first block configures the enter-ahead horizon, every
// later block is a transaction template whose second line describes when
// copies of it should be entered into the journal.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/okrahn/ledgerhand/journal"
)

// Unit is the base recurrence unit. The compound units (bimonthly,
// quarterly, biannual, yearly) normalize to Monthly with a multiplied
// interval at parse time.
type Unit int

const (
	Daily Unit = iota
	Weekly
	Monthly
)

func (u Unit) String() string {
	switch u {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	default:
		return "monthly"
	}
}

// Thing is a recurring-transaction descriptor: a journal transaction block
// plus the recurrence parsed from its config line. Its Date is the next
// date a copy should be entered on.
type Thing struct {
	*journal.Thing

	Unit     Unit
	Interval int

	// Days holds the normalized day-of-month tokens for monthly schedules:
	// two-digit numerics first, then eom tokens, in emission order.
	Days []string

	configIndex int
}

// File is a parsed schedule file.
type File struct {
	Path string

	// EnterDays is the enter-ahead horizon in days; < 1 disables expansion.
	EnterDays int

	Things []*Thing

	src *journal.File
}

var (
	enterRx    = regexp.MustCompile(`^enter\s+(-?\d+)\s+days$`)
	dayTokenRx = regexp.MustCompile(`^(\d+|eom(\d{1,2})?)$`)
	daySplitRx = regexp.MustCompile(`[\s,]+`)
)

// Read parses the schedule file at path and sorts its descriptors.
func Read(path string) (*File, error) {
	src, err := journal.Read(path, "")
	if err != nil {
		return nil, err
	}
	return build(src)
}

func build(src *journal.File) (*File, error) {
	f := &File{Path: src.Path, src: src}

	if len(src.Things) == 0 {
		return nil, fmt.Errorf("schedule file is empty: expected a \";; scheduler ; enter N days\" block")
	}

	enterDays, err := parseSchedulerConfig(src.Things[0])
	if err != nil {
		return nil, err
	}
	f.EnterDays = enterDays

	for _, t := range src.Things[1:] {
		st, err := newThing(t)
		if err != nil {
			return nil, err
		}
		f.Things = append(f.Things, st)
	}

	src.Sort()
	slices.SortStableFunc(f.Things, func(a, b *Thing) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Number - b.Number
	})

	return f, nil
}

// parseSchedulerConfig extracts the enter-ahead horizon from the file-level
// config block: ";; scheduler ; enter N days" (further ;-separated tokens
// are permitted and ignored).
func parseSchedulerConfig(t *journal.Thing) (int, error) {
	for _, line := range t.RawLines() {
		fields, ok := configFields(line)
		if !ok || len(fields) == 0 || fields[0] != "scheduler" {
			continue
		}
		if len(fields) < 2 {
			break
		}
		m := enterRx.FindStringSubmatch(fields[1])
		if m == nil {
			break
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			break
		}
		return n, nil
	}
	return 0, fmt.Errorf("malformed scheduler config %q: expected \";; scheduler ; enter N days\"",
		strings.Join(t.RawLines(), "\n"))
}

func newThing(t *journal.Thing) (*Thing, error) {
	lines := t.RawLines()
	if !t.IsTransaction || len(lines) < 2 {
		return nil, fmt.Errorf("malformed schedule block %q: expected a dated transaction with a config line",
			lines[0])
	}

	fields, ok := configFields(lines[1])
	if !ok || len(fields) < 2 || fields[0] != "schedule" {
		return nil, fmt.Errorf("malformed schedule config %q: expected \";; schedule ; <unit> [; days [; interval]]\"",
			lines[1])
	}

	st := &Thing{Thing: t, Interval: 1, configIndex: 1}

	multiplier := 1
	switch fields[1] {
	case "daily":
		st.Unit = Daily
	case "weekly":
		st.Unit = Weekly
	case "monthly":
		st.Unit = Monthly
	case "bimonthly":
		st.Unit, multiplier = Monthly, 2
	case "quarterly":
		st.Unit, multiplier = Monthly, 3
	case "biannual":
		st.Unit, multiplier = Monthly, 6
	case "yearly":
		st.Unit, multiplier = Monthly, 12
	default:
		return nil, fmt.Errorf("unknown schedule unit %q in %q", fields[1], lines[1])
	}

	if len(fields) > 2 && fields[2] != "" {
		days, err := parseDays(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, lines[1])
		}
		st.Days = days
	} else {
		st.Days = []string{fmt.Sprintf("%02d", t.Date.Day())}
	}

	if len(fields) > 3 && fields[3] != "" {
		interval, err := strconv.Atoi(fields[3])
		if err != nil || interval < 1 {
			return nil, fmt.Errorf("invalid schedule interval %q in %q", fields[3], lines[1])
		}
		st.Interval = interval
	}
	st.Interval *= multiplier

	return st, nil
}

// configFields splits a ";; key ; a ; b" line into its trimmed
// ;-separated fields, tolerating leading indentation. ok is false for
// lines that are not ";;" config.
func configFields(line string) (fields []string, ok bool) {
	line = strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(line, ";;") {
		return nil, false
	}
	for _, part := range strings.Split(line[2:], ";") {
		fields = append(fields, strings.TrimSpace(part))
	}
	return fields, true
}

// parseDays normalizes a whitespace- or comma-separated day-token list.
// Numeric days are zero-padded to two digits so that lexicographic order
// equals numeric order and eom tokens sort after every numeric day.
func parseDays(spec string) ([]string, error) {
	var days []string
	for _, tok := range daySplitRx.Split(spec, -1) {
		if tok == "" {
			continue
		}
		tok = strings.ToLower(tok)
		if !dayTokenRx.MatchString(tok) {
			return nil, fmt.Errorf("invalid day token %q", tok)
		}
		if tok[0] != 'e' {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 1 || n > 31 {
				return nil, fmt.Errorf("invalid day token %q", tok)
			}
			tok = fmt.Sprintf("%02d", n)
		}
		days = append(days, tok)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("empty day list")
	}
	slices.Sort(days)
	return days, nil
}

// resolveDay maps a day token onto a concrete day of the given month.
// Numeric days clamp to the month length; "eom" is the last day; "eomN" is
// day N when the month is long enough, else the last day.
func resolveDay(token string, year int, month time.Month) int {
	last := journal.DaysIn(year, month)

	if strings.HasPrefix(token, "eom") {
		if token == "eom" {
			return last
		}
		n, err := strconv.Atoi(token[3:])
		if err != nil || n > last {
			return last
		}
		return n
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return last
	}
	if n > last {
		return last
	}
	return n
}

// NextDate returns the first schedule date strictly after prev.
func (t *Thing) NextDate(prev journal.Date) journal.Date {
	switch t.Unit {
	case Daily:
		return prev.AddDays(t.Interval)
	case Weekly:
		return prev.AddDays(7 * t.Interval)
	}

	year, month, day := prev.Date()

	// Stay in prev's month if a later scheduled day exists there.
	for _, tok := range t.Days {
		if resolved := resolveDay(tok, year, month); resolved > day {
			return journal.NewDate(year, month, resolved)
		}
	}

	// Otherwise jump ahead by the interval and take the earliest day.
	next := prev.AddMonths(t.Interval)
	y, m, _ := next.Date()
	return journal.NewDate(y, m, resolveDay(t.Days[0], y, m))
}

// Expand emits one concrete transaction per schedule date from the
// descriptor's current date through the horizon (today + EnterDays,
// inclusive), advancing the descriptor past the horizon. An EnterDays
// below 1 disables expansion entirely.
func (f *File) Expand(today journal.Date) ([]*journal.Thing, error) {
	if f.EnterDays < 1 {
		return nil, nil
	}
	horizon := today.AddDays(f.EnterDays)

	var emitted []*journal.Thing
	for _, st := range f.Things {
		for !st.Date.After(horizon.Time) {
			t, err := st.emit(st.Date)
			if err != nil {
				return nil, err
			}
			emitted = append(emitted, t)
			st.Date = st.NextDate(st.Date)
		}
	}
	return emitted, nil
}

// emit builds the concrete journal transaction for one schedule date: the
// descriptor's lines minus the config line, with the date rewritten.
func (t *Thing) emit(date journal.Date) (*journal.Thing, error) {
	src := t.RawLines()
	lines := make([]string, 0, len(src)-1)
	for i, line := range src {
		if i == t.configIndex {
			continue
		}
		if i == 0 {
			line = date.String() + line[len(journal.DateLayout):]
		}
		lines = append(lines, line)
	}
	return journal.NewThing(lines, "")
}

// NextDates reports the next emission date of every descriptor, in file
// order. Used by the next-scheduled-date command.
func (f *File) NextDates() []journal.Date {
	dates := make([]journal.Date, len(f.Things))
	for i, st := range f.Things {
		dates[i] = st.Date
	}
	return dates
}

// Write rewrites the schedule file: the scheduler header block verbatim,
// every descriptor with its config line intact and only the date advanced.
func (f *File) Write() error {
	return f.src.Write()
}
