package journal

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the only date shape the journal understands. Dates must be
// zero-padded; anything else is rejected.
const DateLayout = "2006/01/02"

// epoch is the sentinel date assigned to opaque blocks that precede the
// first dated transaction, so they stay at the top across sorts.
var epoch = MustParseDate("1899/01/01")

// Date represents a journal date (YYYY/MM/DD). The zero value reports
// IsZero and compares before every real date.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY/MM/DD date. The calendar day must exist; both
// "2013/5/7" and "2013/02/30" are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY/MM/DD", s)
	}
	return Date{t}, nil
}

// MustParseDate parses a date and panics on failure. Use only for literals.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsValidDate reports whether s parses as an existing calendar day.
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// Today returns the current local date truncated to midnight.
func Today() Date {
	y, m, d := time.Now().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewDate builds a date from components, clamping to the last day of the
// month when the day does not exist in it.
func NewDate(year int, month time.Month, day int) Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// AddMonths returns the date n months later. Overflowing days clamp to the
// end of the target month instead of spilling into the next one.
func (d Date) AddMonths(n int) Date {
	y, m, day := d.Date()
	return NewDate(y, m+time.Month(n), day)
}

// Compare orders dates chronologically, returning -1, 0 or 1.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

var datePrefixRx = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}`)

// IsTransactionStart reports whether line opens a new transaction block: a
// valid YYYY/MM/DD date at column 0, followed by whitespace or end-of-line.
func IsTransactionStart(line string) bool {
	m := datePrefixRx.FindString(line)
	if m == "" {
		return false
	}
	if len(line) > len(m) && line[len(m)] != ' ' && line[len(m)] != '\t' {
		return false
	}
	return IsValidDate(m)
}
