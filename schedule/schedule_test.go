package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/okrahn/ledgerhand/journal"
)

func readSchedule(t *testing.T, text string) *File {
	t.Helper()
	src, err := journal.ReadFrom(strings.NewReader(text), "")
	assert.NoError(t, err)
	f, err := build(src)
	assert.NoError(t, err)
	return f
}

func TestBuild(t *testing.T) {
	f := readSchedule(t, `;; scheduler ; enter 30 days

2013/06/05 Paycheck
    ;; schedule ; monthly ; 5 eom
    a: checking  $1,000.00
    i: salary

2013/06/07 Rent
    ;; schedule ; monthly
    e: rent  $800.00
    a: checking
`)
	assert.Equal(t, 30, f.EnterDays)
	assert.Equal(t, 2, len(f.Things))

	pay := f.Things[0]
	assert.Equal(t, "Paycheck", pay.Payee)
	assert.Equal(t, Monthly, pay.Unit)
	assert.Equal(t, 1, pay.Interval)
	assert.Equal(t, []string{"05", "eom"}, pay.Days)

	// Days default to the descriptor's current day of month.
	rent := f.Things[1]
	assert.Equal(t, []string{"07"}, rent.Days)
}

func TestBuildCompoundUnits(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		unit     Unit
		interval int
	}{
		{name: "daily", config: ";; schedule ; daily", unit: Daily, interval: 1},
		{name: "weekly interval", config: ";; schedule ; weekly ; ; 2", unit: Weekly, interval: 2},
		{name: "bimonthly", config: ";; schedule ; bimonthly", unit: Monthly, interval: 2},
		{name: "quarterly", config: ";; schedule ; quarterly", unit: Monthly, interval: 3},
		{name: "biannual", config: ";; schedule ; biannual", unit: Monthly, interval: 6},
		{name: "yearly", config: ";; schedule ; yearly", unit: Monthly, interval: 12},
		{name: "quarterly with interval", config: ";; schedule ; quarterly ; ; 2", unit: Monthly, interval: 6},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := readSchedule(t, ";; scheduler ; enter 30 days\n\n2013/06/05 Payee\n    "+
				test.config+"\n    e: misc  $1.00\n    a: checking\n")
			assert.Equal(t, test.unit, f.Things[0].Unit)
			assert.Equal(t, test.interval, f.Things[0].Interval)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{
			name:    "missing scheduler config",
			text:    "; just a comment\n\n2013/06/05 Payee\n    ;; schedule ; daily\n",
			wantErr: "malformed scheduler config",
		},
		{
			name:    "missing schedule line",
			text:    ";; scheduler ; enter 30 days\n\n2013/06/05 Payee\n    e: misc  $1.00\n",
			wantErr: "malformed schedule config",
		},
		{
			name:    "unknown unit",
			text:    ";; scheduler ; enter 30 days\n\n2013/06/05 Payee\n    ;; schedule ; fortnightly\n",
			wantErr: "unknown schedule unit",
		},
		{
			name:    "bad day token",
			text:    ";; scheduler ; enter 30 days\n\n2013/06/05 Payee\n    ;; schedule ; monthly ; 32\n",
			wantErr: "invalid day token",
		},
		{
			name:    "bad interval",
			text:    ";; scheduler ; enter 30 days\n\n2013/06/05 Payee\n    ;; schedule ; monthly ; 5 ; 0\n",
			wantErr: "invalid schedule interval",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src, err := journal.ReadFrom(strings.NewReader(test.text), "")
			assert.NoError(t, err)
			_, err = build(src)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []string
		wantErr bool
	}{
		{name: "sorted and padded", spec: "15, 1, eom", want: []string{"01", "15", "eom"}},
		{name: "whitespace separated", spec: "5 20", want: []string{"05", "20"}},
		{name: "eom variants", spec: "eom30 eom", want: []string{"eom", "eom30"}},
		{name: "out of range", spec: "0", wantErr: true},
		{name: "garbage", spec: "teens", wantErr: true},
		{name: "empty", spec: " ", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseDays(test.spec)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestResolveDay(t *testing.T) {
	tests := []struct {
		name  string
		token string
		year  int
		month time.Month
		want  int
	}{
		{name: "plain day", token: "05", year: 2013, month: time.June, want: 5},
		{name: "clamped to february", token: "31", year: 2013, month: time.February, want: 28},
		{name: "eom june", token: "eom", year: 2013, month: time.June, want: 30},
		{name: "eom february", token: "eom", year: 2013, month: time.February, want: 28},
		{name: "eom february leap", token: "eom", year: 2020, month: time.February, want: 29},
		{name: "eom30 long month", token: "eom30", year: 2013, month: time.July, want: 30},
		{name: "eom30 february", token: "eom30", year: 2013, month: time.February, want: 28},
		{name: "eom30 february leap", token: "eom30", year: 2020, month: time.February, want: 29},
		{name: "eom15", token: "eom15", year: 2013, month: time.February, want: 15},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, resolveDay(test.token, test.year, test.month))
		})
	}
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		name     string
		unit     Unit
		interval int
		days     []string
		prev     string
		want     string
	}{
		{name: "daily", unit: Daily, interval: 3, prev: "2013/06/05", want: "2013/06/08"},
		{name: "weekly", unit: Weekly, interval: 1, prev: "2013/06/05", want: "2013/06/12"},
		{name: "weekly biweekly", unit: Weekly, interval: 2, prev: "2013/06/25", want: "2013/07/09"},
		{
			name: "monthly later day in same month",
			unit: Monthly, interval: 1, days: []string{"05", "20"},
			prev: "2013/06/05", want: "2013/06/20",
		},
		{
			name: "monthly rolls to next month",
			unit: Monthly, interval: 1, days: []string{"05", "20"},
			prev: "2013/06/20", want: "2013/07/05",
		},
		{
			name: "monthly eom stays then rolls",
			unit: Monthly, interval: 1, days: []string{"eom"},
			prev: "2013/06/30", want: "2013/07/31",
		},
		{
			name: "monthly eom from mid month",
			unit: Monthly, interval: 1, days: []string{"05", "eom"},
			prev: "2013/06/05", want: "2013/06/30",
		},
		{
			name: "quarterly",
			unit: Monthly, interval: 3, days: []string{"15"},
			prev: "2013/06/15", want: "2013/09/15",
		},
		{
			name: "monthly across year boundary",
			unit: Monthly, interval: 1, days: []string{"31"},
			prev: "2013/12/31", want: "2014/01/31",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			st := &Thing{
				Thing:    &journal.Thing{},
				Unit:     test.unit,
				Interval: test.interval,
				Days:     test.days,
			}
			got := st.NextDate(journal.MustParseDate(test.prev))
			assert.Equal(t, test.want, got.String())
		})
	}
}

func TestExpand(t *testing.T) {
	f := readSchedule(t, `;; scheduler ; enter 7 days

2013/06/05 Paycheck
    ;; schedule ; monthly ; eom
    a: checking  $1,000.00
    i: salary
`)
	emitted, err := f.Expand(journal.MustParseDate("2013/06/25"))
	assert.NoError(t, err)

	// 06/05 is already due and 06/30 falls inside the horizon (07/02);
	// the descriptor ends up parked past it.
	assert.Equal(t, 2, len(emitted))
	assert.Equal(t, "2013/06/05", emitted[0].Date.String())
	assert.Equal(t, "2013/06/30", emitted[1].Date.String())
	assert.Equal(t, "2013/07/31", f.Things[0].Date.String())

	// Emitted copies drop the config line and keep the postings.
	assert.Equal(t, []string{
		"2013/06/30 Paycheck",
		"    a: checking  $1,000.00",
		"    i: salary",
	}, emitted[1].Lines())
}

func TestExpandDisabled(t *testing.T) {
	f := readSchedule(t, `;; scheduler ; enter -1 days

2013/06/05 Paycheck
    ;; schedule ; monthly ; eom
    a: checking  $1,000.00
    i: salary
`)
	emitted, err := f.Expand(journal.MustParseDate("2013/06/25"))
	assert.NoError(t, err)
	assert.Zero(t, emitted)
}

func TestExpandRewritesDescriptorDate(t *testing.T) {
	f := readSchedule(t, `;; scheduler ; enter 7 days

2013/06/05 Paycheck
    ;; schedule ; monthly ; eom
    a: checking  $1,000.00
    i: salary
`)
	_, err := f.Expand(journal.MustParseDate("2013/06/25"))
	assert.NoError(t, err)

	var out strings.Builder
	assert.NoError(t, f.src.WriteTo(&out))
	assert.Contains(t, out.String(), ";; scheduler ; enter 7 days")
	assert.Contains(t, out.String(), "2013/07/31 Paycheck")
	assert.Contains(t, out.String(), ";; schedule ; monthly ; eom")
}

func TestNextDates(t *testing.T) {
	f := readSchedule(t, `;; scheduler ; enter 7 days

2013/06/07 Rent
    ;; schedule ; monthly
    e: rent  $800.00
    a: checking

2013/06/05 Paycheck
    ;; schedule ; monthly ; eom
    a: checking  $1,000.00
    i: salary
`)
	dates := f.NextDates()
	assert.Equal(t, 2, len(dates))
	// Descriptors are sorted by date, not file order.
	assert.Equal(t, "2013/06/05", dates[0].String())
	assert.Equal(t, "2013/06/07", dates[1].String())
}
