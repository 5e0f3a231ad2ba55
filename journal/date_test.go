package journal

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "2013/05/07"},
		{name: "leap day", input: "2020/02/29"},
		{name: "nonexistent day", input: "2013/02/30", wantErr: true},
		{name: "not zero padded", input: "2013/5/7", wantErr: true},
		{name: "iso format", input: "2013-05-07", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, err := ParseDate(test.input)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.input, d.String())
		})
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("1999/12/31"))
	assert.False(t, IsValidDate("1999/13/01"))
	assert.False(t, IsValidDate("1999/12/32"))
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{name: "january 31 to february", start: "2013/01/31", months: 1, want: "2013/02/28"},
		{name: "january 31 to leap february", start: "2020/01/31", months: 1, want: "2020/02/29"},
		{name: "march 31 back to short month", start: "2013/03/31", months: 1, want: "2013/04/30"},
		{name: "across year boundary", start: "2013/11/30", months: 3, want: "2014/02/28"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := MustParseDate(test.start).AddMonths(test.months)
			assert.Equal(t, test.want, got.String())
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 28, DaysIn(2013, time.February))
	assert.Equal(t, 29, DaysIn(2020, time.February))
	assert.Equal(t, 31, DaysIn(2013, time.January))
	assert.Equal(t, 30, DaysIn(2013, time.June))
}

func TestIsTransactionStart(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "bare date", input: "2013/05/07", want: true},
		{name: "date with payee", input: "2013/05/07 grocery store", want: true},
		{name: "date with tab", input: "2013/05/07\tgrocery store", want: true},
		{name: "indented date", input: " 2013/05/07 store", want: false},
		{name: "invalid calendar day", input: "2013/02/30 store", want: false},
		{name: "date glued to text", input: "2013/05/07x store", want: false},
		{name: "comment", input: "; 2013/05/07", want: false},
		{name: "posting line", input: "    a: cash  $5", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, IsTransactionStart(test.input))
		})
	}
}
