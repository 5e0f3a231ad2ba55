package journal

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const sampleJournal = `; -*- ledger -*-

account e: groceries
account a: checking

2013/05/09 Paycheck
    a: checking  $1,000.00
    i: salary

2013/05/07 Grocery Store
    e: groceries  $25.00
    a: checking

2013/05/07 Coffee Shop
    e: dining  $4.50
    a: checking  $-4.50
`

func TestReadFrom(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJournal), "")
	assert.NoError(t, err)
	assert.Equal(t, 4, len(f.Things))

	assert.False(t, f.Things[0].IsTransaction)
	assert.Equal(t, "Paycheck", f.Things[1].Payee)
	assert.Equal(t, "Grocery Store", f.Things[2].Payee)
	assert.Equal(t, "Coffee Shop", f.Things[3].Payee)
}

func TestReadFromProjection(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJournal), "checking")
	assert.NoError(t, err)
	assert.Equal(t, "a: checking", f.MatchedAccount())

	var amounts []string
	for _, th := range f.Things {
		if th.Rec != nil {
			amounts = append(amounts, th.Rec.Amount.String())
		}
	}
	assert.Equal(t, []string{"1000", "-25", "-4.5"}, amounts)
}

func TestReadFromMultipleAccountsAcrossFile(t *testing.T) {
	const journal = `2013/05/07 Grocery Store
    e: groceries  $25.00
    a: checking  $-25.00

2013/05/09 Opening balance
    a: savings  $25.00
    equity: opening  $-25.00
`
	_, err := ReadFrom(strings.NewReader(journal), "a:")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a: checking")
	assert.Contains(t, err.Error(), "a: savings")
}

func TestSort(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJournal), "")
	assert.NoError(t, err)
	f.Sort()

	var payees []string
	for _, th := range f.Things[1:] {
		payees = append(payees, th.Payee)
	}
	assert.Equal(t, []string{"Grocery Store", "Coffee Shop", "Paycheck"}, payees)

	// The leading opaque block pins to the sentinel and stays on top.
	assert.False(t, f.Things[0].IsTransaction)
	assert.Equal(t, "1899/01/01", f.Things[0].Date.String())
}

func TestSortStableOnEqualDates(t *testing.T) {
	const journal = `2013/05/07 First
    e: misc  $1.00
    a: checking

2013/05/07 Second
    e: misc  $2.00
    a: checking
`
	f, err := ReadFrom(strings.NewReader(journal), "")
	assert.NoError(t, err)
	f.Sort()
	assert.Equal(t, "First", f.Things[0].Payee)
	assert.Equal(t, "Second", f.Things[1].Payee)
}

func TestSortInheritsDates(t *testing.T) {
	const journal = `2013/05/09 Late
    e: misc  $1.00
    a: checking

; a wandering comment

2013/05/07 Early
    e: misc  $2.00
    a: checking
`
	f, err := ReadFrom(strings.NewReader(journal), "")
	assert.NoError(t, err)
	f.Sort()

	// The comment inherits 2013/05/09 and travels with Late.
	assert.Equal(t, "Early", f.Things[0].Payee)
	assert.Equal(t, "Late", f.Things[1].Payee)
	assert.False(t, f.Things[2].IsTransaction)
}

func TestWriteToRoundTrip(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJournal), "")
	assert.NoError(t, err)

	var out strings.Builder
	assert.NoError(t, f.WriteTo(&out))

	want := strings.TrimRight(sampleJournal, "\n") + "\n\n"
	assert.Equal(t, want, out.String())
}

func TestWriteToAfterStatusChange(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJournal), "checking")
	assert.NoError(t, err)

	for _, th := range f.Things {
		if th.Rec != nil {
			th.SetStatus(Cleared)
		}
	}

	var out strings.Builder
	assert.NoError(t, f.WriteTo(&out))

	assert.Contains(t, out.String(), "    * a: checking  $1,000.00")
	assert.Contains(t, out.String(), "    * a: checking\n")
	assert.Contains(t, out.String(), "    * a: checking  $-4.50")
}
