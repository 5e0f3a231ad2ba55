// Package journal models a plain-text double-entry journal file: dated
// transaction blocks made of posting lines, read into Things, sorted
// chronologically, and written back without disturbing user formatting.
package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// File is the ordered collection of Things read from one journal file. The
// File owns its Things; mutation happens only through sorting, appending
// and status rewriting.
type File struct {
	Path string

	// Fragment is the reconcile account fragment every transaction was
	// projected against, or "" when reading without reconciliation.
	Fragment string

	Things []*Thing

	nextNumber int
}

// Read parses the journal at path. When fragment is non-empty, every
// transaction computes its reconciliation projection, and at most one full
// account name may match across the whole file.
func Read(path, fragment string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer fh.Close()

	f := &File{Path: path, Fragment: fragment}
	if err := f.parse(fh); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFrom parses journal text from a reader; used by tests and stdin.
func ReadFrom(r io.Reader, fragment string) (*File, error) {
	f := &File{Fragment: fragment}
	if err := f.parse(r); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var block []string
	flush := func() error {
		// Trailing blanks belong to the separator, not the block.
		for len(block) > 0 && strings.TrimSpace(block[len(block)-1]) == "" {
			block = block[:len(block)-1]
		}
		if len(block) == 0 {
			return nil
		}
		t, err := NewThing(block, f.Fragment)
		if err != nil {
			return err
		}
		f.attach(t)
		block = nil
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if IsTransactionStart(line) {
			if err := flush(); err != nil {
				return err
			}
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	return f.checkSingleAccount()
}

// attach takes ownership of t, assigning the next ordinal.
func (f *File) attach(t *Thing) {
	t.Number = f.nextNumber
	f.nextNumber++
	f.Things = append(f.Things, t)
}

// Append adds externally built Things (schedule expansion) to the file.
func (f *File) Append(things ...*Thing) {
	for _, t := range things {
		f.attach(t)
	}
}

// checkSingleAccount enforces that all projections across the file agree
// on one matched account.
func (f *File) checkSingleAccount() error {
	accounts := map[string]bool{}
	for _, t := range f.Things {
		if t.Rec != nil {
			accounts[t.Rec.Account] = true
		}
	}
	if len(accounts) > 1 {
		return &MultipleAccountsError{Fragment: f.Fragment, Accounts: mapKeys(accounts)}
	}
	return nil
}

// MatchedAccount returns the single account name the fragment matched, or
// "" when nothing matched.
func (f *File) MatchedAccount() string {
	for _, t := range f.Things {
		if t.Rec != nil {
			return t.Rec.Account
		}
	}
	return ""
}

// Sort orders Things by (date, attach ordinal). Blocks without a date
// inherit the preceding Thing's date first, so comments attached after a
// transaction travel with it; a leading opaque block pins to the epoch
// sentinel and stays on top.
func (f *File) Sort() {
	prev := epoch
	for _, t := range f.Things {
		if t.Date.IsZero() {
			t.Date = prev
		}
		prev = t.Date
	}

	sort.SliceStable(f.Things, func(i, j int) bool {
		a, b := f.Things[i], f.Things[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		return a.Number < b.Number
	})
}

// Write truncates the journal file and writes every Thing back in the
// current in-memory order. There is no backup; the file on disk is the
// mutated artifact.
func (f *File) Write() error {
	fh, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	if err := f.WriteTo(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// WriteTo serializes every Thing followed by a blank separator line.
func (f *File) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range f.Things {
		for _, line := range t.Lines() {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
