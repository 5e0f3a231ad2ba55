package reconcile

import (
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/okrahn/ledgerhand/journal"
)

// payeeWidth caps the payee column so long payees cannot push the listing
// past a normal terminal.
const payeeWidth = 48

// renderListing prints the current listing with display ids, followed by
// the running totals and the remaining amount to zero.
func (s *Session) renderListing() {
	if len(s.listing) == 0 {
		s.printf("nothing to list\n")
	}

	amountWidth := 0
	for _, t := range s.listing {
		if w := len(s.displayAmount(t.Rec.Amount)); w > amountWidth {
			amountWidth = w
		}
	}

	for i, t := range s.listing {
		amount := s.displayAmount(t.Rec.Amount)
		padded := runewidth.FillLeft(amount, amountWidth)

		payee := runewidth.Truncate(t.Payee, payeeWidth, "…")
		code := ""
		if t.Code != "" {
			code = "(" + t.Code + ") "
		}

		s.printf("%3d) %s  %s  %s  %s%s\n",
			i+1,
			s.statusGlyph(t.Rec.Status),
			t.Date,
			s.styles.Amount(padded, t.Rec.Amount.IsNegative()),
			code,
			payee,
		)
	}

	s.printf("\ncleared %s  pending %s\n",
		s.displayAmount(s.totalCleared),
		s.displayAmount(s.totalPending),
	)

	if s.previousDate != "" {
		s.printf("previous statement %s ended at %s\n", s.previousDate, s.previousBalance)
	}

	if s.endingBalance == nil {
		s.printf("ending %s, no ending balance set\n", s.endingDate)
		return
	}
	s.printf("ending %s at %s, %s to zero\n",
		s.endingDate,
		s.displayAmount(*s.endingBalance),
		s.styles.Keyword(s.formatAmount(s.toZero())),
	)
}

// displayAmount renders an amount in session precision with its currency
// prefix or share symbol.
func (s *Session) displayAmount(d decimal.Decimal) string {
	amount := s.formatAmount(d)
	if s.isShares {
		if s.symbol != "" {
			return amount + " " + s.symbol
		}
		return amount
	}
	return "$" + amount
}

func (s *Session) statusGlyph(status journal.Status) string {
	switch status {
	case journal.Cleared:
		return s.styles.Cleared(status.Glyph())
	case journal.Pending:
		return s.styles.Pending(status.Glyph())
	default:
		return status.Glyph()
	}
}
