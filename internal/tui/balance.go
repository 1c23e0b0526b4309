package tui

import (
	"strings"

	"github.com/jask/canteen/internal/database/repository"
)

const (
	balanceTitle = "יתרה נוכחית"
	creditLabel  = "זכות"
	debitLabel   = "חובה"
	recentTitle  = "פעילות אחרונה"
	emptyLog     = "אין פעילות עדיין"
	statusWait   = "ממתין"
	statusOK     = "אושר"

	recentTimeLayout = "02/01/2006 15:04"
)

// BalanceCard shows the signed balance of the signed-in user.
type BalanceCard struct {
	ctx     *AppContext
	Balance int64
	Loading bool
}

func NewBalanceCard(ctx *AppContext) *BalanceCard {
	return &BalanceCard{ctx: ctx, Loading: true}
}

// balanceTone decides label and tone from the sign alone.
func balanceTone(cents int64) (string, Tone) {
	if cents < 0 {
		return debitLabel, ToneDebit
	}
	return creditLabel, ToneCredit
}

// Figure is the formatted magnitude with a trailing debit marker.
func (b *BalanceCard) Figure() string {
	s := b.ctx.Money.Abs(b.Balance)
	if b.Balance < 0 {
		s += "-"
	}
	return s
}

func (b *BalanceCard) View(width int) string {
	if b.Loading {
		return b.ctx.card(balanceTitle, "", b.ctx.Styles.Muted.Render(loadingText), false, width)
	}
	label, tone := balanceTone(b.Balance)
	st := b.ctx.Styles.Tone(tone)
	content := st.Inherit(b.ctx.Styles.Big).Render(b.Figure()) + "\n" + st.Render(label)
	return b.ctx.card(balanceTitle, "", content, false, width)
}

// RecentTransactions lists ledger rows in the order given.
type RecentTransactions struct {
	ctx     *AppContext
	Rows    []repository.Transaction
	Loading bool
}

func NewRecentTransactions(ctx *AppContext) *RecentTransactions {
	return &RecentTransactions{ctx: ctx, Loading: true}
}

func (r *RecentTransactions) View(width int) string {
	s := r.ctx.Styles
	if r.Loading {
		return r.ctx.card(recentTitle, "", s.Muted.Render(loadingText), false, width)
	}
	if len(r.Rows) == 0 {
		return r.ctx.card(recentTitle, "", s.Muted.Render(emptyLog), false, width)
	}
	lines := make([]string, 0, len(r.Rows))
	for _, tx := range r.Rows {
		lines = append(lines, r.row(tx))
	}
	return r.ctx.card(recentTitle, "", strings.Join(lines, "\n"), false, width)
}

func (r *RecentTransactions) row(tx repository.Transaction) string {
	s := r.ctx.Styles
	d := Describe(tx.Type)
	badge := s.Tone(ToneCredit).Render(statusOK)
	if tx.Status == repository.TxStatusPending {
		badge = s.Badge.Render(statusWait)
	}
	positive := creditSign(tx.Type, tx.AmountCents)
	tone := ToneDebit
	if positive {
		tone = ToneCredit
	}
	amount := s.Tone(tone).Render(r.ctx.Money.Signed(tx.AmountCents, positive))
	parts := []string{
		s.Tone(d.Tone).Render(d.Icon + " " + d.Label),
		badge,
		s.Muted.Render(r.ctx.local(tx.CreatedAt).Format(recentTimeLayout)),
		amount,
	}
	if tx.Notes != "" {
		parts = append(parts, s.Muted.Render(tx.Notes))
	}
	return strings.Join(parts, "  ")
}
