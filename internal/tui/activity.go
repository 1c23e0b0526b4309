package tui

import (
	"strings"

	"github.com/jask/canteen/internal/database/repository"
)

const (
	activityTitle      = "יומן פעילות"
	activityTimeLayout = "15:04 02/01"
)

// ActivityLog is the admin feed, shown in the order supplied.
type ActivityLog struct {
	ctx     *AppContext
	Rows    []repository.Activity
	Loading bool
}

func NewActivityLog(ctx *AppContext) *ActivityLog {
	return &ActivityLog{ctx: ctx, Loading: true}
}

func (a *ActivityLog) View(width int, focused bool) string {
	x := a.ctx
	switch {
	case a.Loading:
		return x.card(activityTitle, "", x.Styles.Muted.Render(loadingText), focused, width)
	case len(a.Rows) == 0:
		return x.card(activityTitle, "", x.Styles.Muted.Render(emptyLog), focused, width)
	}
	lines := make([]string, 0, len(a.Rows))
	for _, r := range a.Rows {
		lines = append(lines, a.row(r))
	}
	return x.card(activityTitle, "", strings.Join(lines, "\n"), focused, width)
}

func (a *ActivityLog) row(r repository.Activity) string {
	x := a.ctx
	d := Describe(r.Type)
	parts := []string{x.Styles.Tone(d.Tone).Render(d.Icon + " " + d.Label)}
	if r.AmountCents != nil {
		positive := creditSign(r.Type, *r.AmountCents)
		tone := ToneDebit
		if positive {
			tone = ToneCredit
		}
		parts = append(parts, x.Styles.Tone(tone).Render(x.Money.Signed(*r.AmountCents, positive)))
	}
	subject := r.ProfileName
	if subject == "" {
		subject = r.Notes
	}
	if subject != "" {
		parts = append(parts, x.Styles.Text.Render(subject))
	}
	parts = append(parts, x.Styles.Muted.Render(x.local(r.CreatedAt).Format(activityTimeLayout)))
	return strings.Join(parts, "  ")
}
