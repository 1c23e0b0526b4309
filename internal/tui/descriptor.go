package tui

import "github.com/jask/canteen/internal/database/repository"

// Tone is the color family of a row or figure.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneCredit
	ToneDebit
	ToneInfo
	ToneWarning
)

// Descriptor is how a ledger or activity kind is presented.
type Descriptor struct {
	Icon  string
	Label string
	Tone  Tone
}

var descriptors = map[repository.TxType]Descriptor{
	repository.TxPurchase:     {Icon: "↓", Label: "קנייה", Tone: ToneDebit},
	repository.TxPayment:      {Icon: "↑", Label: "תשלום", Tone: ToneCredit},
	repository.TxAdjustment:   {Icon: "±", Label: "התאמה", Tone: ToneInfo},
	repository.TxUserApproved: {Icon: "✓", Label: "אישור משתמש", Tone: ToneCredit},
	repository.TxInventory:    {Icon: "▣", Label: "מלאי", Tone: ToneWarning},
}

// Describe resolves a kind; anything unrecognised is shown as an adjustment.
func Describe(kind repository.TxType) Descriptor {
	if d, ok := descriptors[kind]; ok {
		return d
	}
	return descriptors[repository.TxAdjustment]
}

// creditSign reports whether an amount of this kind is shown with "+".
// Adjustments carry their own sign.
func creditSign(kind repository.TxType, cents int64) bool {
	switch kind {
	case repository.TxPayment:
		return true
	case repository.TxAdjustment:
		return cents >= 0
	default:
		return false
	}
}
