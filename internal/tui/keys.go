package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	NextPane  key.Binding
	PrevPane  key.Binding
	Up        key.Binding
	Down      key.Binding
	Dashboard key.Binding
	Admin     key.Binding
	Menu      key.Binding
	Theme     key.Binding
	Refresh   key.Binding
	Logout    key.Binding

	Buy      key.Binding
	AddFunds key.Binding
	Approve  key.Binding
	Deny     key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Search   key.Binding
	Toggle   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	NextFld  key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "יציאה")),
	NextPane:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "חלון הבא")),
	PrevPane:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "חלון קודם")),
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	Dashboard: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "ראשי")),
	Admin:     key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "ניהול")),
	Menu:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "תפריט")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "ערכת צבעים")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "רענון")),
	Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "התנתק")),

	Buy:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "קנייה מהירה")),
	AddFunds: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "טעינת יתרה")),
	Approve:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "אשר")),
	Deny:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "דחה")),
	Inc:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "הוספה")),
	Dec:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "הורדה")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "עריכה")),
	Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "מחיקה")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "חיפוש")),
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "סימון")),
	Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "אישור")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "ביטול")),
	NextFld:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "שדה הבא")),
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if i > 0 && out != "" {
			out += "  "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
