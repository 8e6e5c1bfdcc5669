package domain

// Tip is a contextual hint attached to a position
type Tip struct {
	Position string `json:"position"`
	Text     string `json:"text"`
}

// Tips indexes tips by position id
type Tips map[string]Tip

// NewTips indexes a tip list; a later tip for the same position replaces an
// earlier one.
func NewTips(list []Tip) Tips {
	tips := make(Tips, len(list))
	for _, t := range list {
		tips[t.Position] = t
	}
	return tips
}

// TipLedger is the session-scoped record of tips already surfaced.
// It is owned by the session controller and passed explicitly to NextTip.
type TipLedger struct {
	shown map[string]struct{}
}

// NewTipLedger returns an empty ledger for a fresh session
func NewTipLedger() *TipLedger {
	return &TipLedger{shown: make(map[string]struct{})}
}

// Shown reports whether the tip for position was already surfaced
func (l *TipLedger) Shown(position string) bool {
	_, ok := l.shown[position]
	return ok
}

// Len returns how many tips were surfaced this session
func (l *TipLedger) Len() int {
	return len(l.shown)
}

// NextTip returns the tip for a newly entered position, at most once per
// position per ledger. Revisiting a position through a cycle never repeats it.
func NextTip(ledger *TipLedger, tips Tips, position string) (Tip, bool) {
	tip, ok := tips[position]
	if !ok || ledger.Shown(position) {
		return Tip{}, false
	}
	ledger.shown[position] = struct{}{}
	return tip, true
}
