package application

import (
	"math"
	"strings"
)

const (
	barLength = 12
	barFilled = "▰"
	barEmpty  = "▱"
)

// OptionTally is the derived state of one option.
type OptionTally struct {
	Label   string
	Count   int
	Percent int
	Bar     string
}

// Tally is derived from a ledger snapshot and never stored; it is recomputed
// on every refresh.
type Tally struct {
	Options           []OptionTally
	TotalUniqueVoters int
	TotalSelections   int
}

// ComputeTally derives per-option counts, percentages of unique voters and
// bar renderings from the ledger. Pure read; the ledger is not mutated and
// nothing is cached.
func ComputeTally(l *Ledger, labels []string) Tally {
	unique := make(map[string]struct{})
	for i := 0; i < l.OptionCount(); i++ {
		for _, id := range l.Voters(i) {
			unique[id] = struct{}{}
		}
	}
	total := len(unique)

	t := Tally{
		Options:           make([]OptionTally, l.OptionCount()),
		TotalUniqueVoters: total,
	}

	for i := 0; i < l.OptionCount(); i++ {
		count := l.Count(i)
		percent := 0
		if total > 0 {
			percent = int(math.Round(100 * float64(count) / float64(total)))
		}

		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		t.Options[i] = OptionTally{
			Label:   label,
			Count:   count,
			Percent: percent,
			Bar:     RenderBar(percent),
		}
		t.TotalSelections += count
	}

	return t
}

// RenderBar renders percent as a fixed 12-unit two-glyph progress bar.
func RenderBar(percent int) string {
	filled := int(math.Round(float64(percent) / 100 * barLength))
	if filled < 0 {
		filled = 0
	}
	if filled > barLength {
		filled = barLength
	}
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barLength-filled)
}
