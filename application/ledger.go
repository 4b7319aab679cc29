package application

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptySelection = errors.New("empty selection")
	ErrInvalidOption  = errors.New("invalid option")
	ErrCapExceeded    = errors.New("vote cap exceeded")
	ErrSessionEnded   = errors.New("session ended")
	ErrTooManyOptions = errors.New("too many options")
	ErrNoOptions      = errors.New("no valid options")
	ErrNotAuthorized  = errors.New("not authorized")

	ErrMaxVotesOutOfRange = errors.New("default max votes must be between 1 and 25")
)

// Ledger maps each option index to the set of voters currently choosing it.
// A voter's selections are replaced as a unit on every submission, so a voter
// only ever occupies the sets named by their most recent valid submission.
//
// Ledger is not safe for concurrent use; the owning Session serializes access.
type Ledger struct {
	slots []map[string]struct{}
}

func NewLedger(optionCount int) *Ledger {
	slots := make([]map[string]struct{}, optionCount)
	for i := range slots {
		slots[i] = make(map[string]struct{})
	}
	return &Ledger{slots: slots}
}

func (l *Ledger) OptionCount() int {
	return len(l.slots)
}

// Submit replaces voterID's previous selections with indices. On any error
// the ledger is left unchanged. Duplicate indices collapse before the cap
// check; maxVotes is the per-voter selection cap.
func (l *Ledger) Submit(voterID string, indices []int, maxVotes int) error {
	unique := dedupe(indices)

	if len(unique) == 0 {
		return ErrEmptySelection
	}
	if len(unique) > maxVotes {
		return fmt.Errorf("%w: %d selections, cap %d", ErrCapExceeded, len(unique), maxVotes)
	}
	for _, idx := range unique {
		if idx < 0 || idx >= len(l.slots) {
			return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidOption, idx, len(l.slots))
		}
	}

	for _, s := range l.slots {
		delete(s, voterID)
	}
	for _, idx := range unique {
		l.slots[idx][voterID] = struct{}{}
	}

	return nil
}

// Count returns the number of voters currently choosing option idx.
func (l *Ledger) Count(idx int) int {
	if idx < 0 || idx >= len(l.slots) {
		return 0
	}
	return len(l.slots[idx])
}

// Voters returns the sorted voter ids on option idx.
func (l *Ledger) Voters(idx int) []string {
	if idx < 0 || idx >= len(l.slots) {
		return nil
	}
	ids := make([]string, 0, len(l.slots[idx]))
	for id := range l.slots[idx] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func dedupe(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	unique := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		unique = append(unique, idx)
	}
	return unique
}
