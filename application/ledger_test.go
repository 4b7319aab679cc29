package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Submit(t *testing.T) {
	l := NewLedger(3)

	err := l.Submit("alice", []int{0, 2}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Count(0))
	assert.Equal(t, 0, l.Count(1))
	assert.Equal(t, 1, l.Count(2))
}

func TestLedger_SubmitReplacesPreviousSelections(t *testing.T) {
	l := NewLedger(3)

	require.NoError(t, l.Submit("alice", []int{0}, 3))
	require.NoError(t, l.Submit("alice", []int{2}, 3))

	assert.Equal(t, 0, l.Count(0))
	assert.Equal(t, 1, l.Count(2))
	assert.Equal(t, []string{"alice"}, l.Voters(2))
}

func TestLedger_SubmitEmptySelection(t *testing.T) {
	l := NewLedger(3)

	err := l.Submit("alice", nil, 3)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestLedger_SubmitOverCap(t *testing.T) {
	l := NewLedger(4)
	require.NoError(t, l.Submit("alice", []int{1}, 2))

	err := l.Submit("alice", []int{0, 2, 3}, 2)
	require.ErrorIs(t, err, ErrCapExceeded)

	// previous selection survives the rejected submission
	assert.Equal(t, 1, l.Count(1))
	assert.Equal(t, 0, l.Count(0))
}

func TestLedger_SubmitOutOfRange(t *testing.T) {
	l := NewLedger(2)
	require.NoError(t, l.Submit("alice", []int{0}, 2))

	err := l.Submit("alice", []int{0, 5}, 2)
	require.ErrorIs(t, err, ErrInvalidOption)

	// atomic: nothing was removed or added
	assert.Equal(t, 1, l.Count(0))

	err = l.Submit("bob", []int{-1}, 2)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestLedger_SubmitDeduplicatesBeforeCapCheck(t *testing.T) {
	l := NewLedger(3)

	// three tokens but only two distinct options, cap 2 admits it
	err := l.Submit("alice", []int{0, 0, 1}, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, l.Count(0))
	assert.Equal(t, 1, l.Count(1))
}

func TestLedger_Voters(t *testing.T) {
	l := NewLedger(2)
	require.NoError(t, l.Submit("carol", []int{0}, 1))
	require.NoError(t, l.Submit("alice", []int{0}, 1))
	require.NoError(t, l.Submit("bob", []int{1}, 1))

	assert.Equal(t, []string{"alice", "carol"}, l.Voters(0))
	assert.Equal(t, []string{"bob"}, l.Voters(1))
	assert.Nil(t, l.Voters(7))
	assert.Equal(t, 0, l.Count(-1))
}
