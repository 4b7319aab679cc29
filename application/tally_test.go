package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTally(t *testing.T) {
	l := NewLedger(3)
	require.NoError(t, l.Submit("alice", []int{0, 1}, 2))
	require.NoError(t, l.Submit("bob", []int{0}, 2))
	require.NoError(t, l.Submit("carol", []int{2}, 2))

	tally := ComputeTally(l, []string{"Mon 6pm", "Tue 7pm", "Wed 8pm"})

	assert.Equal(t, 3, tally.TotalUniqueVoters)
	assert.Equal(t, 4, tally.TotalSelections)

	require.Len(t, tally.Options, 3)
	assert.Equal(t, "Mon 6pm", tally.Options[0].Label)
	assert.Equal(t, 2, tally.Options[0].Count)
	assert.Equal(t, 67, tally.Options[0].Percent)
	assert.Equal(t, 1, tally.Options[1].Count)
	assert.Equal(t, 33, tally.Options[1].Percent)
	assert.Equal(t, 33, tally.Options[2].Percent)
}

func TestComputeTally_Empty(t *testing.T) {
	l := NewLedger(2)

	tally := ComputeTally(l, []string{"a", "b"})

	assert.Equal(t, 0, tally.TotalUniqueVoters)
	assert.Equal(t, 0, tally.TotalSelections)
	for _, opt := range tally.Options {
		assert.Equal(t, 0, opt.Percent)
		assert.Equal(t, strings.Repeat("▱", 12), opt.Bar)
	}
}

func TestComputeTally_PercentagesUseUniqueVoters(t *testing.T) {
	// one voter on two options yields 100% on each, not 50%
	l := NewLedger(2)
	require.NoError(t, l.Submit("alice", []int{0, 1}, 2))

	tally := ComputeTally(l, []string{"a", "b"})

	assert.Equal(t, 1, tally.TotalUniqueVoters)
	assert.Equal(t, 100, tally.Options[0].Percent)
	assert.Equal(t, 100, tally.Options[1].Percent)
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
	}{
		{0, 0},
		{4, 0},
		{5, 1},
		{50, 6},
		{67, 8},
		{100, 12},
		{-10, 0},
		{150, 12},
	}

	for _, tt := range tests {
		bar := RenderBar(tt.percent)
		assert.Equal(t, strings.Repeat("▰", tt.filled)+strings.Repeat("▱", 12-tt.filled), bar,
			"percent %d", tt.percent)
	}
}
