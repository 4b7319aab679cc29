package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHexColor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#3498DB", "#3498db"},
		{"3498db", "#3498db"},
		{"0x3498DB", "#3498db"},
		{"0X3498DB", "#3498db"},
		{"  #3498db  ", "#3498db"},
		{"3498dbff", "#3498db"}, // alpha channel dropped
		{"#abc", ""},
		{"zzzzzz", ""},
		{"", ""},
		{"#12345", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHexColor(tt.input), "input %q", tt.input)
	}
}

func TestSplitTimes(t *testing.T) {
	assert.Equal(t, []string{"Mon 6pm", "Tue 7pm"}, SplitTimes("Mon 6pm, Tue 7pm"))
	assert.Equal(t, []string{"a", "b"}, SplitTimes(" a ,, b ,"))
	assert.Nil(t, SplitTimes(""))
	assert.Nil(t, SplitTimes(" , ,, "))
}

func TestClampMaxVotes(t *testing.T) {
	assert.Equal(t, 1, ClampMaxVotes(0, 5))
	assert.Equal(t, 1, ClampMaxVotes(-3, 5))
	assert.Equal(t, 3, ClampMaxVotes(3, 5))
	assert.Equal(t, 5, ClampMaxVotes(10, 5))
	assert.Equal(t, 1, ClampMaxVotes(2, 1))
}
