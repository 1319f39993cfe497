package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicCounter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty text floors at one", input: "", expected: 1},
		{name: "short text floors at one", input: "ab", expected: 1},
		{name: "three bytes per token", input: "abcdef", expected: 2},
		{name: "longer text", input: strings.Repeat("x", 300), expected: 100},
	}

	var counter HeuristicCounter
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, counter.Count(tt.input))
		})
	}

	assert.False(t, counter.Precise())
}

func TestTiktokenCounter(t *testing.T) {
	counter, err := NewTiktokenCounter()
	if err != nil {
		t.Skipf("cl100k_base encoding unavailable: %v", err)
	}

	assert.True(t, counter.Precise())
	assert.Equal(t, 0, counter.Count(""))
	assert.Equal(t, 2, counter.Count("hello world"))

	// Statutory text tokenizes denser than the 3-bytes-per-token heuristic
	// assumes, so precise counts land at or under the heuristic estimate.
	text := "Gross income means all income from whatever source derived."
	precise := counter.Count(text)
	assert.Greater(t, precise, 0)
	assert.LessOrEqual(t, precise, HeuristicCounter{}.Count(text))
}

func TestNewCounter(t *testing.T) {
	counter := NewCounter(nil)
	require.NotNil(t, counter)
	assert.GreaterOrEqual(t, counter.Count("some text"), 1)
}
