package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmountNotations(t *testing.T) {
	tests := []struct {
		name string
		turn string
		want int
	}{
		{name: "millions with symbol", turn: "my budget is £1.5m", want: 1500000},
		{name: "millions spelled out", turn: "about 2 million", want: 2000000},
		{name: "thousands", turn: "300k", want: 300000},
		{name: "thousands with symbol", turn: "maybe £250k", want: 250000},
		{name: "currency with separators", turn: "the house is £1,500,000", want: 1500000},
		{name: "currency plain", turn: "it costs £2000", want: 2000},
		{name: "target with symbol", turn: "a target of £5000", want: 5000},
		{name: "contextual keyword", turn: "a target of 5000", want: 5000},
		{name: "contextual with separators", turn: "I need 12,500 for this", want: 12500},
		{name: "uppercase suffix", turn: "around 40K", want: 40000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAmount([]string{tt.turn})
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAmountNoMatch(t *testing.T) {
	turns := []string{"hello there", "what can you do for me"}
	_, ok := ExtractAmount(turns)
	assert.False(t, ok)
}

func TestExtractAmountRecencyWins(t *testing.T) {
	// Newest first: the £2000 mention must win over the older £500.
	turns := []string{"actually make it £2000", "I need £500"}
	got, ok := ExtractAmount(turns)
	require.True(t, ok)
	assert.Equal(t, 2000, got)
}

func TestExtractAmountStopsAtFirstMatchingTurn(t *testing.T) {
	// The older turn has a clearer amount, but scanning must stop at the
	// first turn with any match.
	turns := []string{"500k I think", "the exact figure is £475,250"}
	got, ok := ExtractAmount(turns)
	require.True(t, ok)
	assert.Equal(t, 500000, got)
}

func TestExtractAmountPatternPriorityWithinTurn(t *testing.T) {
	// Millions outranks thousands when both notations appear in one turn.
	got, ok := ExtractAmount([]string{"either 1.5m or 300k"})
	require.True(t, ok)
	assert.Equal(t, 1500000, got)
}

func TestExtractAmountSkipsTurnsWithoutAmounts(t *testing.T) {
	turns := []string{"sounds good", "yes please", "save 8000 for me"}
	got, ok := ExtractAmount(turns)
	require.True(t, ok)
	assert.Equal(t, 8000, got)
}

func TestExtractAmountDeterministic(t *testing.T) {
	turns := []string{"maybe £250k", "I need £500"}
	first, firstOK := ExtractAmount(turns)
	for i := 0; i < 10; i++ {
		got, ok := ExtractAmount(turns)
		assert.Equal(t, firstOK, ok)
		assert.Equal(t, first, got)
	}
}
