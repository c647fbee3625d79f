package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moola-ai/coach/internal/patterns"
)

func testBuilder(t *testing.T, mode Mode) *Builder {
	t.Helper()

	lib, err := patterns.Load()
	require.NoError(t, err)

	b := NewBuilder(mode, lib)
	b.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return b
}

func TestBuildSystemPromptSections(t *testing.T) {
	b := testBuilder(t, ModeGoals)
	got := b.BuildSystemPrompt(nil)

	assert.Contains(t, got, "UK financial planning assistant")
	assert.Contains(t, got, "CURRENT DATE: 2026-03-01")
	assert.Contains(t, got, "PERSONA: GOAL SETTER")
	assert.Contains(t, got, "FINANCIAL KNOWLEDGE BASE:")
	assert.Contains(t, got, "ISA (Individual Savings Account):")
	assert.Contains(t, got, "SCENARIO INSTRUCTIONS")
	assert.Contains(t, got, "buy_home")

	// Tag grammar must survive verbatim in the instructions.
	assert.Contains(t, got, "[INTENT:scenario_id|param:val|...]")
}

func TestPersonaSelection(t *testing.T) {
	assert.Contains(t, testBuilder(t, ModeHealth).BuildSystemPrompt(nil), "PERSONA: HEALTH OPTIMIZER")
	assert.Contains(t, testBuilder(t, ModeEvents).BuildSystemPrompt(nil), "PERSONA: STRESS TESTER")
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeGoals, ParseMode(""))
	assert.Equal(t, ModeGoals, ParseMode("nonsense"))
	assert.Equal(t, ModeHealth, ParseMode("health"))
	assert.Equal(t, ModeEvents, ParseMode("events"))
}

func TestScenarioKBListsEveryScenario(t *testing.T) {
	lib, err := patterns.Load()
	require.NoError(t, err)

	kb := ScenarioKB(lib)
	for _, id := range lib.IDs() {
		assert.Contains(t, kb, "- "+id+":")
	}

	assert.Empty(t, ScenarioKB(patterns.Disabled()))
}

func TestContextualAdvice(t *testing.T) {
	tests := []struct {
		name     string
		profile  *Profile
		contains []string
		empty    bool
	}{
		{name: "nil profile", profile: nil, empty: true},
		{
			name:     "young saver gets LISA tip",
			profile:  &Profile{Age: 28, Savings: 5000},
			contains: []string{"LISA Opportunity"},
		},
		{
			name:     "higher-rate taxpayer",
			profile:  &Profile{Age: 45, Income: 80000, Savings: 10000},
			contains: []string{"Tax Efficiency"},
		},
		{
			name:     "low savings",
			profile:  &Profile{Age: 50, Savings: 500},
			contains: []string{"Emergency Fund"},
		},
		{
			name:     "large savings",
			profile:  &Profile{Age: 50, Savings: 50000},
			contains: []string{"ISA Limits"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContextualAdvice(tt.profile)
			if tt.empty {
				assert.Empty(t, got)
				return
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestBuildContextPrompt(t *testing.T) {
	ctx := &SimContext{
		Profile: &Profile{Name: "Sam", Age: 34, Income: 52000, Savings: 12000},
		Solvency: &Solvency{
			IsSolvent:        false,
			MaxDeficit:       15000,
			FirstDeficitDate: "2031-04",
			MonthlySurplus:   220,
		},
		ActiveScenarios: []ActiveScenario{
			{Type: "buy_home", Params: map[string]any{"propertyPrice": 300000}},
		},
	}

	got := BuildContextPrompt(ctx)
	assert.Contains(t, got, "Name: Sam")
	assert.Contains(t, got, "Annual Income: £52000")
	assert.Contains(t, got, "INSOLVENCY ALERT")
	assert.Contains(t, got, "2031-04")
	assert.Contains(t, got, "Active Goals (1)")
	assert.Contains(t, got, "buy_home")
}

func TestBuildContextPromptSolvent(t *testing.T) {
	got := BuildContextPrompt(&SimContext{
		Solvency: &Solvency{IsSolvent: true, MonthlySurplus: 800},
	})
	assert.Contains(t, got, "Solvency Check: PASS")
	assert.NotContains(t, got, "INSOLVENCY")
}

func TestBuildContextPromptEmpty(t *testing.T) {
	assert.Empty(t, BuildContextPrompt(nil))
	assert.Empty(t, BuildContextPrompt(&SimContext{}))
}

func TestBuildContextPromptCapsActiveGoals(t *testing.T) {
	ctx := &SimContext{}
	for i := 0; i < 8; i++ {
		ctx.ActiveScenarios = append(ctx.ActiveScenarios, ActiveScenario{Type: "emergency_fund"})
	}

	got := BuildContextPrompt(ctx)
	assert.Contains(t, got, "Active Goals (8)")
	assert.Equal(t, maxContextScenarios, strings.Count(got, "- emergency_fund"))
}
