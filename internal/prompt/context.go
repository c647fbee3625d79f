package prompt

import (
	"fmt"
	"strings"
)

// Profile is the user's financial profile as the simulation UI knows it.
type Profile struct {
	Name    string `json:"name,omitempty"`
	Age     int    `json:"age,omitempty"`
	Income  int    `json:"income,omitempty"`
	Savings int    `json:"savings,omitempty"`
}

// Solvency is the simulation's financial health check for the current plan.
type Solvency struct {
	IsSolvent        bool    `json:"isSolvent"`
	MaxDeficit       float64 `json:"maxDeficit,omitempty"`
	FirstDeficitDate string  `json:"firstDeficitDate,omitempty"`
	MonthlySurplus   float64 `json:"monthlySurplus,omitempty"`
}

// ActiveScenario is one goal already configured in the simulation.
type ActiveScenario struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// SimContext is the simulation state sent alongside a chat message so the
// coach can give context-aware answers.
type SimContext struct {
	Profile         *Profile         `json:"profile,omitempty"`
	Solvency        *Solvency        `json:"solvency,omitempty"`
	ActiveScenarios []ActiveScenario `json:"activeScenarios,omitempty"`
}

// maxContextScenarios caps how many active goals are listed, to avoid token
// bloat on busy plans.
const maxContextScenarios = 5

// BuildContextPrompt renders the simulation state as an extra system turn.
// Returns empty when there is nothing worth telling the model.
func BuildContextPrompt(ctx *SimContext) string {
	if ctx == nil {
		return ""
	}

	var sb strings.Builder

	if p := ctx.Profile; p != nil && (p.Name != "" || p.Age != 0 || p.Income != 0 || p.Savings != 0) {
		sb.WriteString("CURRENT USER CONTEXT:\n")
		if p.Name != "" {
			fmt.Fprintf(&sb, "Name: %s\n", p.Name)
		}
		if p.Age != 0 {
			fmt.Fprintf(&sb, "Age: %d\n", p.Age)
		}
		if p.Income != 0 {
			fmt.Fprintf(&sb, "Annual Income: £%d\n", p.Income)
		}
		if p.Savings != 0 {
			fmt.Fprintf(&sb, "Current Savings: £%d\n", p.Savings)
		}
	}

	if s := ctx.Solvency; s != nil {
		sb.WriteString("\nFINANCIAL HEALTH CHECK:\n")
		if !s.IsSolvent {
			fmt.Fprintf(&sb, "INSOLVENCY ALERT: User runs out of money (Deficit: £%.0f).\n", s.MaxDeficit)
			if s.FirstDeficitDate != "" {
				fmt.Fprintf(&sb, "   - Bankruptcy projected around: %s\n", s.FirstDeficitDate)
			}
		} else {
			sb.WriteString("Solvency Check: PASS (Plan is sustainable)\n")
		}
		fmt.Fprintf(&sb, "   - Avg Monthly Surplus: £%.0f\n", s.MonthlySurplus)
	}

	if len(ctx.ActiveScenarios) > 0 {
		fmt.Fprintf(&sb, "\nActive Goals (%d):\n", len(ctx.ActiveScenarios))
		scenarios := ctx.ActiveScenarios
		if len(scenarios) > maxContextScenarios {
			scenarios = scenarios[:maxContextScenarios]
		}
		for _, s := range scenarios {
			fmt.Fprintf(&sb, "- %s: %v\n", s.Type, s.Params)
		}
	}

	return strings.TrimSpace(sb.String())
}

// Thresholds for profile-driven coaching tips.
const (
	lisaMaxAge          = 40
	higherRateThreshold = 50270
	lowSavingsThreshold = 3000
	isaAllowance        = 20000
)

// ContextualAdvice generates personalized coaching tips from the profile.
// Returns empty when no tip applies.
func ContextualAdvice(profile *Profile) string {
	if profile == nil {
		return ""
	}

	var advice []string

	if profile.Age >= 18 && profile.Age < lisaMaxAge {
		advice = append(advice, "- LISA Opportunity: You are under 40. Consider opening a Lifetime ISA (LISA) for a 25% govt bonus towards a first home or retirement.")
	}

	if profile.Income > higherRateThreshold {
		advice = append(advice, "- Tax Efficiency: You are a higher-rate taxpayer. Increasing pension contributions can claim back 40% tax relief.")
	}

	if profile.Savings < lowSavingsThreshold {
		advice = append(advice, "- Emergency Fund: Your savings seem low. Prioritize building a 3-6 month emergency fund before investing.")
	} else if profile.Savings > isaAllowance {
		advice = append(advice, "- ISA Limits: You have significant savings. Ensure you utilize your £20k ISA allowance to maximize tax-free growth.")
	}

	if len(advice) == 0 {
		return ""
	}

	return "PERSONALIZED COACHING TIPS (Mention these if relevant to user query):\n" + strings.Join(advice, "\n")
}
