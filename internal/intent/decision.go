package intent

import "strings"

// Source identifies which extraction path produced a turn's action.
type Source int

const (
	// NoAction means neither extraction path fired this turn.
	NoAction Source = iota

	// TagAction means the model's intent tag produced the action.
	// Authoritative; always wins over the fallback.
	TagAction

	// FallbackAction means the keyword matcher plus amount extractor
	// produced the action.
	FallbackAction
)

// Action is the structured command handed to the simulation UI.
type Action struct {
	Type       string   `json:"type"`
	ScenarioID string   `json:"scenarioId"`
	Params     ParamSet `json:"params,omitempty"`
}

// ActionOpenConfig opens the scenario configuration panel pre-filled with
// the extracted parameters.
const ActionOpenConfig = "OPEN_CONFIG"

// FallbackAck replaces the visible message when stripping the tag leaves the
// assistant turn empty.
const FallbackAck = "I've prepared that for you."

// Signals carries the per-turn evidence the decision runs on.
type Signals struct {
	// AssistantText is the model's raw output for this turn.
	AssistantText string

	// MatchedScenario is the keyword matcher's best scenario, or empty.
	MatchedScenario string

	// Amount is the extracted monetary amount; AmountFound reports whether
	// any notation matched.
	Amount      int
	AmountFound bool
}

// Outcome is what a single turn resolves to.
type Outcome struct {
	Source     Source
	ScenarioID string
	Params     ParamSet
	Action     *Action

	// CleanMessage is the user-visible assistant message, tags removed.
	// Never empty when an action was produced.
	CleanMessage string
}

// Confidence is a coarse binary signal: 0.9 when an intent with parameters
// was produced this turn, else 0.0. Not a calibrated probability.
func (o Outcome) Confidence() float64 {
	if o.ScenarioID != "" && len(o.Params) > 0 {
		return 0.9
	}
	return 0.0
}

// Decide resolves one turn. At most one action is emitted regardless of how
// many signals fired:
//
//   - a parsed intent tag always wins,
//   - otherwise matcher + amount fall back, but only when the assistant is
//     not currently asking a clarifying question (no "?" in its output),
//   - otherwise no action.
func Decide(sig Signals) Outcome {
	if tag, ok := ParseTag(sig.AssistantText); ok {
		params := Normalize(tag.ScenarioID, tag.Params)
		out := Outcome{
			Source:       TagAction,
			ScenarioID:   tag.ScenarioID,
			Params:       params,
			CleanMessage: StripTag(sig.AssistantText),
			Action: &Action{
				Type:       ActionOpenConfig,
				ScenarioID: tag.ScenarioID,
				Params:     params,
			},
		}
		if out.CleanMessage == "" {
			out.CleanMessage = FallbackAck
		}
		return out
	}

	asking := strings.Contains(sig.AssistantText, "?")
	if sig.MatchedScenario != "" && sig.AmountFound && sig.Amount != 0 && !asking {
		params := Normalize(sig.MatchedScenario, ParamSet{"targetAmount": sig.Amount})
		return Outcome{
			Source:       FallbackAction,
			ScenarioID:   sig.MatchedScenario,
			Params:       params,
			CleanMessage: sig.AssistantText,
			Action: &Action{
				Type:       ActionOpenConfig,
				ScenarioID: sig.MatchedScenario,
				Params:     params,
			},
		}
	}

	return Outcome{Source: NoAction, CleanMessage: sig.AssistantText}
}
