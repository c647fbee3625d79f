package patterns

import "strings"

// MatchResult is a scored scenario match.
type MatchResult struct {
	ScenarioID string
	Confidence float64
}

// Threshold is the minimum accepted match score. It sits just under the 0.5
// base score so a single keyword hit passes but generic wording does not.
const Threshold = 0.45

// historyWindow is how many prior user turns feed the search window.
const historyWindow = 3

// Match scores the current text (plus up to the last three prior user turns)
// against every scenario and returns the best match at or above Threshold.
// Ties keep the lexicographically smallest scenario id.
func (l *Library) Match(text string, history []string) (MatchResult, bool) {
	if l.IsDisabled() {
		return MatchResult{}, false
	}

	search := strings.ToLower(text)
	if len(history) > 0 {
		recent := history
		if len(recent) > historyWindow {
			recent = recent[len(recent)-historyWindow:]
		}
		parts := make([]string, 0, len(recent)+1)
		for _, h := range recent {
			parts = append(parts, strings.ToLower(h))
		}
		parts = append(parts, search)
		search = strings.Join(parts, " ")
	}

	var best MatchResult
	for _, id := range l.ids {
		score := l.scenarios[id].score(search)
		if score > best.Confidence {
			best = MatchResult{ScenarioID: id, Confidence: score}
		}
	}

	if best.Confidence >= Threshold {
		return best, true
	}
	return MatchResult{}, false
}

// score computes the weighted keyword score for a search window:
// 0.5 base for any whole-word hit, +0.3 if any matched trigger is a
// multi-word phrase, +0.2 for two or more distinct hits, capped at 1.0.
func (d *ScenarioDefinition) score(search string) float64 {
	if len(d.triggers) == 0 {
		return 0
	}

	matched := 0
	phrase := false
	for i, re := range d.triggers {
		if !re.MatchString(search) {
			continue
		}
		matched++
		if strings.Contains(d.Keywords[i], " ") {
			phrase = true
		}
	}

	if matched == 0 {
		return 0
	}

	score := 0.5
	if phrase {
		score += 0.3
	}
	if matched >= 2 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
