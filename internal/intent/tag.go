package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// The model is instructed to emit at most one tag of the form
// [INTENT:<scenario_id>|key:value|key:value|...] when it judges all required
// parameters are known. The grammar is part of the prompt contract and must
// not change.
var (
	tagPattern   = regexp.MustCompile(`\[INTENT:([^\]]+)\]`)
	tagStripPatt = regexp.MustCompile(`\s*\[INTENT:[^\]]+\]`)
)

// ParamSet maps a parameter name to a typed value: int, float64 or string.
type ParamSet map[string]any

// Tag is a parsed intent tag: the scenario id plus its coerced parameters.
type Tag struct {
	ScenarioID string
	Params     ParamSet
}

// ParseTag extracts the first intent tag from model output. The scenario id
// is everything before the first pipe; each remaining pipe-delimited segment
// splits on its first colon into a key/value pair.
func ParseTag(text string) (Tag, bool) {
	m := tagPattern.FindStringSubmatch(text)
	if m == nil {
		return Tag{}, false
	}

	parts := strings.Split(m[1], "|")
	tag := Tag{
		ScenarioID: parts[0],
		Params:     make(ParamSet),
	}

	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		tag.Params[key] = coerceValue(value)
	}

	return tag, true
}

// StripTag removes every intent tag (and the whitespace before it) from the
// model output, leaving the user-visible message.
func StripTag(text string) string {
	return strings.TrimSpace(tagStripPatt.ReplaceAllString(text, ""))
}

// coerceValue types a raw tag value. Coercion is best-effort and never
// fails: anything unparseable stays a string.
//
// Order matters: a 10-character hyphenated value is a date and kept verbatim,
// k/m suffixes scale to whole units, then float, then integer.
func coerceValue(value string) any {
	lower := strings.ToLower(value)

	switch {
	case strings.Contains(value, "-") && len(value) == 10:
		return value

	case strings.HasSuffix(lower, "k"):
		if v, err := strconv.ParseFloat(lower[:len(lower)-1], 64); err == nil {
			return int(v * 1_000)
		}
		return value

	case strings.HasSuffix(lower, "m"):
		if v, err := strconv.ParseFloat(lower[:len(lower)-1], 64); err == nil {
			return int(v * 1_000_000)
		}
		return value

	case strings.Contains(value, "."):
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
		return value

	default:
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
		return value
	}
}
