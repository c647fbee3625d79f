// Package intent turns model output and conversation text into structured
// scenario intents: amount extraction, intent-tag parsing, parameter
// normalization and the per-turn action decision.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount notations, tried in priority order within each turn.
var (
	// 1.5m, £1m, 2 million
	amountMillions = regexp.MustCompile(`£?\s*(\d+(?:\.\d+)?)\s*m(?:illion)?`)

	// 300k, £300k
	amountThousands = regexp.MustCompile(`£?\s*(\d+(?:\.\d+)?)\s*k`)

	// £300,000, £1,500,000 or £2000
	amountCurrency = regexp.MustCompile(`£\s*(\d{1,3}(?:,\d{3})+|\d+)`)

	// plain number preceded by a contextual keyword: "target of 5000"
	amountContextual = regexp.MustCompile(`(?:amount|target|save|need)\s+(?:of\s+)?£?\s*(\d+(?:,\d{3})*)`)
)

// ExtractAmount scans user turns, newest first, for a monetary amount in one
// of four notations. The first matching pattern in the first matching turn
// wins and scanning stops immediately, so a newer ambiguous mention always
// beats an older, possibly clearer one.
func ExtractAmount(turnsNewestFirst []string) (int, bool) {
	for _, turn := range turnsNewestFirst {
		msg := strings.ToLower(turn)

		if m := amountMillions.FindStringSubmatch(msg); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return int(v * 1_000_000), true
			}
		} else if m := amountThousands.FindStringSubmatch(msg); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return int(v * 1_000), true
			}
		} else if m := amountCurrency.FindStringSubmatch(msg); m != nil {
			v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err == nil {
				return v, true
			}
		} else if m := amountContextual.FindStringSubmatch(msg); m != nil {
			v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err == nil {
				return v, true
			}
		}
	}

	return 0, false
}
