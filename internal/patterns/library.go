// Package patterns provides the scenario pattern library and keyword matcher.
//
// The library is a static table of financial-planning scenarios grouped by
// theme. Each scenario carries the keyword triggers used for detection and the
// ordered parameter names the simulation UI expects. It is loaded once at
// startup and read-only afterwards.
package patterns

import (
	_ "embed"
	"regexp"
	"sort"

	json "github.com/goccy/go-json"

	apperrors "github.com/moola-ai/coach/internal/errors"
)

//go:embed scenarios.json
var rawScenarios []byte

// ScenarioDefinition describes one known scenario.
type ScenarioDefinition struct {
	ID       string
	Theme    string
	Keywords []string
	Params   []string

	// Compiled whole-word triggers, same order as Keywords.
	triggers []*regexp.Regexp
}

// Library holds every known scenario, keyed by id.
type Library struct {
	scenarios map[string]*ScenarioDefinition

	// ids is the fixed iteration order for matching: lexicographic by
	// scenario id, so score ties always resolve the same way.
	ids []string

	disabled bool
}

// scenarioConfig is the on-disk shape: theme -> id -> config.
type scenarioConfig struct {
	Keywords []string `json:"keywords"`
	Params   []string `json:"params"`
}

// Load parses the embedded scenario table and compiles its triggers.
func Load() (*Library, error) {
	return loadFrom(rawScenarios)
}

func loadFrom(data []byte) (*Library, error) {
	var table map[string]map[string]scenarioConfig
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePatternsLoadFailed,
			"failed to parse scenario pattern table", apperrors.CategorySystem)
	}

	lib := &Library{scenarios: make(map[string]*ScenarioDefinition)}

	for theme, scenarios := range table {
		for id, cfg := range scenarios {
			def := &ScenarioDefinition{
				ID:       id,
				Theme:    theme,
				Keywords: cfg.Keywords,
				Params:   cfg.Params,
			}
			for _, kw := range cfg.Keywords {
				re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.CodePatternsLoadFailed,
						"bad keyword trigger for "+id, apperrors.CategorySystem)
				}
				def.triggers = append(def.triggers, re)
			}
			lib.scenarios[id] = def
			lib.ids = append(lib.ids, id)
		}
	}

	sort.Strings(lib.ids)
	return lib, nil
}

// Disabled returns a library that never matches. Used when the pattern table
// fails to load so the service degrades instead of crashing.
func Disabled() *Library {
	return &Library{disabled: true}
}

// IsDisabled reports whether matching is disabled.
func (l *Library) IsDisabled() bool {
	return l == nil || l.disabled
}

// Get returns the definition for a scenario id.
func (l *Library) Get(id string) (*ScenarioDefinition, bool) {
	if l == nil {
		return nil, false
	}
	def, ok := l.scenarios[id]
	return def, ok
}

// Params returns the expected parameter names for a scenario.
func (l *Library) Params(id string) []string {
	if def, ok := l.Get(id); ok {
		return def.Params
	}
	return nil
}

// Theme returns the theme grouping for a scenario.
func (l *Library) Theme(id string) string {
	if def, ok := l.Get(id); ok {
		return def.Theme
	}
	return ""
}

// IDs returns every scenario id in matching order.
func (l *Library) IDs() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// ByTheme returns every scenario id in the given theme.
func (l *Library) ByTheme(theme string) []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, id := range l.ids {
		if l.scenarios[id].Theme == theme {
			out = append(out, id)
		}
	}
	return out
}

// Related suggests other scenarios from the same theme, e.g. "childbirth"
// might suggest "education_fund".
func (l *Library) Related(id string, limit int) []string {
	theme := l.Theme(id)
	if theme == "" {
		return nil
	}

	var out []string
	for _, other := range l.ByTheme(theme) {
		if other == id {
			continue
		}
		out = append(out, other)
		if len(out) >= limit {
			break
		}
	}
	return out
}
