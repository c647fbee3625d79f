package prompt

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

//go:embed financial_knowledge.json
var rawFinancialKB []byte

// financialFact is one entry in the embedded UK financial knowledge base.
type financialFact struct {
	Limit     string `json:"limit,omitempty"`
	TaxRelief string `json:"tax_relief,omitempty"`
	CoachTip  string `json:"coach_tip,omitempty"`
	Source    string `json:"source,omitempty"`
}

// FinancialKB renders the embedded knowledge base as prompt text, one line
// per topic, sorted for stable output. A broken table yields an empty KB
// rather than an error; the coach still works, just less informed.
func FinancialKB() string {
	var table map[string]financialFact
	if err := json.Unmarshal(rawFinancialKB, &table); err != nil {
		return ""
	}

	topics := make([]string, 0, len(table))
	for topic := range table {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	var lines []string
	for _, topic := range topics {
		fact := table[topic]
		source := ""
		if fact.Source != "" {
			source = fmt.Sprintf(" (Source: %s)", fact.Source)
		}
		lines = append(lines, fmt.Sprintf("%s: %s (Fact: %s %s)%s",
			topic, fact.CoachTip, fact.Limit, fact.TaxRelief, source))
	}
	return strings.Join(lines, "\n")
}
