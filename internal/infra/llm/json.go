package llm

import (
	"encoding/json"
	"strings"

	"world-digest/internal/domain/entity"
	"world-digest/internal/utils/text"
)

// fallbackSummaryLimit caps how much raw model output is kept when JSON
// parsing fails and the response is used verbatim.
const fallbackSummaryLimit = 500

// ExtractJSON strips Markdown code fences from a model response. Models in
// JSON mode still occasionally wrap the object in ```json fences.
func ExtractJSON(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseSummary decodes a regional summary response. On malformed JSON it
// degrades to a single story carrying the raw response, so a bad model reply
// never loses the whole digest run.
func ParseSummary(response string) *entity.Summary {
	var summary entity.Summary
	if err := json.Unmarshal([]byte(ExtractJSON(response)), &summary); err != nil {
		return &entity.Summary{
			KeyTopics: []string{},
			Stories: []entity.Story{{
				Headline: "Error",
				Summary:  text.TruncateRunes(response, fallbackSummaryLimit, ""),
			}},
		}
	}
	return &summary
}

// ParseGlobalSummary decodes a global digest response, with the same
// degrade-to-raw-text behavior as ParseSummary.
func ParseGlobalSummary(response string) *entity.GlobalSummary {
	var summary entity.GlobalSummary
	if err := json.Unmarshal([]byte(ExtractJSON(response)), &summary); err != nil {
		return &entity.GlobalSummary{
			KeyTopics: []string{"World Events"},
			Events: []entity.GlobalEvent{{
				Headline:   "Global News Summary",
				Summary:    text.TruncateRunes(response, fallbackSummaryLimit, ""),
				Regions:    []string{entity.GlobalRegion},
				Importance: "high",
			}},
		}
	}
	return &summary
}
