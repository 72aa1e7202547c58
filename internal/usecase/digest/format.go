package digest

import (
	"fmt"
	"strings"

	"world-digest/internal/domain/entity"
)

// FormatStoriesHTML renders summarized stories as the digest body:
// numbered bold headlines, each followed by its summary paragraph.
func FormatStoriesHTML(stories []entity.Story) string {
	parts := make([]string, 0, len(stories))
	for i, story := range stories {
		parts = append(parts, fmt.Sprintf("<b>%d. %s</b>\n%s", i+1, story.Headline, story.Summary))
	}
	return strings.Join(parts, "\n\n")
}
