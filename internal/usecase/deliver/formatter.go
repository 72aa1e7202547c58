package deliver

import (
	"fmt"
	"strings"
	"time"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/utils/text"
	"world-digest/internal/utils/timeperiod"
)

const (
	// maxMessageRunes is the Telegram sendMessage text limit.
	maxMessageRunes = 4096
	// Caps on list sections so the header area stays compact.
	maxTopicsShown         = 5
	maxSourcesShown        = 5
	maxSourcesShownGlobal  = 8
	truncationMarker       = "\n\n<i>... (сокращено)</i>"
	defaultRegionEmoji     = "\U0001F4F0" // 📰
	globalRegionEmoji      = "\U0001F30D" // 🌍
	sectionSeparatorLength = 20
)

// Formatter renders digests as Telegram HTML messages.
type Formatter struct {
	cfg       *config.Config
	separator string
}

// NewFormatter creates a Formatter bound to the region configuration.
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		cfg:       cfg,
		separator: "\n" + strings.Repeat("━", sectionSeparatorLength) + "\n",
	}
}

// Format renders a digest, choosing the global or regional layout.
func (f *Formatter) Format(d *entity.Digest) string {
	if d.IsGlobal() {
		return f.formatGlobal(d)
	}
	return f.formatRegional(d)
}

func (f *Formatter) formatRegional(d *entity.Digest) string {
	name := d.RegionName
	if name == "" {
		name = d.Region
	}

	header := fmt.Sprintf("%s <b>%s | %s</b>\n<i>%s %s</i>",
		f.regionEmoji(d.Region),
		name,
		timeperiod.LabelRU(d.TimePeriod),
		timeperiod.FormatDateRU(f.localTime(d.CreatedAt), true),
		f.timezoneAbbr(d.CreatedAt))

	message := header +
		f.separator + f.topicsSection(d.KeyTopics) +
		f.separator + "\n\n\U0001F4F0 <b>Главные события:</b>\n\n" + d.Summary +
		f.separator + f.statsSection(d) +
		f.sourcesSection(d.SourcesUsed, maxSourcesShown)

	return truncateMessage(message)
}

func (f *Formatter) formatGlobal(d *entity.Digest) string {
	header := fmt.Sprintf("%s <b>МИРОВОЙ ДАЙДЖЕСТ | %s</b>\n<i>%s</i>",
		globalRegionEmoji,
		timeperiod.LabelRU(d.TimePeriod),
		timeperiod.FormatDateRU(f.localTime(d.CreatedAt), true))

	stats := fmt.Sprintf("\n\n\U0001F4CA <b>Статистика:</b>\n• Регионов: %d | Статей: %d",
		len(f.cfg.Regions), d.ArticleCount)

	message := header +
		f.separator + f.topicsSection(d.KeyTopics) +
		f.separator + "\n\n\U0001F525 <b>ГЛАВНЫЕ МИРОВЫЕ СОБЫТИЯ:</b>\n\n" + d.Summary +
		f.separator + stats +
		f.sourcesSection(d.SourcesUsed, maxSourcesShownGlobal)

	return truncateMessage(message)
}

func (f *Formatter) topicsSection(topics []string) string {
	if len(topics) == 0 {
		return ""
	}
	if len(topics) > maxTopicsShown {
		topics = topics[:maxTopicsShown]
	}
	lines := make([]string, len(topics))
	for i, topic := range topics {
		lines[i] = "• " + topic
	}
	return "\n\n\U0001F4CC <b>Ключевые темы:</b>\n" + strings.Join(lines, "\n")
}

func (f *Formatter) statsSection(d *entity.Digest) string {
	return fmt.Sprintf("\n\n\U0001F4CA <b>Статистика:</b>\n• Источников: %d | Статей: %d",
		len(d.SourcesUsed), d.ArticleCount)
}

func (f *Formatter) sourcesSection(sources []string, limit int) string {
	if len(sources) == 0 {
		return ""
	}
	shown := sources
	if len(shown) > limit {
		shown = shown[:limit]
	}
	str := strings.Join(shown, ", ")
	if extra := len(sources) - len(shown); extra > 0 {
		str += fmt.Sprintf(" (+%d)", extra)
	}
	return "\n\n<i>Источники: " + str + "</i>"
}

func (f *Formatter) regionEmoji(region string) string {
	if info, ok := f.cfg.Region(region); ok && info.Emoji != "" {
		return info.Emoji
	}
	return defaultRegionEmoji
}

func (f *Formatter) localTime(t time.Time) time.Time {
	loc, err := time.LoadLocation(f.cfg.Scheduler.Timezone)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}

// timezoneAbbr returns the scheduler timezone abbreviation, e.g. "MSK".
func (f *Formatter) timezoneAbbr(t time.Time) string {
	return f.localTime(t).Format("MST")
}

// truncateMessage cuts an oversized message at a newline boundary and appends
// a continuation marker, keeping the result within the Telegram limit.
func truncateMessage(message string) string {
	if text.CountRunes(message) <= maxMessageRunes {
		return message
	}

	runes := []rune(message)
	cut := maxMessageRunes - text.CountRunes(truncationMarker)
	truncated := runes[:cut]

	// Prefer cutting at a line break, but not so early the message loses
	// most of its body.
	for i := len(truncated) - 1; i > maxMessageRunes/2; i-- {
		if truncated[i] == '\n' {
			truncated = truncated[:i]
			break
		}
	}

	return string(truncated) + truncationMarker
}
