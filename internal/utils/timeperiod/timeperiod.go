// Package timeperiod classifies wall-clock hours into delivery periods and
// formats timestamps for the Russian-language digest output.
package timeperiod

import (
	"fmt"
	"time"
)

// Delivery periods for a region's local time.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
)

// ForHour returns the delivery period for an hour of day:
// 05-11 morning, 12-17 afternoon, everything else evening.
func ForHour(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// In returns the current delivery period in the given location.
func In(loc *time.Location, now time.Time) string {
	return ForHour(now.In(loc).Hour())
}

var periodLabelsRU = map[string]string{
	Morning:   "Утренний дайджест",
	Afternoon: "Дневной дайджест",
	Evening:   "Вечерний дайджест",
}

// LabelRU returns the Russian display label for a period, with a generic
// fallback for unknown values.
func LabelRU(period string) string {
	if label, ok := periodLabelsRU[period]; ok {
		return label
	}
	return "Дайджест"
}

var monthsRU = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDateRU renders a timestamp in Russian convention,
// e.g. "26 августа 2026, 18:05".
func FormatDateRU(t time.Time, includeTime bool) string {
	date := fmt.Sprintf("%d %s %d", t.Day(), monthsRU[t.Month()-1], t.Year())
	if !includeTime {
		return date
	}
	return fmt.Sprintf("%s, %02d:%02d", date, t.Hour(), t.Minute())
}
