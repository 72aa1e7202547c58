package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a cron expression using the robfig/cron/v3 parser.
//
// The cron expression must follow the standard five-field format:
//   - "minute hour day month weekday"
//   - Example: "0 8 * * *" (every day at 8:00)
//   - Example: "0 */6 * * *" (every 6 hours)
//
// Validation tool: https://crontab.guru/
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	return nil
}

// ValidateTimezone validates a timezone string by attempting to load it
// using the standard library time.LoadLocation function.
//
// The timezone must be a valid IANA timezone name ("UTC", "Europe/Belgrade",
// "Asia/Tbilisi"). Loading depends on timezone data being available on the
// system; a missing tzdata package fails this validation even for valid names.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}

	_, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return nil
}

// ValidateDeliveryTime validates a digest delivery time in 24-hour "HH:MM" format.
//
// Validation rules:
//   - exactly two colon-separated fields
//   - hour in [0, 23], minute in [0, 59]
//
// Example: "08:00", "14:30", "20:00"
func ValidateDeliveryTime(deliveryTime string) error {
	_, _, err := ParseDeliveryTime(deliveryTime)
	return err
}

// ParseDeliveryTime parses a delivery time in "HH:MM" format into its
// hour and minute components.
func ParseDeliveryTime(deliveryTime string) (hour, minute int, err error) {
	parts := strings.Split(deliveryTime, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid delivery time '%s': expected HH:MM format", deliveryTime)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid delivery time '%s': hour must be 00-23", deliveryTime)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid delivery time '%s': minute must be 00-59", deliveryTime)
	}

	return hour, minute, nil
}

// DeliveryTimeToCron converts a delivery time in "HH:MM" format into the
// equivalent daily cron expression ("M H * * *").
func DeliveryTimeToCron(deliveryTime string) (string, error) {
	hour, minute, err := ParseDeliveryTime(deliveryTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// ValidateDuration validates that a duration is within a specified range.
// Both bounds are inclusive; min must not exceed max.
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if duration < min {
		return fmt.Errorf("duration %v is below minimum %v", duration, min)
	}

	if duration > max {
		return fmt.Errorf("duration %v exceeds maximum %v", duration, max)
	}

	return nil
}

// ValidateIntRange validates that an integer value is within a specified range.
// Both bounds are inclusive; min must not exceed max.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}

	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}

	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}

	return nil
}

// ValidatePositiveDuration validates that a duration is strictly positive.
// Common validation for timeouts, delays, and intervals.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	return nil
}
