package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule_Valid(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
	}{
		{"daily at midnight", "0 0 * * *"},
		{"daily at 8:00 AM", "0 8 * * *"},
		{"every 6 hours", "0 */6 * * *"},
		{"weekdays at 9:30", "30 9 * * 1-5"},
		{"every minute", "* * * * *"},
		{"every 5 minutes", "*/5 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			assert.NoError(t, err, "Expected valid cron schedule: %s", tt.schedule)
		})
	}
}

func TestValidateCronSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
	}{
		{"empty string", ""},
		{"too few fields", "0 0"},
		{"too many fields", "0 0 * * * * *"},
		{"invalid minute", "60 0 * * *"},
		{"invalid hour", "0 24 * * *"},
		{"random text", "invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			assert.Error(t, err, "Expected error for invalid schedule: %s", tt.schedule)
			assert.Contains(t, err.Error(), "invalid cron schedule")
		})
	}
}

func TestValidateTimezone_Valid(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
	}{
		{"UTC", "UTC"},
		{"Belgrade", "Europe/Belgrade"},
		{"Tbilisi", "Asia/Tbilisi"},
		{"Tashkent", "Asia/Tashkent"},
		{"Moscow", "Europe/Moscow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.timezone)
			assert.NoError(t, err, "Expected valid timezone: %s", tt.timezone)
		})
	}
}

func TestValidateTimezone_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
	}{
		{"empty string", ""},
		{"typo", "Europe/Belgrad"},
		{"offset instead of name", "+03:00"},
		{"random text", "not a timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.timezone)
			assert.Error(t, err, "Expected error for invalid timezone: %s", tt.timezone)
		})
	}
}

func TestValidateDeliveryTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"morning", "08:00", false},
		{"afternoon", "14:30", false},
		{"evening", "20:00", false},
		{"midnight", "00:00", false},
		{"last minute", "23:59", false},
		{"empty", "", true},
		{"missing minute", "08", true},
		{"too many fields", "08:00:00", true},
		{"hour out of range", "24:00", true},
		{"minute out of range", "08:60", true},
		{"non-numeric", "ab:cd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeliveryTime(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDeliveryTime(t *testing.T) {
	hour, minute, err := ParseDeliveryTime("14:05")
	assert.NoError(t, err)
	assert.Equal(t, 14, hour)
	assert.Equal(t, 5, minute)
}

func TestDeliveryTimeToCron(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
		wantErr  bool
	}{
		{"morning", "08:00", "0 8 * * *", false},
		{"afternoon", "14:30", "30 14 * * *", false},
		{"evening", "20:00", "0 20 * * *", false},
		{"invalid", "25:00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeliveryTimeToCron(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			// Converted expressions must be accepted by the scheduler parser.
			assert.NoError(t, ValidateCronSchedule(got))
		})
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		min      time.Duration
		max      time.Duration
		wantErr  bool
	}{
		{"within range", 30 * time.Second, time.Second, time.Minute, false},
		{"at minimum", time.Second, time.Second, time.Minute, false},
		{"at maximum", time.Minute, time.Second, time.Minute, false},
		{"below minimum", 500 * time.Millisecond, time.Second, time.Minute, true},
		{"above maximum", 2 * time.Minute, time.Second, time.Minute, true},
		{"inverted range", time.Second, time.Minute, time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.duration, tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIntRange(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		min     int
		max     int
		wantErr bool
	}{
		{"within range", 5, 1, 10, false},
		{"at minimum", 1, 1, 10, false},
		{"at maximum", 10, 1, 10, false},
		{"below minimum", 0, 1, 10, true},
		{"above maximum", 11, 1, 10, true},
		{"inverted range", 5, 10, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIntRange(tt.value, tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Second))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))
}
