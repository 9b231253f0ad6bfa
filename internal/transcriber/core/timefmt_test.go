package core_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

func TestFormatTimeForCue(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{"zero", 0, "00:00:00,000"},
		{"hours minutes seconds millis", 3725.250, "01:02:05,250"},
		{"sub second", 0.5, "00:00:00,500"},
		{"float noise", 1.001, "00:00:01,001"},
		{"millis are floored", 2.9999, "00:00:02,999"},
		{"negative", -3, "00:00:00,000"},
		{"nan", math.NaN(), "00:00:00,000"},
		{"infinity", math.Inf(1), "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.FormatTimeForCue(tt.seconds))
		})
	}
}

func TestFormatTimeForDisplay(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{"zero", 0, "00:00"},
		{"minute and seconds", 65, "01:05"},
		{"with hours", 3665, "01:01:05"},
		{"fraction floored", 59.99, "00:59"},
		{"just under an hour", 3599, "59:59"},
		{"negative", -1, "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.FormatTimeForDisplay(tt.seconds))
		})
	}
}

func TestFormatTimeForClock(t *testing.T) {
	assert.Equal(t, "00:00:00", core.FormatTimeForClock(0))
	assert.Equal(t, "00:01:05", core.FormatTimeForClock(65))
	assert.Equal(t, "01:01:05", core.FormatTimeForClock(3665.7))
}
