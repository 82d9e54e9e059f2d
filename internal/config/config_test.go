package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected zerolog.Level
	}{
		{"default to info", "", zerolog.InfoLevel},
		{"debug", "debug", zerolog.DebugLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"unknown", "weird", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := parseLogLevel(tt.input)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestConfigValidate_DefaultsPass(t *testing.T) {
	cfg := defaults()
	assert.NotPanics(t, func() { cfg.validate() })
}

func TestConfigValidate_MissingPin(t *testing.T) {
	cfg := defaults()
	cfg.GPIO.ButtonPin = nil

	assert.PanicsWithValue(t,
		"Missing required GPIO config fields: gpio.button_pin",
		func() { cfg.validate() },
	)
}

func TestConfigValidate_GPIOConflict(t *testing.T) {
	cfg := defaults()
	cfg.GPIO.ButtonPin = intPtr(20) // collides with RelayPin's default

	assert.PanicsWithValue(t,
		"Conflicting GPIO pins: gpio.button_pin and gpio.relay_pin both use pin 20",
		func() { cfg.validate() },
	)
}

func TestConfigValidate_SlotSizeMustDivide60(t *testing.T) {
	cfg := defaults()
	cfg.SlotSizeMin = 7

	assert.PanicsWithValue(t,
		"slot_size_min must divide 60, got 7",
		func() { cfg.validate() },
	)
}
