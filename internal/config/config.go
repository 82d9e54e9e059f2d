// Package config loads the runtime-configurable values: slot size, tick
// interval, rise threshold, GPIO pin assignments, file paths, and the
// optional metrics/notification endpoints. The gate timings are compiled
// constants in pumpcontroller, not config fields. It follows the teacher's flag+JSON-file pattern,
// panicking at startup on a missing or conflicting pin assignment rather
// than letting a misconfigured board run.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

// GPIO holds the logical pin numbers wired to the board. A nil field after
// JSON decode and default-filling is a configuration error — every pin
// must be assigned and none may collide.
type GPIO struct {
	NeoPixelPin   *int `json:"neopixel_pin"`
	OnboardLEDPin *int `json:"onboard_led_pin"`
	OneWirePin    *int `json:"onewire_pin"`
	RelayPin      *int `json:"relay_pin"`
	ButtonPin     *int `json:"button_pin"`
}

// Config is every value PumpController, Timetable, TimerWheel, GPIOBoard,
// and the ambient stack need at startup.
type Config struct {
	ConfigFile string
	LogLevel   zerolog.Level

	SafeMode bool `json:"safe_mode"`

	TimetableFile string `json:"timetable_file"`
	BackupLogFile string `json:"backup_log_file"`
	AuditDBPath   string `json:"audit_db_path"`

	// WaitingTime/RunningTime/QuietTime/HolidayTime/DesinfectTime and the
	// rising-detector's history length are compiled constants
	// (pumpcontroller and risingdetector packages), not runtime fields:
	// spec §6 allows "compiled or loaded at startup", and spec §9's open
	// question (b) is explicit that the 5-sample ring's index offset is
	// tuned against exactly that length and must not be generalized.
	SlotSizeMin    int     `json:"slot_size_min"`
	TickMS         int     `json:"tick_ms"`
	RiseThresholdC float64 `json:"rise_threshold_c"`

	APIPort int `json:"api_port"`

	RelayActiveHigh bool `json:"relay_active_high"`

	GPIO GPIO `json:"gpio"`

	DDAgentAddr string   `json:"dd_agent_addr"`
	DDNamespace string   `json:"dd_namespace"`
	DDTags      []string `json:"dd_tags"`

	NtfyTopic string `json:"ntfy_topic"`
}

func intPtr(v int) *int { return &v }

// defaults mirrors spec §6's defaults plus this expansion's GPIO pin
// defaults (NeoPixel 23, onboard LED 25, DS18B20 22, pump relay 20
// active-low, button 13).
func defaults() Config {
	return Config{
		TimetableFile:   "timetable",
		BackupLogFile:   "wwpumpe.log",
		AuditDBPath:     "wwpump-audit.db",
		SlotSizeMin:     15,
		TickMS:          1000,
		RiseThresholdC:  0.12,
		APIPort:         8080,
		RelayActiveHigh: false,
		GPIO: GPIO{
			NeoPixelPin:   intPtr(23),
			OnboardLEDPin: intPtr(25),
			OneWirePin:    intPtr(22),
			RelayPin:      intPtr(20),
			ButtonPin:     intPtr(13),
		},
	}
}

// Load parses flags, reads the JSON config file over top of defaults, and
// validates the result. A missing config file is not an error — defaults
// alone are a complete, runnable configuration for bench testing.
func Load() Config {
	cfg := defaults()
	var logLevel string

	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to controller config file")
	flag.BoolVar(&cfg.SafeMode, "safe-mode", cfg.SafeMode, "Disable pump relay GPIO output writes")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	if file, err := os.Open(cfg.ConfigFile); err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			panic("Failed to parse config file: " + err.Error())
		}
	}

	cfg.validate()
	return cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	if cfg.SlotSizeMin <= 0 || 60%cfg.SlotSizeMin != 0 {
		panic(fmt.Sprintf("slot_size_min must divide 60, got %d", cfg.SlotSizeMin))
	}

	var (
		missingFields []string
		usedPins      = map[int]string{}
		conflicts     []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			missingFields = append(missingFields, "gpio."+fieldName)
			continue
		}

		pin := field.Elem().Int()
		if other, exists := usedPins[int(pin)]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin))
		} else {
			usedPins[int(pin)] = fieldName
		}
	}

	if len(missingFields) > 0 {
		panic("Missing required GPIO config fields: " + strings.Join(missingFields, ", "))
	}
	if len(conflicts) > 0 {
		panic("Conflicting GPIO pins: " + strings.Join(conflicts, ", "))
	}
}
