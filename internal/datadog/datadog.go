// Package datadog reports operational metrics through dogstatsd. An
// absent agent address disables metrics entirely rather than blocking
// startup — Gauge and Incr are nil-safe no-ops in that case, same as the
// teacher's pattern.
package datadog

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/env"
)

var dogstatsd *statsd.Client

func InitMetrics() {
	if env.Cfg.DDAgentAddr == "" {
		log.Info().Msg("No Datadog agent address configured, metrics disabled")
		return
	}

	var err error
	dogstatsd, err = statsd.New(env.Cfg.DDAgentAddr)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create DogStatsD client")
		return
	}

	dogstatsd.Namespace = env.Cfg.DDNamespace
	dogstatsd.Tags = env.Cfg.DDTags

	log.Info().
		Str("addr", env.Cfg.DDAgentAddr).
		Str("namespace", env.Cfg.DDNamespace).
		Strs("tags", env.Cfg.DDTags).
		Msg("Datadog metrics initialized")
}

// Gauge reports wwpump.pump.running, wwpump.timetable.slot_count, and
// wwpump.timetable.next_alarm_seconds.
func Gauge(name string, value float64, tags ...string) {
	if dogstatsd == nil {
		return
	}
	if err := dogstatsd.Gauge(name, value, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to emit gauge metric")
	}
}

// Incr reports wwpump.pump.sanity_failures_total.
func Incr(name string, tags ...string) {
	if dogstatsd == nil {
		return
	}
	if err := dogstatsd.Incr(name, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to emit counter metric")
	}
}
