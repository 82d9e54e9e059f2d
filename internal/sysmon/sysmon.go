// Package sysmon polls the host's own CPU, memory, and load average and
// reports them through datadog.Gauge. The process bridging this
// controller to GPIO hardware is a real Linux box, not the microcontroller
// itself, and its health (thermal throttling, memory pressure) is worth
// watching independently of the pump logic — grounded in the pack's
// HTTP-served system monitor, adapted here to a background poller.
package sysmon

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/wwpump/controller/internal/datadog"
)

// pollInterval matches SPEC_FULL.md §4.11 — host health changes slowly
// relative to the pump's 1s tick, so a minute is plenty.
const pollInterval = 60 * time.Second

// Run polls until ctx is cancelled. Each sample failure is logged and
// skipped; a transient gopsutil read error never stops the poller.
func Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}

func sample() {
	if pct, err := cpu.Percent(0, false); err != nil {
		log.Warn().Err(err).Msg("sysmon: cpu sample failed")
	} else if len(pct) > 0 {
		datadog.Gauge("wwpump.host.cpu_percent", pct[0])
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Warn().Err(err).Msg("sysmon: memory sample failed")
	} else {
		datadog.Gauge("wwpump.host.mem_used_percent", vm.UsedPercent)
	}

	if avg, err := load.Avg(); err != nil {
		log.Warn().Err(err).Msg("sysmon: load sample failed")
	} else {
		datadog.Gauge("wwpump.host.load1", avg.Load1)
	}
}
