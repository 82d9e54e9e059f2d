package orchestrator

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/db"
	"github.com/wwpump/controller/internal/datadog"
	"github.com/wwpump/controller/internal/model"
	"github.com/wwpump/controller/internal/notifications"
)

// observe polls PumpController.State() on the same cadence as the timer
// wheel and diffs it against the previous sample to turn state
// transitions into audit rows, metrics, and notifications.
// PumpController itself stays free of all three concerns — it has no
// notion of a database, a statsd client, or ntfy.sh — so this is the one
// place that watches it from the outside, the way the teacher's
// dashboard poller watches system state rather than being told about it.
type observer struct {
	o    *Orchestrator
	conn *sql.DB
	prev model.PumpState
}

// Observe starts the poller and blocks until ctx is cancelled. Run it in
// its own goroutine alongside o.Run.
func (o *Orchestrator) Observe(ctx context.Context, conn *sql.DB) {
	obs := &observer{o: o, conn: conn, prev: o.PumpController.State()}
	interval := time.Duration(o.cfg.TickMS) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			obs.sample()
		}
	}
}

func (obs *observer) sample() {
	cur := obs.o.PumpController.State()
	prev := obs.prev
	obs.prev = cur

	if conn := obs.conn; conn != nil {
		var kinds []model.AuditEventKind

		if cur.LastWarmWaterDemand != prev.LastWarmWaterDemand {
			kinds = append(kinds, model.AuditDemand)
		}
		if cur.Running && !prev.Running {
			kinds = append(kinds, model.AuditPumpOn)
		}
		if !cur.Running && prev.Running {
			kinds = append(kinds, model.AuditPumpOff)
		}
		if cur.LastScheduledRun != prev.LastScheduledRun {
			kinds = append(kinds, model.AuditScheduledRun)
		}
		if cur.LastDesinfect != prev.LastDesinfect {
			kinds = append(kinds, model.AuditDesinfect)
		}
		if cur.SanityFailed != 0 && cur.SanityFailed != prev.SanityFailed {
			kinds = append(kinds, model.AuditSanityFailure)
		}

		// A single tick can carry more than one event (a scheduled run
		// and the pump start it triggers, say) — these are recorded
		// together in one transaction so a reader of the audit store
		// never sees one land without the other.
		if len(kinds) > 0 {
			obs.insertEvents(conn, kinds)
		}
	}

	datadog.Gauge("wwpump.pump.running", boolToFloat(cur.Running))
	datadog.Gauge("wwpump.timetable.slot_count", float64(obs.o.Timetable.Len()))
	if delay, ok := obs.o.Timetable.NextAlarmDelay(obs.o.Clock.Now()); ok {
		datadog.Gauge("wwpump.timetable.next_alarm_seconds", float64(delay))
	}

	if cur.SanityFailed != 0 && cur.SanityFailed != prev.SanityFailed {
		datadog.Incr("wwpump.pump.sanity_failures_total")
		if err := notifications.SanityFailure(cur.SanityFailed); err != nil {
			log.Warn().Err(err).Msg("orchestrator: sanity-failure notification failed")
		}
	}

	if cur.Holiday && !prev.Holiday {
		if err := notifications.HolidayEntered(); err != nil {
			log.Warn().Err(err).Msg("orchestrator: holiday-entered notification failed")
		}
	}
	if !cur.Holiday && prev.Holiday {
		if err := notifications.HolidayCleared(); err != nil {
			log.Warn().Err(err).Msg("orchestrator: holiday-cleared notification failed")
		}
	}
}

// insertEvents writes every kind detected in one sample as a single
// transaction via db.StartTransaction/InsertAuditEventWithTx, rolling
// back on any failure rather than leaving a partial batch committed.
func (obs *observer) insertEvents(conn *sql.DB, kinds []model.AuditEventKind) {
	tx, err := db.StartTransaction(conn)
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: audit transaction start failed")
		return
	}

	now := obs.o.Clock.Now()
	for _, kind := range kinds {
		if err := db.InsertAuditEventWithTx(tx, now, string(kind), ""); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("orchestrator: audit insert failed")
			db.RollbackTransaction(tx)
			return
		}
	}

	if err := db.CommitTransaction(tx); err != nil {
		log.Warn().Err(err).Msg("orchestrator: audit transaction commit failed")
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
