// Package timerwheel drives PumpController's three timers — the 1 Hz
// tick, the periodic desinfect run, and the one-shot scheduled-run alarm
// — through a single mailbox so every dispatch into PumpController and
// Timetable happens on one goroutine, mirroring the cooperative,
// single-threaded scheduler the core was designed against.
package timerwheel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/pumpcontroller"
	"github.com/wwpump/controller/internal/timetable"
)

type event int

const (
	eventTick event = iota
	eventDesinfect
	eventScheduled
)

// mailboxSize covers the worst case of all three timers landing in the
// same dispatch cycle without blocking a caller.
const mailboxSize = 4

// Wheel owns the timers and the mailbox their firing enqueues into.
// Run's select loop is the only place PumpController and Timetable are
// ever mutated.
type Wheel struct {
	pc  *pumpcontroller.PumpController
	tt  *timetable.Timetable
	clk clock.Clock

	tickInterval      time.Duration
	desinfectInterval time.Duration

	mailbox chan event

	mu             sync.Mutex
	scheduledTimer *time.Timer
}

// New builds a Wheel. tickMs is TICK_MS (§6); the desinfect interval is
// fixed at pumpcontroller.DesinfectTime.
func New(pc *pumpcontroller.PumpController, tt *timetable.Timetable, clk clock.Clock, tickMs int) *Wheel {
	return &Wheel{
		pc:                pc,
		tt:                tt,
		clk:               clk,
		tickInterval:      time.Duration(tickMs) * time.Millisecond,
		desinfectInterval: time.Duration(pumpcontroller.DesinfectTime) * time.Second,
		mailbox:           make(chan event, mailboxSize),
	}
}

// send is the only thing a timer firing in interrupt-equivalent context
// is allowed to do: a non-blocking, allocation-free enqueue. A full
// mailbox drops the event — the periodic timers simply fire again next
// interval, and a dropped scheduled-run just means the next desinfect
// re-checks the timetable.
func (w *Wheel) send(e event) {
	select {
	case w.mailbox <- e:
	default:
		log.Warn().Int("event", int(e)).Msg("timerwheel: mailbox full, dropping event")
	}
}

// Run starts all three timers and drains the mailbox until ctx is
// cancelled. It blocks; callers run it in its own goroutine.
func (w *Wheel) Run(ctx context.Context) {
	tickTicker := time.NewTicker(w.tickInterval)
	desinfectTicker := time.NewTicker(w.desinfectInterval)

	go func() {
		for range tickTicker.C {
			w.send(eventTick)
		}
	}()
	go func() {
		for range desinfectTicker.C {
			w.send(eventDesinfect)
		}
	}()

	w.armScheduled(w.clk.Now())

	defer func() {
		// Deinit order: tick -> desinfect -> scheduled, per spec §5.
		tickTicker.Stop()
		desinfectTicker.Stop()
		w.mu.Lock()
		if w.scheduledTimer != nil {
			w.scheduledTimer.Stop()
		}
		w.mu.Unlock()
		log.Info().Msg("timerwheel: all timers deinitialised")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-w.mailbox:
			switch e {
			case eventTick:
				w.pc.Tick()
			case eventDesinfect:
				w.pc.Desinfect()
				// "the next desinfect will re-check" — a one-shot left
				// disarmed because the table was empty gets another
				// chance here.
				w.armScheduled(w.clk.Now())
			case eventScheduled:
				w.pc.ScheduledRun()
				w.armScheduled(w.clk.Now())
			}
		}
	}
}

// armScheduled always deinitialises any pending one-shot before arming a
// fresh one, so the same alarm can never fire twice.
func (w *Wheel) armScheduled(now int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.scheduledTimer != nil {
		w.scheduledTimer.Stop()
		w.scheduledTimer = nil
	}

	delay, ok := w.tt.NextAlarmDelay(now)
	if !ok {
		log.Debug().Msg("timerwheel: no next alarm, scheduled timer left disarmed")
		return
	}

	wait := delay - pumpcontroller.QuietTime
	if wait < 1 {
		wait = 1
	}
	w.scheduledTimer = time.AfterFunc(time.Duration(wait)*time.Second, func() {
		w.send(eventScheduled)
	})
}
