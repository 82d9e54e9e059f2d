// Package backupbutton implements the manual backup control: a single
// GPIO push-button that, on an acted-upon press, flushes the learned
// timetable to disk immediately rather than waiting for the next
// desinfect cycle or clean shutdown.
package backupbutton

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/timetable"
)

// DebounceSeconds is the minimum gap between two acted-upon presses.
const DebounceSeconds = 2

// Indicator is the narrow ack-signalling contract Button consumes. It is
// a different call than PumpController's Show: a press acknowledgment is
// a one-shot blink that borrows the shared Indicator, overriding whatever
// PumpController last set (spec §5: the Indicator is advisory, last
// writer wins).
type Indicator interface {
	BlinkAck()
}

// BackupLog is the append-only wwpumpe.log sink. It is nil-able — a
// configuration with no backup log sink configured simply skips logging,
// matching spec §6's "written only on backup-button press when a
// non-stdout log sink is configured".
type BackupLog interface {
	LogBackupAck(now int64) error
}

// Button owns the debounce state for the physical push-button. Presses
// arrive via Press, called from the GPIO edge watcher.
type Button struct {
	clk         clock.Clock
	tt          *timetable.Timetable
	indicator   Indicator
	backupLog   BackupLog
	persistPath string

	mu        sync.Mutex
	lastActed int64
}

// New constructs a Button. backupLog may be nil.
func New(clk clock.Clock, tt *timetable.Timetable, indicator Indicator, backupLog BackupLog, persistPath string) *Button {
	return &Button{
		clk:         clk,
		tt:          tt,
		indicator:   indicator,
		backupLog:   backupLog,
		persistPath: persistPath,
	}
}

// Press handles one falling-edge event. Presses arriving less than
// DebounceSeconds after the previous acted-upon press are ignored
// entirely — no persist, no log line, no blink. It returns true if the
// press was acted upon.
func (b *Button) Press() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clk.Now()
	if now-b.lastActed < DebounceSeconds {
		log.Debug().Int64("now", now).Msg("backupbutton: press ignored, inside debounce window")
		return false
	}
	b.lastActed = now

	if _, err := b.tt.Persist(b.persistPath); err != nil {
		log.Error().Err(err).Msg("backupbutton: timetable flush failed")
	}

	if b.backupLog != nil {
		if err := b.backupLog.LogBackupAck(now); err != nil {
			log.Error().Err(err).Msg("backupbutton: failed to append backup ack line")
		}
	}

	if b.indicator != nil {
		b.indicator.BlinkAck()
	}

	return true
}
