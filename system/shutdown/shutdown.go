// Package shutdown performs the controller's clean-exit sequence: drive
// the pump relay to its inactive level and flush the learned timetable,
// then exit. Safe mode (gpioboard.Board.SetSafeMode) still lets the
// flush happen — only the GPIO write is skipped.
package shutdown

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/pumpcontroller"
	"github.com/wwpump/controller/internal/timetable"
)

// Shutdown stops the pump relay via relay.Off() (a safe-mode-aware
// Relay already no-ops when appropriate, so this package need not know
// about safe mode itself), flushes tt to persistPath, and exits.
func Shutdown(relay pumpcontroller.Relay, tt *timetable.Timetable, persistPath string) {
	relay.Off()
	log.Info().Msg("Pump relay deactivated")

	if _, err := tt.Persist(persistPath); err != nil {
		log.Error().Err(err).Msg("Failed to flush timetable on shutdown")
	}

	os.Exit(0)
}

// ShutdownWithError logs err and msg before performing the same
// clean-exit sequence as Shutdown.
func ShutdownWithError(relay pumpcontroller.Relay, tt *timetable.Timetable, persistPath string, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	Shutdown(relay, tt, persistPath)
}
