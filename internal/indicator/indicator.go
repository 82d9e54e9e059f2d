// Package indicator implements the shared advisory signal: an onboard
// status LED used as the 1 Hz heartbeat, and a single NeoPixel used to
// reflect PumpController's waiting/quiet/holiday state and BackupButton's
// press acknowledgments.
package indicator

import (
	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/pumpcontroller"
)

// Mock drives no hardware; it just records what it was told, for tests
// and for bench runs with no board attached.
type Mock struct {
	LastState  pumpcontroller.IndicatorState
	Heartbeats int
	Acks       int
}

// NewMock returns a Mock indicator, initially Off.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Show(state pumpcontroller.IndicatorState) {
	m.LastState = state
	log.Debug().Int("state", int(state)).Msg("indicator(mock): show")
}

func (m *Mock) Heartbeat() {
	m.Heartbeats++
}

func (m *Mock) BlinkAck() {
	m.Acks++
	log.Debug().Msg("indicator(mock): blink ack")
}
