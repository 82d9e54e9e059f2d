package gpioboard

import "github.com/rs/zerolog/log"

// MockRelay logs instead of driving a GPIO pin — used when Init fails
// (no periph.io host driver found) so the control loop keeps running in
// a degraded, board-absent mode.
type MockRelay struct {
	IsOn bool
}

// NewMockRelay returns a MockRelay, initially off.
func NewMockRelay() *MockRelay {
	return &MockRelay{}
}

func (r *MockRelay) On() {
	r.IsOn = true
	log.Debug().Msg("gpioboard(mock): relay on")
}

func (r *MockRelay) Off() {
	r.IsOn = false
	log.Debug().Msg("gpioboard(mock): relay off")
}
