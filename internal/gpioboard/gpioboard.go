// Package gpioboard owns periph.io host initialization and the pin
// registry lookups every other hardware-facing component depends on: the
// pump relay, the backup button, and the two indicator pins. It is the
// single place that knows about active-high/active-low polarity and the
// safe-mode bench-testing switch.
package gpioboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/wwpump/controller/internal/model"
)

// Board resolves configured pin numbers into periph.io handles.
type Board struct {
	mu       sync.Mutex
	safeMode bool
}

// Init calls periph.io's host.Init once. Callers on hosts with no
// matching driver (a dev laptop, CI) get an error here and should fall
// back to the mock collaborators instead — this keeps the control loop
// testable off hardware, per the board-absent story.
func Init() (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpioboard: host init failed: %w", err)
	}
	return &Board{}, nil
}

// SetSafeMode disables (or re-enables) every Out() write issued through
// this board's Relay handles, while leaving reads and WatchButton intact.
// Used for bench testing without a relay board attached.
func (b *Board) SetSafeMode(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.safeMode = enabled
}

func (b *Board) isSafeMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.safeMode
}

// Pin resolves a logical GPIO number to a periph.io handle.
func (b *Board) Pin(number int) (gpio.PinIO, error) {
	name := fmt.Sprintf("GPIO%d", number)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpioboard: pin %s not found", name)
	}
	return pin, nil
}

// Relay drives a single GPIO output honoring its configured polarity and
// the board's safe-mode flag. It implements pumpcontroller.Relay.
type Relay struct {
	board *Board
	pin   model.GPIOPin
	io    gpio.PinIO
}

// NewRelay resolves pinDef and drives it to its inactive level.
func (b *Board) NewRelay(pinDef model.GPIOPin) (*Relay, error) {
	io, err := b.Pin(pinDef.Number)
	if err != nil {
		return nil, err
	}
	inactive := gpio.High
	if pinDef.ActiveHigh {
		inactive = gpio.Low
	}
	if err := io.Out(inactive); err != nil {
		return nil, fmt.Errorf("gpioboard: failed to initialize relay pin %d: %w", pinDef.Number, err)
	}
	return &Relay{board: b, pin: pinDef, io: io}, nil
}

func (r *Relay) On() {
	if r.board.isSafeMode() {
		return
	}
	level := gpio.High
	if !r.pin.ActiveHigh {
		level = gpio.Low
	}
	if err := r.io.Out(level); err != nil {
		log.Error().Err(err).Int("pin", r.pin.Number).Msg("gpioboard: relay activate failed")
	}
}

func (r *Relay) Off() {
	if r.board.isSafeMode() {
		return
	}
	level := gpio.Low
	if !r.pin.ActiveHigh {
		level = gpio.High
	}
	if err := r.io.Out(level); err != nil {
		log.Error().Err(err).Int("pin", r.pin.Number).Msg("gpioboard: relay deactivate failed")
	}
}

// WatchButton configures pinDef as a falling-edge input with an internal
// pull-up and starts a goroutine that calls onPress on every edge, until
// stop is closed. onPress is expected to be cheap (BackupButton.Press
// does its own debouncing and locking) since WaitForEdge blocks the
// watcher goroutine, not the main control loop.
func (b *Board) WatchButton(pinDef model.GPIOPin, stop <-chan struct{}, onPress func()) error {
	io, err := b.Pin(pinDef.Number)
	if err != nil {
		return err
	}
	if err := io.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("gpioboard: failed to configure button pin %d: %w", pinDef.Number, err)
	}

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if io.WaitForEdge(time.Second) {
				onPress()
			}
		}
	}()
	return nil
}
