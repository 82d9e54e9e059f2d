// Package orchestrator is the explicit collaborator-holder spec.md §9
// calls for: one struct, built once at process start and owned for its
// lifetime, wiring Clock, TempSensor, Indicator, Timetable,
// PumpController, TimerWheel, and BackupButton together. Unlike
// env.Cfg, none of these are package-level globals.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/backupbutton"
	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/config"
	"github.com/wwpump/controller/internal/gpioboard"
	"github.com/wwpump/controller/internal/indicator"
	"github.com/wwpump/controller/internal/model"
	"github.com/wwpump/controller/internal/pumpcontroller"
	"github.com/wwpump/controller/internal/risingdetector"
	"github.com/wwpump/controller/internal/tempsensor"
	"github.com/wwpump/controller/internal/timerwheel"
	"github.com/wwpump/controller/internal/timetable"
)

// Orchestrator owns every core collaborator plus the GPIOBoard that
// produced their hardware handles.
type Orchestrator struct {
	Clock          clock.Clock
	Board          *gpioboard.Board
	TempSensor     pumpcontroller.TempSensor
	Indicator      interface {
		pumpcontroller.Indicator
		backupbutton.Indicator
	}
	Relay          pumpcontroller.Relay
	Timetable      *timetable.Timetable
	PumpController *pumpcontroller.PumpController
	Wheel          *timerwheel.Wheel
	Button         *backupbutton.Button

	cfg *config.Config
}

// New builds every collaborator. A periph.io host-init failure (no
// driver found — a dev laptop, CI) is not fatal: it is logged once and
// every hardware-facing collaborator falls back to its mock, per spec
// §7's board-absent story.
func New(cfg *config.Config, backupLog backupbutton.BackupLog) (*Orchestrator, error) {
	clk := clock.Real{}

	o := &Orchestrator{Clock: clk, cfg: cfg}

	board, err := gpioboard.Init()
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: no periph.io host driver found, running in board-absent mode")
	} else {
		board.SetSafeMode(cfg.SafeMode)
		o.Board = board
	}

	o.TempSensor = o.buildTempSensor()
	o.Indicator = o.buildIndicator()
	o.Relay = o.buildRelay()

	tt := timetable.New(clk, cfg.SlotSizeMin)
	if err := tt.Load(cfg.TimetableFile); err != nil {
		log.Warn().Err(err).Msg("orchestrator: timetable load failed, starting empty")
	}
	o.Timetable = tt

	detector := risingdetector.NewWithThreshold(cfg.RiseThresholdC)
	o.PumpController = pumpcontroller.New(clk, o.TempSensor, detector, o.Relay, o.Indicator, tt, cfg.TimetableFile)

	o.Wheel = timerwheel.New(o.PumpController, tt, clk, cfg.TickMS)

	o.Button = backupbutton.New(clk, tt, o.Indicator, backupLog, cfg.TimetableFile)
	if o.Board != nil && cfg.GPIO.ButtonPin != nil {
		buttonPin := model.GPIOPin{Number: *cfg.GPIO.ButtonPin}
		stop := make(chan struct{})
		if err := o.Board.WatchButton(buttonPin, stop, func() { o.Button.Press() }); err != nil {
			log.Warn().Err(err).Msg("orchestrator: backup button watch failed, button is inert")
		}
	}

	return o, nil
}

func (o *Orchestrator) buildTempSensor() pumpcontroller.TempSensor {
	if o.Board == nil {
		log.Warn().Msg("orchestrator: no board, installing constant-mock temp sensor")
		return tempsensor.NewMock(20.0)
	}
	sensor, err := tempsensor.NewPeriph()
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: temp sensor absent, installing constant-mock")
		return tempsensor.NewMock(20.0)
	}
	return sensor
}

func (o *Orchestrator) buildIndicator() interface {
	pumpcontroller.Indicator
	backupbutton.Indicator
} {
	if o.Board == nil {
		return indicator.NewMock()
	}
	onboard, err := o.Board.Pin(*o.cfg.GPIO.OnboardLEDPin)
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: onboard LED pin unavailable, installing mock indicator")
		return indicator.NewMock()
	}
	pixel, err := o.Board.Pin(*o.cfg.GPIO.NeoPixelPin)
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: NeoPixel pin unavailable, installing mock indicator")
		return indicator.NewMock()
	}
	periph, err := indicator.NewPeriph(onboard, pixel, 1)
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: indicator init failed, installing mock indicator")
		return indicator.NewMock()
	}
	return periph
}

func (o *Orchestrator) buildRelay() pumpcontroller.Relay {
	if o.Board == nil || o.cfg.GPIO.RelayPin == nil {
		return gpioboard.NewMockRelay()
	}
	pinDef := model.GPIOPin{Number: *o.cfg.GPIO.RelayPin, ActiveHigh: o.cfg.RelayActiveHigh}
	relay, err := o.Board.NewRelay(pinDef)
	if err != nil {
		log.Warn().Err(err).Msg("orchestrator: relay pin unavailable, installing mock relay")
		return gpioboard.NewMockRelay()
	}
	return relay
}

// Run starts the timer wheel and blocks until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	o.Wheel.Run(ctx)
}

// Shutdown flushes the timetable and releases the pump relay.
func (o *Orchestrator) Shutdown() error {
	o.Relay.Off()
	if _, err := o.Timetable.Persist(o.cfg.TimetableFile); err != nil {
		return fmt.Errorf("orchestrator: shutdown flush failed: %w", err)
	}
	return nil
}
