// Package pumpcontroller implements the recirculation pump state machine:
// the gating windows (waiting/quiet/holiday/scheduled-run) that decide
// when a detected rise in pipe temperature is allowed to start the pump,
// and the periodic/scheduled actions that drive it independently of
// moment-to-moment demand.
package pumpcontroller

import (
	"github.com/rs/zerolog/log"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/model"
	"github.com/wwpump/controller/internal/timetable"
)

// Gate constants, in seconds. QuietTime is derived from RunningTime, not
// independently configurable — see spec §4.3.
const (
	WaitingTime   = 900
	RunningTime   = 40
	QuietTime     = RunningTime + 20
	HolidayTime   = 86400
	DesinfectTime = 259200

	// slotBuffer nudges a scheduled run's decrement a couple of seconds
	// past the alarm so it lands in the slot the alarm was armed against,
	// not an adjacent one near a slot boundary.
	slotBuffer = 2
)

// IndicatorState is the advisory signal PumpController drives on the
// shared Indicator. The last writer wins; BackupButton may briefly
// override it for an acknowledgment blink.
type IndicatorState int

const (
	IndicatorOff IndicatorState = iota
	IndicatorRedSolid
	IndicatorRedBlink
	IndicatorYellowBlink
)

// TempSensor is the narrow contract PumpController consumes; the real
// implementation bridges to a one-wire DS18B20, the mock returns a
// constant when no sensor is present.
type TempSensor interface {
	ReadTemperature() (float64, error)
}

// RisingDetector reports whether a newly pushed sample continues a rising
// trend. risingdetector.Detector satisfies this directly.
type RisingDetector interface {
	Push(sample float64) bool
}

// Relay is the exclusively-owned GPIO output driving the pump.
type Relay interface {
	On()
	Off()
}

// Indicator is the shared advisory signal. PumpController only ever calls
// Show and Heartbeat; blink acknowledgments are BackupButton's concern.
type Indicator interface {
	Show(state IndicatorState)
	Heartbeat()
}

// DriveResult reports what Drive actually did, mirroring spec §4.3's
// "started"/"suppressed-waiting" return values for callers that care
// (tests, audit logging).
type DriveResult int

const (
	DriveNoop DriveResult = iota
	DriveStarted
	DriveSuppressedWaiting
	DriveStopped
)

// PumpController owns the pump relay exclusively and holds the narrow set
// of collaborators it needs. It is always an explicit field on the
// Orchestrator, never a package-level global.
type PumpController struct {
	clk       clock.Clock
	sensor    TempSensor
	detector  RisingDetector
	relay     Relay
	indicator Indicator
	tt        *timetable.Timetable

	persistPath string

	state model.PumpState
}

// New constructs a PumpController with timestamps seeded so every gate is
// open on the first tick, per spec §4.3's initial-state requirement.
func New(clk clock.Clock, sensor TempSensor, detector RisingDetector, relay Relay, indicator Indicator, tt *timetable.Timetable, persistPath string) *PumpController {
	now := clk.Now()
	return &PumpController{
		clk:         clk,
		sensor:      sensor,
		detector:    detector,
		relay:       relay,
		indicator:   indicator,
		tt:          tt,
		persistPath: persistPath,
		state: model.PumpState{
			LastPumpStart: now - WaitingTime - 1,
			// Seeded just past QUIET_TIME, not HOLIDAY_TIME: a freshly
			// booted controller should open the demand gates immediately
			// without also announcing holiday mode on its very first tick.
			LastWarmWaterDemand: now - QuietTime - 1,
			LastScheduledRun:    now - QuietTime - 1,
		},
	}
}

// State returns a copy of the current PumpState, for diagnostics and
// audit logging. Callers must not assume it is safe to mutate anything
// reachable from it — there is nothing reachable, it is a value copy.
func (p *PumpController) State() model.PumpState {
	return p.state
}

// updateState recomputes the derived gate booleans against now, clamping
// any timestamp that appears to be in the future — a symptom of the RTC
// having been set backwards since it was recorded.
func (p *PumpController) updateState(now int64) {
	clamped := false
	if p.state.LastPumpStart > now {
		p.state.LastPumpStart = now
		clamped = true
	}
	if p.state.LastWarmWaterDemand > now {
		p.state.LastWarmWaterDemand = now
		clamped = true
	}
	if p.state.LastScheduledRun > now {
		p.state.LastScheduledRun = now
		clamped = true
	}
	if clamped {
		p.state.SanityFailed = now
		log.Warn().Int64("now", now).Msg("pumpcontroller: clock regression detected, timestamps clamped")
	}

	p.state.OutsideWaitingTime = p.state.LastPumpStart+WaitingTime < now
	p.state.OutsideQuietTime = p.state.LastWarmWaterDemand+QuietTime < now
	p.state.OutsideScheduledRun = p.state.LastScheduledRun+QuietTime < now
	p.state.Holiday = p.state.LastWarmWaterDemand+HolidayTime < now

	p.reflectIndicator()
}

// reflectIndicator maps the current gates onto the four-state advisory
// signal, most restrictive condition first.
func (p *PumpController) reflectIndicator() {
	switch {
	case p.state.Holiday:
		p.indicator.Show(IndicatorYellowBlink)
	case !p.state.OutsideWaitingTime:
		p.indicator.Show(IndicatorRedSolid)
	case !p.state.OutsideQuietTime:
		p.indicator.Show(IndicatorRedBlink)
	default:
		p.indicator.Show(IndicatorOff)
	}
}

// drive is the only place Running, LastPumpStart and the relay itself
// change state.
func (p *PumpController) drive(wantOn bool, now int64) DriveResult {
	switch {
	case wantOn && !p.state.Running:
		if p.state.OutsideWaitingTime {
			p.relay.On()
			p.state.Running = true
			p.state.LastPumpStart = now
			return DriveStarted
		}
		return DriveSuppressedWaiting
	case !wantOn && p.state.Running && now >= p.state.LastPumpStart+RunningTime:
		p.relay.Off()
		p.state.Running = false
		return DriveStopped
	default:
		return DriveNoop
	}
}

// Tick runs one cycle of the control loop: update_state, read the
// sensor, evaluate demand, drive the relay, record the demand, then
// heartbeat the indicator. The ordering is normative (spec §5) and must
// not be reshuffled.
func (p *PumpController) Tick() {
	now := p.clk.Now()
	p.updateState(now)

	sample, err := p.sensor.ReadTemperature()
	if err != nil {
		log.Warn().Err(err).Msg("pumpcontroller: temperature read failed, treating tick as no demand")
		p.drive(false, now)
		p.indicator.Heartbeat()
		return
	}

	rising := p.detector.Push(sample)
	demand := rising && p.state.OutsideQuietTime && p.state.OutsideScheduledRun
	if demand {
		p.state.LastWarmWaterDemand = now
		p.drive(true, now)
		p.tt.Record(now, true)
	} else {
		p.drive(false, now)
	}

	p.indicator.Heartbeat()
}

// ScheduledRun fires when TimerWheel's one-shot alarm reaches a learned
// slot, priming the loop ahead of expected demand. During holiday mode it
// still records the run time (closing the scheduled-run gate for
// QuietTime) but skips the slot decrement and does not start the pump.
func (p *PumpController) ScheduledRun() {
	now := p.clk.Now()
	p.state.LastScheduledRun = now
	p.updateState(now)

	if p.state.Holiday {
		log.Debug().Msg("pumpcontroller: scheduled run skipped, holiday active")
		return
	}

	p.tt.Record(now+QuietTime+slotBuffer, false)
	p.drive(true, now)
}

// Desinfect is the 3-day hygienic run and the system's last line of
// defense: if the timetable is empty or holiday mode is active (meaning
// scheduled runs have gone quiet), it primes the loop itself. It always
// flashes the indicator and flushes the timetable to disk.
func (p *PumpController) Desinfect() {
	now := p.clk.Now()
	p.updateState(now)
	p.state.LastDesinfect = now

	if p.tt.Len() == 0 || p.state.Holiday {
		p.state.LastScheduledRun = now
		p.updateState(now)
		p.drive(true, now)
	}

	p.indicator.Show(IndicatorRedBlink)
	if _, err := p.tt.Persist(p.persistPath); err != nil {
		log.Error().Err(err).Msg("pumpcontroller: desinfect persist failed")
	}
}
