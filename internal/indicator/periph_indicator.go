package indicator

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiostream"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/experimental/devices/nrzled"

	"github.com/wwpump/controller/internal/pumpcontroller"
)

const blinkInterval = 500 * time.Millisecond

var (
	colorOff    = color.NRGBA{}
	colorRed    = color.NRGBA{R: 255, A: 255}
	colorYellow = color.NRGBA{R: 255, G: 200, A: 255}
	colorGreen  = color.NRGBA{G: 255, A: 255}
)

// Periph drives the onboard LED and a NeoPixel through real periph.io
// handles. The NeoPixel requires a pin that implements
// conn/gpio/gpiostream.PinOut (true of the Broadcom GPIOs under
// host/rpi); if the supplied pin does not, Periph still drives the
// onboard LED heartbeat and silently no-ops the colour signal.
type Periph struct {
	onboardLED gpio.PinIO
	pixel      *nrzled.Dev

	mu          sync.Mutex
	ledOn       bool
	state       pumpcontroller.IndicatorState
	cancelBlink context.CancelFunc
}

// NewPeriph builds a Periph indicator bound to the given pins. numPixels
// is normally 1 — a single status NeoPixel, not a strip.
func NewPeriph(onboardLED, pixelPin gpio.PinIO, numPixels int) (*Periph, error) {
	if err := onboardLED.Out(gpio.Low); err != nil {
		return nil, err
	}

	p := &Periph{onboardLED: onboardLED}

	streamPin, ok := pixelPin.(gpiostream.PinOut)
	if !ok {
		log.Warn().Str("pin", pixelPin.Name()).Msg("indicator: pixel pin does not support streaming, running onboard-LED-only")
		return p, nil
	}

	dev, err := nrzled.NewStream(streamPin, &nrzled.Opts{NumPixels: numPixels, Channels: 3, Freq: 800 * physic.KiloHertz})
	if err != nil {
		log.Warn().Err(err).Msg("indicator: NeoPixel init failed, running onboard-LED-only")
		return p, nil
	}
	p.pixel = dev
	return p, nil
}

// Show sets the advisory colour, stopping any blink loop the previous
// state started.
func (p *Periph) Show(state pumpcontroller.IndicatorState) {
	p.mu.Lock()
	p.state = state
	if p.cancelBlink != nil {
		p.cancelBlink()
		p.cancelBlink = nil
	}
	p.mu.Unlock()

	switch state {
	case pumpcontroller.IndicatorOff:
		p.setColor(colorOff)
	case pumpcontroller.IndicatorRedSolid:
		p.setColor(colorRed)
	case pumpcontroller.IndicatorRedBlink:
		p.startBlink(colorRed)
	case pumpcontroller.IndicatorYellowBlink:
		p.startBlink(colorYellow)
	}
}

// Heartbeat toggles the onboard LED — PumpController calls this once per
// tick, so the LED changes state every TICK_MS (one on/off cycle per two
// ticks).
func (p *Periph) Heartbeat() {
	p.mu.Lock()
	p.ledOn = !p.ledOn
	on := p.ledOn
	p.mu.Unlock()

	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := p.onboardLED.Out(level); err != nil {
		log.Warn().Err(err).Msg("indicator: onboard LED write failed")
	}
}

// BlinkAck briefly shows green to acknowledge a backup-button press, then
// restores whatever colour Show last commanded.
func (p *Periph) BlinkAck() {
	p.mu.Lock()
	restore := p.state
	p.mu.Unlock()

	p.setColor(colorGreen)
	time.Sleep(150 * time.Millisecond)
	p.Show(restore)
}

func (p *Periph) setColor(c color.NRGBA) {
	if p.pixel == nil {
		return
	}
	if err := p.pixel.Draw(p.pixel.Bounds(), image.NewUniform(c), image.Point{}); err != nil {
		log.Warn().Err(err).Msg("indicator: failed to draw pixel colour")
	}
}

func (p *Periph) startBlink(c color.NRGBA) {
	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancelBlink = cancel
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(blinkInterval)
		defer ticker.Stop()
		on := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				on = !on
				if on {
					p.setColor(c)
				} else {
					p.setColor(colorOff)
				}
			}
		}
	}()
}
