package tempsensor

import (
	"errors"
	"fmt"

	"periph.io/x/periph/conn/onewire"
	"periph.io/x/periph/conn/onewire/onewirereg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/devices/ds18b20"
)

// resolutionBits is fixed at the sensor's maximum, 12 bits (0.0625C
// steps), which is also its slowest conversion: ~750ms, matching
// spec §5's "~750 ms wait" suspension point exactly.
const resolutionBits = 12

// Periph reads a DS18B20 over a 1-wire bus. ConvertAll's conversion delay
// (94-752ms depending on resolution) is the real hardware constraint the
// spec's suspension point describes — Temperature() below blocks for it.
type Periph struct {
	bus onewire.BusCloser
	dev *ds18b20.Dev
}

// NewPeriph opens the first available 1-wire bus and binds to the first
// DS18B20-family device found on it.
func NewPeriph() (*Periph, error) {
	bus, err := onewirereg.Open("")
	if err != nil {
		return nil, fmt.Errorf("tempsensor: failed to open 1-wire bus: %w", err)
	}

	addrs, err := bus.Search(false)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("tempsensor: bus search failed: %w", err)
	}
	if len(addrs) == 0 {
		bus.Close()
		return nil, errors.New("tempsensor: no 1-wire devices found")
	}

	dev, err := ds18b20.New(bus, addrs[0], resolutionBits)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("tempsensor: failed to initialize DS18B20: %w", err)
	}

	return &Periph{bus: bus, dev: dev}, nil
}

// ReadTemperature performs a conversion and returns degrees Celsius.
func (p *Periph) ReadTemperature() (float64, error) {
	t, err := p.dev.Temperature()
	if err != nil {
		return 0, err
	}
	return float64(t-physic.ZeroCelsius) / float64(physic.Celsius), nil
}

// Close releases the 1-wire bus handle.
func (p *Periph) Close() error {
	return p.bus.Close()
}
