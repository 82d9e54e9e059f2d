// Package risingdetector watches a stream of temperature samples and
// reports when the pipe temperature is climbing fast enough to indicate
// a user has opened a hot tap.
package risingdetector

// HistoryLen is the ring buffer size. spec.md fixes this at 5 and is
// explicit that the +2 index offset below is tuned against exactly this
// length — do not generalize without re-tuning Threshold.
const HistoryLen = 5

// Threshold is the default minimum rise, in degrees Celsius, across the
// ring to report "rising". DS18B20 resolves to 0.0625C, so this is
// comfortably above the sensor's own quantization noise.
const Threshold = 0.12

// Detector maintains a fixed 5-sample ring buffer and reports whether the
// temperature has risen by at least Threshold over the last three sample
// intervals.
//
// The buffer is always initialized to the first sample pushed — there is
// no "empty" or zero state, matching spec.md's TemperatureHistory
// invariant.
type Detector struct {
	buf       [HistoryLen]float64
	cnt       int
	threshold float64
	primed    bool
}

// New returns a Detector using the default rise threshold.
func New() *Detector {
	return &Detector{threshold: Threshold}
}

// NewWithThreshold returns a Detector using a caller-supplied threshold,
// for SLOT_SIZE_MIN-style build-time configuration.
func NewWithThreshold(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Push records a new sample and reports whether the temperature is
// rising. The index arithmetic is normative (spec.md §4.1): advance the
// write cursor, overwrite the oldest slot, then compare against the
// sample two slots ahead of the cursor in the 5-element ring — i.e. the
// one pushed three calls earlier.
func (d *Detector) Push(sample float64) bool {
	if !d.primed {
		for i := range d.buf {
			d.buf[i] = sample
		}
		d.primed = true
	}

	d.cnt = (d.cnt + 1) % HistoryLen
	d.buf[d.cnt] = sample

	prior := d.buf[(d.cnt+2)%HistoryLen]
	delta := d.buf[d.cnt] - prior

	return delta >= d.threshold
}

// Reset reinitializes the ring to a single value, as if freshly
// constructed — used when a sensor comes back online after being
// disabled and its history is no longer trustworthy.
func (d *Detector) Reset(sample float64) {
	d.primed = false
	d.cnt = 0
	d.Push(sample)
}
