// Package timetable implements the learned weekly schedule of hot-water
// demand: a sorted set of 15-minute (configurable) slots with reference
// counts, plus the query that tells the pump controller when to prime the
// loop next.
package timetable

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/model"
)

// epochMonday is midnight 1970-01-05 UTC, a Monday: the origin that
// slotBase and rawBase measure from. NextAlarmDelay only takes
// differences of those keys, so the offset cancels and is never added.
const epochMonday = 345600 // 4 * 86400 seconds after the Unix epoch

const secondsPerWeek = 7 * 86400

// Timetable is an ordered, deduplicated set of Slots. All mutation is
// expected to happen on the single control-loop goroutine; the mutex
// exists only to let the diagnostics API and backup-button flush read a
// consistent snapshot concurrently.
type Timetable struct {
	mu       sync.Mutex
	slots    []model.Slot
	slotSize int // minutes; must divide 60
	clk      clock.Clock
}

// New returns an empty Timetable quantizing to slotSize-minute buckets.
func New(clk clock.Clock, slotSizeMin int) *Timetable {
	if 60%slotSizeMin != 0 {
		panic("timetable: SLOT_SIZE_MIN must divide 60")
	}
	return &Timetable{slotSize: slotSizeMin, clk: clk}
}

// Record commits a demand observation (increase=true) or a scheduled-run
// completion (increase=false) at wall-time t. It returns true if this
// observation created the table's first slot, so the caller can arm the
// scheduler for the first time.
func (tt *Timetable) Record(t int64, increase bool) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	key := tt.slotFor(t)
	wasEmpty := len(tt.slots) == 0

	idx := tt.indexOf(key)
	if idx < 0 {
		if !increase {
			// Nothing to decrement against: the scheduled run's
			// target time falls in a slot that holds no learned entry.
			log.Debug().
				Int("weekday", key.Weekday).Int("hour", key.Hour).Int("minute", key.Minute).
				Msg("timetable: decrement requested for slot that does not exist")
			return false
		}
		key.Count = 1
		tt.insertSorted(key)
		log.Debug().
			Int("weekday", key.Weekday).Int("hour", key.Hour).Int("minute", key.Minute).
			Msg("timetable: new slot learned")
		return wasEmpty
	}

	if increase {
		tt.slots[idx].Count++
	} else {
		tt.slots[idx].Count--
		if tt.slots[idx].Count <= 0 {
			tt.slots = append(tt.slots[:idx], tt.slots[idx+1:]...)
			log.Debug().
				Int("weekday", key.Weekday).Int("hour", key.Hour).Int("minute", key.Minute).
				Msg("timetable: slot refcount reached zero, removed")
		}
	}
	return false
}

// slotFor quantizes t down to its slot coordinates: minute rounded down
// to the nearest slotSize, second always 0.
func (tt *Timetable) slotFor(t int64) model.Slot {
	lt := tt.clk.Localtime(t)
	return model.Slot{
		Weekday: lt.Weekday,
		Hour:    lt.Hour,
		Minute:  (lt.Minute / tt.slotSize) * tt.slotSize,
		Second:  0,
	}
}

// indexOf returns the index of the slot sharing key's coordinates, or -1.
// Callers must hold tt.mu.
func (tt *Timetable) indexOf(key model.Slot) int {
	for i, s := range tt.slots {
		if s.SameCoordinates(key) {
			return i
		}
	}
	return -1
}

// insertSorted inserts s keeping tt.slots in ascending
// (Weekday, Hour, Minute, Second) order. Callers must hold tt.mu.
func (tt *Timetable) insertSorted(s model.Slot) {
	i := 0
	for i < len(tt.slots) && tt.slots[i].Before(s) {
		i++
	}
	tt.slots = append(tt.slots, model.Slot{})
	copy(tt.slots[i+1:], tt.slots[i:])
	tt.slots[i] = s
}

// slotBase returns the canonical weekly ordering key (seconds since
// epochMonday) for a slot's coordinates.
func slotBase(s model.Slot) int64 {
	return int64(s.Weekday)*86400 + int64(s.Hour)*3600 + int64(s.Minute)*60 + int64(s.Second)
}

// rawBase is the same ordering key computed from a full-precision
// localtime decomposition, seconds included and unquantized. Unlike
// slotFor, it is NOT rounded down to a slot boundary: next_alarm_delay
// measures from the caller's actual instant, not from the slot it falls
// inside.
func rawBase(lt clock.Localtime) int64 {
	return int64(lt.Weekday)*86400 + int64(lt.Hour)*3600 + int64(lt.Minute)*60 + int64(lt.Sec)
}

// NextAlarmDelay returns the number of seconds from t until the start of
// the next upcoming slot, wrapping across the week boundary. ok is false
// if the table is empty.
func (tt *Timetable) NextAlarmDelay(t int64) (delay int64, ok bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if len(tt.slots) == 0 {
		return 0, false
	}

	nowBase := rawBase(tt.clk.Localtime(t))

	best := int64(-1)
	for _, s := range tt.slots {
		sBase := slotBase(s)
		var d int64
		if sBase <= nowBase {
			d = sBase + secondsPerWeek - nowBase
		} else {
			d = sBase - nowBase
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best, true
}

// Slots returns a snapshot copy of the current slot list, in sorted
// order. Safe for concurrent use.
func (tt *Timetable) Slots() []model.Slot {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	out := make([]model.Slot, len(tt.slots))
	copy(out, tt.slots)
	return out
}

// Len reports the number of learned slots.
func (tt *Timetable) Len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.slots)
}

// replaceAll swaps in a freshly loaded slot list. Used by Load.
func (tt *Timetable) replaceAll(slots []model.Slot) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.slots = slots
}
