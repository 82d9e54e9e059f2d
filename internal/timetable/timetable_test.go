package timetable

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wwpump/controller/internal/clock"
)

// Monday 2026-07-27 00:00:00 UTC-ish epoch anchor used across tests.
// (Chosen so Localtime().Weekday == 0; exact date doesn't matter.)
const mondayMidnight int64 = 1785110400

func mondayAt(hour, min, sec int) int64 {
	return mondayMidnight + int64(hour)*3600 + int64(min)*60 + int64(sec)
}

func TestRecordCreatesFirstSlotAndReportsFirst(t *testing.T) {
	tt := New(clock.Real{}, 15)
	t0 := mondayAt(7, 30, 5)

	first := tt.Record(t0, true)
	assert.True(t, first, "first recorded slot should report first=true")

	slots := tt.Slots()
	assert.Len(t, slots, 1)
	assert.Equal(t, 30, slots[0].Minute)
	assert.Equal(t, 0, slots[0].Second)
	assert.Equal(t, 1, slots[0].Count)
}

func TestRecordSameSlotIncrementsWithoutDuplicate(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(7, 30, 5), true)
	second := tt.Record(mondayAt(7, 38, 0), true) // same 15-min bucket

	assert.False(t, second)
	slots := tt.Slots()
	assert.Len(t, slots, 1)
	assert.Equal(t, 2, slots[0].Count)
}

func TestRecordIncreaseThenDecreaseRestoresZeroAndRemoves(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(7, 30, 5), true)
	tt.Record(mondayAt(7, 30, 5), false)

	assert.Equal(t, 0, tt.Len())
}

func TestBoundaryInclusiveLowExclusiveHigh(t *testing.T) {
	tt := New(clock.Real{}, 15)
	// Low edge inclusive: exactly on the slot boundary.
	tt.Record(mondayAt(7, 30, 0), true)
	// High edge exclusive: 07:45:00 belongs to the NEXT slot, not this one.
	tt.Record(mondayAt(7, 45, 0), true)

	slots := tt.Slots()
	assert.Len(t, slots, 2)
	assert.Equal(t, 30, slots[0].Minute)
	assert.Equal(t, 45, slots[1].Minute)
}

func TestSlotsStayOrdered(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(20, 0, 0), true)
	tt.Record(mondayAt(7, 0, 0), true)
	tt.Record(mondayAt(12, 0, 0), true)

	slots := tt.Slots()
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].Before(slots[i]), "slots must be strictly ascending")
	}
}

func TestNextAlarmDelayWithinWeek(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(7, 30, 0), true)

	delay, ok := tt.NextAlarmDelay(mondayAt(6, 0, 0))
	assert.True(t, ok)
	assert.Equal(t, int64(90*60), delay) // 1.5h later the same day
}

func TestNextAlarmDelayWrapsWeek(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(7, 30, 0), true)

	// Query right at the slot start: spec says slot_base <= now_base wraps
	// to next week.
	delay, ok := tt.NextAlarmDelay(mondayAt(7, 30, 0))
	assert.True(t, ok)
	assert.Equal(t, int64(7*86400), delay)
}

func TestNextAlarmDelayEmptyTableReturnsNotOK(t *testing.T) {
	tt := New(clock.Real{}, 15)
	_, ok := tt.NextAlarmDelay(mondayAt(7, 30, 0))
	assert.False(t, ok)
}

func TestNextAlarmDelayAlwaysInRange(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(3, 15, 0), true)
	tt.Record(mondayAt(18, 45, 0), true)

	for h := 0; h < 24; h += 3 {
		delay, ok := tt.NextAlarmDelay(mondayAt(h, 0, 0))
		assert.True(t, ok)
		assert.Greater(t, delay, int64(0))
		assert.LessOrEqual(t, delay, int64(7*86400))
	}
}

func TestPersistEmptyReturnsFalseWithoutWriting(t *testing.T) {
	tt := New(clock.Real{}, 15)
	dir := t.TempDir()
	path := filepath.Join(dir, "timetable")

	wrote, err := tt.Persist(path)
	assert.NoError(t, err)
	assert.False(t, wrote)
	assert.NoFileExists(t, path)
}

func TestPersistLoadRoundTrips(t *testing.T) {
	tt := New(clock.Real{}, 15)
	tt.Record(mondayAt(7, 30, 0), true)
	tt.Record(mondayAt(7, 30, 0), true)
	tt.Record(mondayAt(20, 15, 0), true)

	dir := t.TempDir()
	path := filepath.Join(dir, "timetable")

	wrote, err := tt.Persist(path)
	assert.NoError(t, err)
	assert.True(t, wrote)

	loaded := New(clock.Real{}, 15)
	assert.NoError(t, loaded.Load(path))
	assert.Equal(t, tt.Slots(), loaded.Slots())
}

func TestLoadMissingFileIsBenignEmpty(t *testing.T) {
	tt := New(clock.Real{}, 15)
	dir := t.TempDir()
	err := tt.Load(filepath.Join(dir, "does-not-exist"))
	assert.NoError(t, err)
	assert.Equal(t, 0, tt.Len())
}
