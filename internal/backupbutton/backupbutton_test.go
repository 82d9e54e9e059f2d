package backupbutton

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/timetable"
)

type fakeIndicator struct{ blinks int }

func (f *fakeIndicator) BlinkAck() { f.blinks++ }

type fakeBackupLog struct{ lines []int64 }

func (f *fakeBackupLog) LogBackupAck(now int64) error {
	f.lines = append(f.lines, now)
	return nil
}

func newButton(t *testing.T, now int64) (*Button, *clock.Mock, *fakeIndicator, *fakeBackupLog) {
	clk := clock.NewMock(now)
	tt := timetable.New(clk, 15)
	tt.Record(now, true) // non-empty so Persist actually writes
	ind := &fakeIndicator{}
	bl := &fakeBackupLog{}
	path := filepath.Join(t.TempDir(), "timetable")
	return New(clk, tt, ind, bl, path), clk, ind, bl
}

func TestPressActsAndSideEffectsFire(t *testing.T) {
	b, _, ind, bl := newButton(t, 1000)

	acted := b.Press()

	assert.True(t, acted)
	assert.Equal(t, 1, ind.blinks)
	assert.Len(t, bl.lines, 1)
	assert.FileExists(t, b.persistPath)
}

func TestPressWithinDebounceIsIgnored(t *testing.T) {
	b, clk, ind, bl := newButton(t, 1000)

	b.Press()
	clk.Advance(DebounceSeconds - 1)
	acted := b.Press()

	assert.False(t, acted)
	assert.Equal(t, 1, ind.blinks, "second, debounced press must not blink again")
	assert.Len(t, bl.lines, 1)
}

func TestPressAfterDebounceWindowActsAgain(t *testing.T) {
	b, clk, ind, _ := newButton(t, 1000)

	b.Press()
	clk.Advance(DebounceSeconds)
	acted := b.Press()

	assert.True(t, acted)
	assert.Equal(t, 2, ind.blinks)
}

func TestPressWithNilBackupLogDoesNotPanic(t *testing.T) {
	clk := clock.NewMock(1000)
	tt := timetable.New(clk, 15)
	tt.Record(1000, true)
	b := New(clk, tt, &fakeIndicator{}, nil, filepath.Join(t.TempDir(), "timetable"))

	assert.NotPanics(t, func() { b.Press() })
}
