package timerwheel

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/pumpcontroller"
	"github.com/wwpump/controller/internal/timetable"
)

type stubSensor struct{}

func (stubSensor) ReadTemperature() (float64, error) { return 40.0, nil }

type stubDetector struct{}

func (stubDetector) Push(float64) bool { return false }

type stubRelay struct{}

func (stubRelay) On()  {}
func (stubRelay) Off() {}

type stubIndicator struct{}

func (stubIndicator) Show(pumpcontroller.IndicatorState) {}
func (stubIndicator) Heartbeat()                         {}

func newTestWheel(t *testing.T, tickMs int) *Wheel {
	clk := clock.Real{}
	tt := timetable.New(clk, 15)
	path := filepath.Join(t.TempDir(), "timetable")
	pc := pumpcontroller.New(clk, stubSensor{}, stubDetector{}, stubRelay{}, stubIndicator{}, tt, path)
	return New(pc, tt, clk, tickMs)
}

func TestRunDispatchesTicksUntilCancelled(t *testing.T) {
	w := newTestWheel(t, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(80 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestArmScheduledDisarmsPreviousTimerBeforeRearming(t *testing.T) {
	w := newTestWheel(t, 1000)

	w.armScheduled(w.clk.Now())
	assert.Nil(t, w.scheduledTimer, "empty timetable leaves the one-shot disarmed")

	w.tt.Record(w.clk.Now()+3600, true)
	w.armScheduled(w.clk.Now())
	first := w.scheduledTimer
	assert.NotNil(t, first)

	w.armScheduled(w.clk.Now())
	assert.NotSame(t, first, w.scheduledTimer, "re-arming must replace, not stack, the previous timer")
}

func TestSendDropsOnFullMailboxWithoutBlocking(t *testing.T) {
	w := newTestWheel(t, 1000)

	for i := 0; i < mailboxSize; i++ {
		w.send(eventTick)
	}

	done := make(chan struct{})
	go func() {
		w.send(eventTick) // would block forever on an unbuffered/blocking send
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a full mailbox instead of dropping")
	}
}
