package risingdetector

import "testing"

func TestFirstPushNeverRising(t *testing.T) {
	d := New()
	if d.Push(42.0) {
		t.Fatal("first push on a freshly-initialized buffer must not report rising")
	}
}

func TestFlatSignalNeverRises(t *testing.T) {
	d := New()
	for i := 0; i < 20; i++ {
		if d.Push(50.0) {
			t.Fatalf("push %d: flat signal reported rising", i)
		}
	}
}

// TestRecordedSequence pins the normative index arithmetic against a
// hand-worked sample sequence: buf[cnt] - buf[(cnt+2)%5].
func TestRecordedSequence(t *testing.T) {
	d := New()

	// Priming push: buffer becomes [20,20,20,20,20], cnt=1, buf[1]=20.
	if got := d.Push(20.0); got {
		t.Fatalf("priming push: got rising=true, want false")
	}

	type step struct {
		sample float64
		want   bool
	}
	// cnt sequence after priming: 1 -> 2 -> 3 -> 4 -> 0 -> 1 ...
	steps := []step{
		{20.0, false}, // cnt=2, buf=[20,20,20,20,20], prior=buf[4]=20, Δ=0
		{20.0, false}, // cnt=3, prior=buf[0]=20, Δ=0
		{20.05, false}, // cnt=4, buf[4]=20.05, prior=buf[1]=20, Δ=0.05 < 0.12
		{20.20, true},  // cnt=0, buf[0]=20.20, prior=buf[2]=20, Δ=0.20 >= 0.12
		{20.20, true},  // cnt=1, buf[1]=20.20, prior=buf[3]=20, Δ=0.20 >= 0.12
	}
	for i, s := range steps {
		got := d.Push(s.sample)
		if got != s.want {
			t.Fatalf("step %d: Push(%v) = %v, want %v", i, s.sample, got, s.want)
		}
	}
}

func TestResetReinitializes(t *testing.T) {
	d := New()
	d.Push(20.0)
	d.Push(20.5)
	d.Reset(99.0)
	if d.Push(99.0) {
		t.Fatal("push immediately after Reset must not report rising")
	}
}
