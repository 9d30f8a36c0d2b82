package intersection

import (
	"testing"
	"time"
)

func TestPhaseClock_FirstCallIsZero(t *testing.T) {
	src := NewManualTime(time.Unix(100, 0))
	clock := NewPhaseClock(src)

	if d := clock.Delta(); d != 0 {
		t.Errorf("Expected zero delta on first call, got %s", d)
	}
}

func TestPhaseClock_DeltaSincePreviousCall(t *testing.T) {
	src := NewManualTime(time.Unix(100, 0))
	clock := NewPhaseClock(src)
	clock.Delta()

	src.Advance(16 * time.Millisecond)
	if d := clock.Delta(); d != 16*time.Millisecond {
		t.Errorf("Expected 16ms, got %s", d)
	}

	src.Advance(250 * time.Millisecond)
	if d := clock.Delta(); d != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %s", d)
	}

	if d := clock.Delta(); d != 0 {
		t.Errorf("Expected zero delta without time passing, got %s", d)
	}
}

func TestPhaseClock_BackwardsSourceReanchors(t *testing.T) {
	src := NewManualTime(time.Unix(100, 0))
	clock := NewPhaseClock(src)
	clock.Delta()

	src.Advance(-5 * time.Second)
	if d := clock.Delta(); d != 0 {
		t.Errorf("Expected zero delta when time goes backwards, got %s", d)
	}

	src.Advance(time.Second)
	if d := clock.Delta(); d != time.Second {
		t.Errorf("Expected 1s measured from the new anchor, got %s", d)
	}
}

func TestPhaseClock_UnavailableSource(t *testing.T) {
	if d := NewPhaseClock(nil).Delta(); d != 0 {
		t.Errorf("Expected zero delta for nil source, got %s", d)
	}

	src := NewManualTime(time.Time{})
	clock := NewPhaseClock(src)
	clock.Delta()
	src.Set(time.Unix(50, 0))
	if d := clock.Delta(); d != 0 {
		t.Errorf("Expected first valid reading to start the clock, got %s", d)
	}
	src.Set(time.Time{})
	if d := clock.Delta(); d != 0 {
		t.Errorf("Expected zero delta while source is unavailable, got %s", d)
	}
	src.Set(time.Unix(51, 0))
	if d := clock.Delta(); d != time.Second {
		t.Errorf("Expected 1s once the source recovers, got %s", d)
	}
}

func TestPhaseClock_SystemTime(t *testing.T) {
	clock := NewSystemClock()
	clock.Delta()
	time.Sleep(2 * time.Millisecond)

	if d := clock.Delta(); d <= 0 {
		t.Errorf("Expected positive delta from system clock, got %s", d)
	}
}
