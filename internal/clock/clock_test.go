package clock

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	before := time.Now()
	result := Real.Now()
	after := time.Now()

	if result.Before(before) || result.After(after) {
		t.Errorf("Now() returned %v, expected between %v and %v", result, before, after)
	}
}

func TestMockClock_Now(t *testing.T) {
	mockTime := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock := NewMockClock(mockTime)

	if result := mock.Now(); !result.Equal(mockTime) {
		t.Errorf("MockClock.Now() returned %v, expected exactly %v", result, mockTime)
	}
}

func TestMockClock_AdvanceAndSince(t *testing.T) {
	mockTime := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock := NewMockClock(mockTime)

	start := mock.Now()
	mock.Advance(1500 * time.Millisecond)

	if got := mock.Since(start); got != 1500*time.Millisecond {
		t.Errorf("Since() = %v, expected 1.5s", got)
	}

	mock.Set(mockTime)
	if got := mock.Since(start); got != 0 {
		t.Errorf("Since() after Set = %v, expected 0", got)
	}
}

func TestOrReal(t *testing.T) {
	if OrReal(nil) != Real {
		t.Error("OrReal(nil) should return the system clock")
	}
	mock := NewMockClock(time.Unix(0, 0))
	if OrReal(mock) != mock {
		t.Error("OrReal should keep an injected clock")
	}
}
