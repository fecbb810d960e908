package core

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerFires(t *testing.T) {
	scheduler := NewScheduler()
	var fired atomic.Int32
	scheduler.After("group", 10*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatalf("fired %d times, want 1", fired.Load())
	}
}

func TestCancelledGroupNeverFires(t *testing.T) {
	t.Log("a dangling timer after teardown must be a guaranteed no-op")
	scheduler := NewScheduler()
	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		scheduler.After("group", 10*time.Millisecond, func() { fired.Add(1) })
	}
	scheduler.CancelGroup("group")
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("cancelled timers fired %d times", fired.Load())
	}
	if scheduler.Pending("group") != 0 {
		t.Fatal("handles survived the cancellation")
	}
}

func TestCancelIsScopedToGroup(t *testing.T) {
	scheduler := NewScheduler()
	var fired atomic.Int32
	scheduler.After("a", 10*time.Millisecond, func() { fired.Add(1) })
	scheduler.After("b", 10*time.Millisecond, func() { fired.Add(1) })
	scheduler.CancelGroup("a")
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatalf("fired %d times, want only group b", fired.Load())
	}
}

func TestHandleCancel(t *testing.T) {
	scheduler := NewScheduler()
	var fired atomic.Int32
	handle := scheduler.After("group", 10*time.Millisecond, func() { fired.Add(1) })
	handle.Cancel()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("cancelled handle fired")
	}
}
