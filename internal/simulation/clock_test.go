package simulation

import (
	"testing"
	"time"
)

func TestManualClockFiresInOrder(t *testing.T) {
	c := NewManualClock(epoch)
	var order []string

	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	c.AfterFunc(time.Second, func() { order = append(order, "a") })
	c.AfterFunc(2*time.Second, func() {
		order = append(order, "b")
		// Scheduled from a callback and still due within this Advance.
		c.AfterFunc(500*time.Millisecond, func() { order = append(order, "b2") })
	})

	c.Advance(5 * time.Second)
	want := []string{"a", "b", "b2", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if !c.Now().Equal(epoch.Add(5 * time.Second)) {
		t.Errorf("Now() = %v", c.Now())
	}
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop() = false for pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop() = true")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d", c.Pending())
	}
}

func TestManualClockNotDueYet(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	c.AfterFunc(2*time.Second, func() { fired = true })

	c.Advance(1999 * time.Millisecond)
	if fired {
		t.Fatal("timer fired early")
	}
	c.Advance(time.Millisecond)
	if !fired {
		t.Error("timer did not fire when due")
	}
}
