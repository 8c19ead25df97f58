package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })
	m.Advance(25 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", got)
	}
	if m.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", m.Pending())
	}
	m.Advance(5 * time.Millisecond)
	if len(got) != 3 {
		t.Fatalf("fired = %v, want 3 callbacks", got)
	}
	if m.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", m.Pending())
	}
}

func TestManualEveryAndStop(t *testing.T) {
	m := NewManual()
	n := 0
	var tm Timer
	tm = m.Every(5*time.Millisecond, func() {
		n++
		if n == 4 {
			tm.Stop()
		}
	})
	m.Advance(time.Second)
	if n != 4 {
		t.Fatalf("ticks = %d, want 4", n)
	}
	if m.Now() != time.Second {
		t.Fatalf("now = %v, want 1s", m.Now())
	}
}

func TestManualStoppedTimerNeverFires(t *testing.T) {
	m := NewManual()
	fired := false
	tm := m.AfterFunc(time.Millisecond, func() { fired = true })
	tm.Stop()
	m.Advance(time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestManualTimerScheduledFromCallback(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.AfterFunc(10*time.Millisecond, func() {
		at = append(at, m.Now())
		m.AfterFunc(10*time.Millisecond, func() { at = append(at, m.Now()) })
	})
	m.Advance(100 * time.Millisecond)
	if len(at) != 2 || at[0] != 10*time.Millisecond || at[1] != 20*time.Millisecond {
		t.Fatalf("callback times = %v, want [10ms 20ms]", at)
	}
}

func TestLoopDoRunsOnLoop(t *testing.T) {
	l := NewLoop()
	defer l.Close()
	n := 0
	for i := 0; i < 10; i++ {
		l.Do(func() { n++ })
	}
	if n != 10 {
		t.Fatalf("n = %d, want 10", n)
	}
}

func TestLoopAfterFuncAndStop(t *testing.T) {
	l := NewLoop()
	defer l.Close()
	fired := make(chan struct{})
	l.Do(func() {
		l.AfterFunc(time.Millisecond, func() { close(fired) })
	})
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not fire")
	}

	var late atomic.Bool
	l.Do(func() {
		tm := l.AfterFunc(20*time.Millisecond, func() { late.Store(true) })
		tm.Stop()
	})
	time.Sleep(60 * time.Millisecond)
	l.Do(func() {})
	if late.Load() {
		t.Fatalf("stopped timer fired")
	}
}

func TestLoopEvery(t *testing.T) {
	l := NewLoop()
	defer l.Close()
	ticks := make(chan struct{}, 16)
	var tm Timer
	l.Do(func() {
		tm = l.Every(time.Millisecond, func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		})
	})
	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d missing", i)
		}
	}
	l.Do(func() { tm.Stop() })
}

func TestLoopDoAfterClose(t *testing.T) {
	l := NewLoop()
	l.Close()
	ran := false
	l.Do(func() { ran = true })
	if ran {
		t.Fatalf("Do ran after Close")
	}
}
