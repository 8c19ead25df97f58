package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a Scheduler backed by a single goroutine and wall-clock timers.
type Loop struct {
	tasks     chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), 64),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case f := <-l.tasks:
			f()
		case <-l.quit:
			return
		}
	}
}

func (l *Loop) post(f func()) bool {
	select {
	case l.tasks <- f:
		return true
	case <-l.quit:
		return false
	}
}

func (l *Loop) Do(f func()) {
	ran := make(chan struct{})
	if !l.post(func() {
		defer close(ran)
		f()
	}) {
		return
	}
	select {
	case <-ran:
	case <-l.done:
	}
}

// Post queues f without waiting for it.
func (l *Loop) Post(f func()) {
	l.post(f)
}

type loopTimer struct {
	stopped atomic.Bool
	timer   *time.Timer
	quit    chan struct{}
}

func (t *loopTimer) Stop() {
	if t.stopped.Swap(true) {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.quit != nil {
		close(t.quit)
	}
}

func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.post(func() {
			if t.stopped.Swap(true) {
				return
			}
			f()
		})
	})
	return t
}

func (l *Loop) Every(d time.Duration, f func()) Timer {
	t := &loopTimer{quit: make(chan struct{})}
	go func() {
		tk := time.NewTicker(d)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				l.post(func() {
					if !t.stopped.Load() {
						f()
					}
				})
			case <-t.quit:
				return
			case <-l.quit:
				return
			}
		}
	}()
	return t
}

// Close stops the loop. Pending timers are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.quit)
	})
	<-l.done
}
