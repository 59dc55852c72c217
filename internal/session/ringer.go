package session

import (
	"io"
	"os"
	"sync"
	"time"
)

// Ringer repeats the terminal bell until stopped: the completion
// signal loops until the user dismisses, extends or ends the session.
// Audio is best-effort; write failures are swallowed.
type Ringer struct {
	w io.Writer

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewRinger(w io.Writer) *Ringer {
	if w == nil {
		w = os.Stdout
	}
	return &Ringer{w: w}
}

// Start begins chiming every interval. Calling Start while already
// ringing is a no-op; exactly one chime loop runs at a time.
func (r *Ringer) Start(interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	r.stop = stop
	r.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		r.chime()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.chime()
			}
		}
	}()
}

// Stop halts the chime loop and waits for it to exit, so no callback
// survives past the call. Idempotent.
func (r *Ringer) Stop() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop = nil
	r.done = nil
	r.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Ringing reports whether the chime loop is active.
func (r *Ringer) Ringing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

func (r *Ringer) chime() {
	_, _ = r.w.Write([]byte("\a"))
}
