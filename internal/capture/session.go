// Package capture pulls PCM buffers from a live input source, smooths them
// into a single instantaneous amplitude, and emits that amplitude at a
// fixed cadence.
package capture

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// State is the capture session lifecycle.
type State uint8

const (
	Idle State = iota
	Requesting
	Active
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Source delivers mono PCM buffers in [-1, 1]. Open calls onBuffer from the
// source's own goroutine until Close. Pause suspends delivery without
// tearing the stream down.
type Source interface {
	Open(onBuffer func([]float64)) error
	Pause() error
	Resume() error
	Close() error
}

const (
	// DefaultEmitInterval is the amplitude emission cadence. Emission is
	// decoupled from buffer arrival: several buffers may update the
	// smoothed value between ticks, and only the latest is emitted.
	DefaultEmitInterval = 50 * time.Millisecond

	// smoothingAlpha is the exponential smoothing factor applied per
	// buffer.
	smoothingAlpha = 0.25
)

// Session owns one input source and its emission timer. One session may be
// active per waveform model.
type Session struct {
	mu       sync.Mutex
	state    State
	src      Source
	interval time.Duration
	smoothed float64
	done     chan struct{}
	out      chan float64
}

// NewSession wraps src. A zero interval selects DefaultEmitInterval.
func NewSession(src Source, interval time.Duration) *Session {
	if interval <= 0 {
		interval = DefaultEmitInterval
	}
	return &Session{
		src:      src,
		interval: interval,
		out:      make(chan float64, 1),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Amplitudes is the emission channel. Depth one: only the latest value
// matters, a slow consumer never blocks the timer.
func (s *Session) Amplitudes() <-chan float64 { return s.out }

// Start opens the source and begins emitting. Valid from Idle or Stopped.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != Idle && s.state != Stopped {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot start capture: session is %s", state)
	}
	s.state = Requesting
	s.mu.Unlock()

	if err := s.src.Open(s.process); err != nil {
		s.mu.Lock()
		s.state = Idle
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = Active
	s.smoothed = 0
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.emitLoop(s.done)
	return nil
}

// Pause suspends emission and buffer processing. Valid only from Active.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return fmt.Errorf("cannot pause capture: session is %s", s.state)
	}
	if err := s.src.Pause(); err != nil {
		return err
	}
	s.state = Paused
	return nil
}

// Resume restarts a paused session. Valid only from Paused.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return fmt.Errorf("cannot resume capture: session is %s", s.state)
	}
	if err := s.src.Resume(); err != nil {
		return err
	}
	s.state = Active
	return nil
}

// Stop tears the source down and cancels the timer. Late buffer callbacks
// after Stop are no-ops.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != Active && s.state != Paused {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot stop capture: session is %s", state)
	}
	s.state = Stopped
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
	}
	return s.src.Close()
}

// process ingests one buffer from the source callback thread. The state
// check under the lock makes callbacks that raced a Stop or Pause
// harmless.
func (s *Session) process(buf []float64) {
	rms := bufferRMS(buf)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	s.smoothed = s.smoothed*(1-smoothingAlpha) + rms*smoothingAlpha
}

func (s *Session) emitLoop(done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != Active {
				s.mu.Unlock()
				continue
			}
			v := s.smoothed
			s.mu.Unlock()
			s.emit(v)
		}
	}
}

// emit delivers v, displacing an unconsumed older value.
func (s *Session) emit(v float64) {
	select {
	case s.out <- v:
	default:
		select {
		case <-s.out:
		default:
		}
		select {
		case s.out <- v:
		default:
		}
	}
}

// Smoothed returns the current smoothed amplitude.
func (s *Session) Smoothed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smoothed
}

func bufferRMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, v := range buf {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}
