package capture

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// stubSource records lifecycle calls and exposes the buffer callback so
// tests can push PCM by hand.
type stubSource struct {
	openErr  error
	onBuffer func([]float64)
	opened   bool
	paused   bool
	closed   bool
}

func (s *stubSource) Open(onBuffer func([]float64)) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = true
	s.onBuffer = onBuffer
	return nil
}

func (s *stubSource) Pause() error  { s.paused = true; return nil }
func (s *stubSource) Resume() error { s.paused = false; return nil }
func (s *stubSource) Close() error  { s.closed = true; return nil }

func TestSessionLifecycle(t *testing.T) {
	src := &stubSource{}
	s := NewSession(src, time.Hour)

	if s.State() != Idle {
		t.Fatalf("initial state = %s, want idle", s.State())
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.State() != Active {
		t.Fatalf("state = %s after Start, want active", s.State())
	}
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if s.State() != Paused || !src.paused {
		t.Fatalf("state = %s paused=%v, want paused session and source", s.State(), src.paused)
	}
	if err := s.Resume(); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if s.State() != Active {
		t.Fatalf("state = %s after Resume, want active", s.State())
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.State() != Stopped || !src.closed {
		t.Fatalf("state = %s closed=%v, want stopped session and closed source", s.State(), src.closed)
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Session) error
	}{
		{"pause before start", func(s *Session) error { return s.Pause() }},
		{"resume before start", func(s *Session) error { return s.Resume() }},
		{"stop before start", func(s *Session) error { return s.Stop() }},
		{"resume while active", func(s *Session) error {
			if err := s.Start(); err != nil {
				return err
			}
			return s.Resume()
		}},
		{"double start", func(s *Session) error {
			if err := s.Start(); err != nil {
				return err
			}
			return s.Start()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&stubSource{}, time.Hour)
			if err := tt.run(s); err == nil {
				t.Fatal("expected a transition error, got nil")
			}
		})
	}
}

func TestSessionRestartAfterStop(t *testing.T) {
	s := NewSession(&stubSource{}, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() after Stop error = %v", err)
	}
	if s.State() != Active {
		t.Fatalf("state = %s, want active", s.State())
	}
}

func TestOpenFailureReturnsToIdle(t *testing.T) {
	wantErr := errors.New("device busy")
	s := NewSession(&stubSource{openErr: wantErr}, time.Hour)
	if err := s.Start(); !errors.Is(err, wantErr) {
		t.Fatalf("Start() error = %v, want %v", err, wantErr)
	}
	if s.State() != Idle {
		t.Fatalf("state = %s after failed start, want idle", s.State())
	}
}

func TestSmoothingAppliesEMA(t *testing.T) {
	src := &stubSource{}
	s := NewSession(src, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	src.onBuffer([]float64{0.5, -0.5, 0.5, -0.5}) // RMS = 0.5
	want := 0.5 * smoothingAlpha
	if got := s.Smoothed(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Smoothed() = %v, want %v", got, want)
	}

	src.onBuffer([]float64{1, -1}) // RMS = 1
	want = want*(1-smoothingAlpha) + 1*smoothingAlpha
	if got := s.Smoothed(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Smoothed() after second buffer = %v, want %v", got, want)
	}
}

func TestLateBufferAfterStopIsNoOp(t *testing.T) {
	src := &stubSource{}
	s := NewSession(src, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	src.onBuffer([]float64{0.5, 0.5})
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	before := s.Smoothed()
	src.onBuffer([]float64{1, 1, 1, 1}) // in-flight callback racing Stop
	if got := s.Smoothed(); got != before {
		t.Fatalf("Smoothed() = %v after late buffer, want unchanged %v", got, before)
	}
}

func TestBufferIgnoredWhilePaused(t *testing.T) {
	src := &stubSource{}
	s := NewSession(src, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	src.onBuffer([]float64{1, 1})
	if got := s.Smoothed(); got != 0 {
		t.Fatalf("Smoothed() = %v while paused, want 0", got)
	}
}

func TestEmitDeliversLatestValue(t *testing.T) {
	src := &stubSource{}
	s := NewSession(src, 5*time.Millisecond)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	src.onBuffer([]float64{0.8, -0.8})
	select {
	case v := <-s.Amplitudes():
		if v <= 0 {
			t.Fatalf("emitted %v, want > 0", v)
		}
	case <-time.After(time.Second):
		t.Fatal("no amplitude emitted within 1s")
	}
}

func TestEmitDisplacesStaleValue(t *testing.T) {
	s := NewSession(&stubSource{}, time.Hour)
	s.emit(0.1)
	s.emit(0.9)
	if v := <-s.Amplitudes(); v != 0.9 {
		t.Fatalf("got %v, want the latest value 0.9", v)
	}
}

func TestClassifyStartupFailure(t *testing.T) {
	if err := classifyStartupFailure("pulse: access denied by policy\n"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if err := classifyStartupFailure("no such device\n"); !errors.Is(err, ErrCaptureSetupFailed) {
		t.Fatalf("err = %v, want ErrCaptureSetupFailed", err)
	}
	if err := classifyStartupFailure(""); !strings.Contains(err.Error(), "input device unavailable") {
		t.Fatalf("err = %v, want placeholder detail", err)
	}
}
