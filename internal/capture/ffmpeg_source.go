package capture

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	captureSampleRate = 44100
	captureChunk      = 4096 // bytes per read, ~46 ms of mono s16le
)

// FFmpegSource records the default input device through an ffmpeg
// subprocess emitting mono s16le PCM on stdout.
type FFmpegSource struct {
	mu        sync.Mutex
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    *bytes.Buffer
	paused    bool
	waitDone  chan struct{}
	closeOnce sync.Once
}

// NewFFmpegSource creates an unopened source.
func NewFFmpegSource() *FFmpegSource {
	return &FFmpegSource{}
}

// deviceArgs returns the ffmpeg input flags for the platform's default
// microphone.
func deviceArgs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"-f", "avfoundation", "-i", ":0"}
	case "windows":
		return []string{"-f", "dshow", "-i", "audio=default"}
	default:
		return []string{"-f", "pulse", "-i", "default"}
	}
}

// Open starts the subprocess and a reader goroutine that hands mono
// float64 buffers to onBuffer.
func (s *FFmpegSource) Open(onBuffer func([]float64)) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("%w: ffmpeg not found", ErrCaptureSetupFailed)
	}

	args := append([]string{"-nostdin", "-hide_banner", "-loglevel", "error"}, deviceArgs()...)
	args = append(args,
		"-ac", "1",
		"-ar", fmt.Sprint(captureSampleRate),
		"-f", "s16le",
		"pipe:1",
	)
	cmd := exec.Command(ffmpeg, args...)
	cmd.Stdin = nil
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBufferCreationFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureSetupFailed, err)
	}

	waitDone := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(waitDone)
	}()

	// A device or permission failure surfaces as an immediate exit.
	select {
	case <-waitDone:
		return classifyStartupFailure(stderr.String())
	case <-time.After(150 * time.Millisecond):
	}

	s.mu.Lock()
	s.cmd = cmd
	s.stdout = stdout
	s.stderr = stderr
	s.waitDone = waitDone
	s.mu.Unlock()

	go s.readLoop(stdout, onBuffer)
	return nil
}

func classifyStartupFailure(stderr string) error {
	msg := strings.ToLower(stderr)
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") ||
		strings.Contains(msg, "access") {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, firstLine(stderr))
	}
	return fmt.Errorf("%w: %s", ErrCaptureSetupFailed, firstLine(stderr))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "input device unavailable"
	}
	return s
}

func (s *FFmpegSource) readLoop(stdout io.Reader, onBuffer func([]float64)) {
	raw := make([]byte, captureChunk)
	for {
		n, err := io.ReadAtLeast(stdout, raw, 2)
		if n >= 2 {
			s.mu.Lock()
			paused := s.paused
			s.mu.Unlock()
			if !paused {
				samples := n / 2
				buf := make([]float64, samples)
				for i := 0; i < samples; i++ {
					v := int16(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
					buf[i] = float64(v) / 32768.0
				}
				onBuffer(buf)
			}
		}
		if err != nil {
			return
		}
	}
}

// Pause drops buffers without stopping the subprocess; the stream stays
// installed so Resume is cheap.
func (s *FFmpegSource) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	return nil
}

// Resume restarts delivery.
func (s *FFmpegSource) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	return nil
}

// Close kills the subprocess and waits for it to reap.
func (s *FFmpegSource) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		stdout, cmd, waitDone := s.stdout, s.cmd, s.waitDone
		s.mu.Unlock()
		if stdout != nil {
			_ = stdout.Close()
		}
		if cmd != nil && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		if waitDone != nil {
			<-waitDone
		}
	})
	return nil
}
