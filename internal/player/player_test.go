package player

import (
	"bytes"
	"testing"

	"github.com/marcel-blanc/waveview/internal/extractor"
)

func TestInterleaveStereo(t *testing.T) {
	buf := &extractor.Buffer{
		Channels:   [][]float64{{0.5, -0.5}, {1.0, 0.0}},
		SampleRate: 44100,
	}
	out := interleave(buf)
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}

	want := []int16{16383, 32767, -16383, 0}
	for i, w := range want {
		got := int16(uint16(out[i*2]) | uint16(out[i*2+1])<<8)
		if got != w {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestInterleaveMonoDuplicates(t *testing.T) {
	buf := &extractor.Buffer{
		Channels:   [][]float64{{0.25}},
		SampleRate: 44100,
	}
	out := interleave(buf)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	left := int16(uint16(out[0]) | uint16(out[1])<<8)
	right := int16(uint16(out[2]) | uint16(out[3])<<8)
	if left != right {
		t.Fatalf("mono frame = (%d, %d), want duplicated channels", left, right)
	}
}

func TestInterleaveEmpty(t *testing.T) {
	if out := interleave(&extractor.Buffer{}); out != nil {
		t.Fatalf("interleave(empty) = %v, want nil", out)
	}
}

func TestSampleToInt16Clamps(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2.5, 32767},
		{-2.5, -32767},
		{0.5, 16383},
	}
	for _, tt := range tests {
		if got := sampleToInt16(tt.in); got != tt.want {
			t.Fatalf("sampleToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestProgressBounds(t *testing.T) {
	p := &Player{
		pcm:        make([]byte, 100),
		sampleRate: 44100,
		counter:    &countingReader{},
	}
	if got := p.Progress(); got != 0 {
		t.Fatalf("Progress() at start = %v, want 0", got)
	}
	p.counter.SetPos(50)
	if got := p.Progress(); got != 0.5 {
		t.Fatalf("Progress() = %v, want 0.5", got)
	}
	p.counter.SetPos(500)
	if got := p.Progress(); got != 1 {
		t.Fatalf("Progress() overshoot = %v, want clamped 1", got)
	}
}

func TestFinishSeekBackFinishAgain(t *testing.T) {
	pcm := make([]byte, 64)
	p := &Player{
		pcm:        pcm,
		sampleRate: 44100,
		counter:    &countingReader{reader: bytes.NewReader(pcm)},
		done:       make(chan struct{}),
	}

	p.counter.SetPos(int64(len(pcm)))
	p.checkEnd()
	select {
	case <-p.Done():
	default:
		t.Fatal("done not closed at end of buffer")
	}

	// A second pass over the end must be a no-op, not a double close.
	p.checkEnd()

	p.mu.Lock()
	ok := p.seekLocked(0.5)
	p.mu.Unlock()
	if !ok {
		t.Fatal("seek failed")
	}
	if p.finished {
		t.Fatal("still marked finished after seeking back")
	}
	select {
	case <-p.Done():
		t.Fatal("done channel not re-armed by the seek")
	default:
	}
	if got := p.counter.Pos(); got != 32 {
		t.Fatalf("cursor = %d, want 32", got)
	}

	p.counter.SetPos(int64(len(pcm)))
	p.checkEnd()
	select {
	case <-p.Done():
	default:
		t.Fatal("second run to the end did not signal")
	}
}

func TestCheckEndSkippedWhilePaused(t *testing.T) {
	pcm := make([]byte, 16)
	p := &Player{
		pcm:     pcm,
		counter: &countingReader{reader: bytes.NewReader(pcm)},
		done:    make(chan struct{}),
		paused:  true,
	}
	p.counter.SetPos(int64(len(pcm)))
	p.checkEnd()
	select {
	case <-p.Done():
		t.Fatal("done closed while paused")
	default:
	}
}
