// Package player is the preview playback collaborator for the demo: it
// plays an already-decoded buffer and reports position so the waveform's
// progress cursor has something to follow. Transport control beyond
// play/pause/seek lives with the host, not here.
package player

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/marcel-blanc/waveview/internal/extractor"
)

const (
	channelCount = 2
	frameSize    = channelCount * 2 // 16-bit stereo
)

// countingReader wraps an io.ReadSeeker and tracks bytes read.
type countingReader struct {
	reader io.ReadSeeker
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player plays one decoded buffer through oto.
type Player struct {
	pcm        []byte
	sampleRate int
	counter    *countingReader
	otoCtx     *oto.Context
	otoPlayer  *oto.Player
	duration   time.Duration
	paused     bool
	finished   bool
	monitoring bool
	done       chan struct{}
	mu         sync.Mutex
	closed     bool
}

var (
	globalOtoCtx *oto.Context
	otoRate      int
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			otoRate = sampleRate
			<-ready
		}
	})
	if otoInitErr == nil && otoRate != sampleRate {
		return nil, fmt.Errorf("audio device already opened at %d Hz", otoRate)
	}
	return globalOtoCtx, otoInitErr
}

// New creates a Player over buf and starts paused.
func New(buf *extractor.Buffer) (*Player, error) {
	pcm := interleave(buf)
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty audio buffer")
	}

	ctx, err := initOto(buf.SampleRate)
	if err != nil {
		return nil, err
	}

	bytesPerSec := buf.SampleRate * frameSize
	dur := time.Duration(float64(len(pcm)) / float64(bytesPerSec) * float64(time.Second))

	p := &Player{
		pcm:        pcm,
		sampleRate: buf.SampleRate,
		counter:    &countingReader{reader: bytes.NewReader(pcm)},
		otoCtx:     ctx,
		duration:   dur,
		done:       make(chan struct{}),
		paused:     true,
	}
	p.otoPlayer = ctx.NewPlayer(p.counter)
	return p, nil
}

// interleave converts per-channel float64 PCM to 16-bit stereo LE. Mono is
// duplicated; channels beyond two are dropped.
func interleave(buf *extractor.Buffer) []byte {
	frames := buf.Frames()
	if frames == 0 {
		return nil
	}
	left := buf.Channels[0]
	right := left
	if len(buf.Channels) > 1 {
		right = buf.Channels[1]
	}

	out := make([]byte, frames*frameSize)
	for i := 0; i < frames; i++ {
		l := sampleToInt16(left[i])
		r := sampleToInt16(right[i])
		out[i*4] = byte(l)
		out[i*4+1] = byte(uint16(l) >> 8)
		out[i*4+2] = byte(r)
		out[i*4+3] = byte(uint16(r) >> 8)
	}
	return out
}

func sampleToInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// Play starts or resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.paused {
		p.paused = false
		p.otoPlayer.Play()
		if !p.monitoring {
			p.monitoring = true
			go p.monitor()
		}
	}
}

// monitor is the single end-of-track watcher. It outlives pauses and exits
// only on Close, so the done channel is never closed twice.
func (p *Player) monitor() {
	for {
		p.checkEnd()
		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// checkEnd marks the track finished and closes the done channel once the
// cursor has consumed the whole buffer. Seeking back re-arms the channel.
func (p *Player) checkEnd() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.paused || p.finished {
		return
	}
	if p.counter.Pos() >= int64(len(p.pcm)) {
		p.finished = true
		close(p.done)
	}
}

// Done closes when playback reaches the end.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// TogglePause flips between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.paused {
		p.mu.Unlock()
		p.Play()
		return
	}
	p.otoPlayer.Pause()
	p.paused = true
	p.mu.Unlock()
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Duration returns the track length.
func (p *Player) Duration() time.Duration { return p.duration }

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	pos := p.counter.Pos()
	bytesPerSec := p.sampleRate * frameSize
	return time.Duration(float64(pos) / float64(bytesPerSec) * float64(time.Second))
}

// Progress returns playback position as a [0, 1] fraction.
func (p *Player) Progress() float64 {
	if len(p.pcm) == 0 {
		return 0
	}
	v := float64(p.counter.Pos()) / float64(len(p.pcm))
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SeekTo jumps to a [0, 1] fraction of the track. The oto player is
// recreated to flush its buffered audio.
func (p *Player) SeekTo(progress float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if !p.seekLocked(progress) {
		return
	}

	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// seekLocked moves the read cursor to a frame-aligned [0, 1] fraction and,
// when the track had already finished, re-arms the done channel so the next
// run to the end signals again. Callers hold p.mu.
func (p *Player) seekLocked(progress float64) bool {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	newPos := int64(progress * float64(len(p.pcm)))
	newPos -= newPos % frameSize

	if _, err := p.counter.reader.Seek(newPos, io.SeekStart); err != nil {
		return false
	}
	p.counter.SetPos(newPos)

	if p.finished {
		p.finished = false
		p.done = make(chan struct{})
	}
	return true
}

// Close releases the playback resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
}
