package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// lookFFmpeg is a seam for tests; production resolves ffmpeg on PATH.
var lookFFmpeg = func() (string, error) { return exec.LookPath("ffmpeg") }

// ffprobeResult holds the parsed ffprobe JSON output.
type ffprobeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// probeChannels asks ffprobe for the first audio stream's layout. Errors are
// tolerated; decodeFFmpeg falls back to stereo 44.1 kHz.
func probeChannels(path string) (sampleRate, channels int) {
	sampleRate, channels = 44100, 2
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	)
	cmd.Stdin = nil

	output, err := cmd.Output()
	if err != nil {
		return
	}
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil || len(result.Streams) == 0 {
		return
	}
	if sr, err := strconv.Atoi(result.Streams[0].SampleRate); err == nil && sr > 0 {
		sampleRate = sr
	}
	if result.Streams[0].Channels > 0 {
		channels = result.Streams[0].Channels
	}
	return
}

// decodeFFmpeg re-encodes any container ffmpeg understands to s16le PCM.
// This is the best-effort path for Opus, AAC/M4A and anything else without
// a native decoder.
func decodeFFmpeg(path string) (*Buffer, error) {
	ffmpeg, err := lookFFmpeg()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found", ErrUnsupportedFormat)
	}

	sampleRate, channels := probeChannels(path)
	if channels > 2 {
		channels = 2
	}

	cmd := exec.Command(
		ffmpeg,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"pipe:1",
	)
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v", ErrDecodingFailed, firstLine(stderr.String(), err))
	}

	raw := stdout.Bytes()
	frames := len(raw) / (2 * channels)
	if frames == 0 {
		return nil, ErrInvalidBuffer
	}

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			s := int16(uint16(raw[off]) | uint16(raw[off+1])<<8)
			out[ch][i] = float64(s) / 32768.0
		}
	}
	return &Buffer{Channels: out, SampleRate: sampleRate}, nil
}

func firstLine(s string, fallback error) any {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			s = s[:i]
			break
		}
	}
	if s == "" {
		return fallback
	}
	return s
}
