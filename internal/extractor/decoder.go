package extractor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Buffer holds fully decoded PCM, one slice per channel, samples in [-1, 1].
type Buffer struct {
	Channels   [][]float64
	SampleRate int
}

// Frames returns the per-channel sample count.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Mono mixes the buffer down to a single channel by averaging channels 0
// and 1. Channels beyond the first two are ignored; a mono buffer passes
// through unchanged.
func (b *Buffer) Mono() []float64 {
	if len(b.Channels) == 0 {
		return nil
	}
	if len(b.Channels) == 1 {
		return b.Channels[0]
	}
	left, right := b.Channels[0], b.Channels[1]
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = (left[i] + right[i]) / 2
	}
	return out
}

// SupportedExts lists the containers decoded natively, without ffmpeg.
var SupportedExts = []string{".mp3", ".wav", ".flac", ".ogg"}

// DecodeFile opens path and decodes it by extension. Ogg containers that
// fail direct Vorbis decode, and any extension without a native decoder,
// fall back to a generic ffmpeg PCM pass.
func DecodeFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		return decodeMP3(f)
	case ".wav":
		return decodeWAV(f)
	case ".flac":
		return decodeFLAC(f)
	case ".ogg", ".oga", ".opus":
		buf, err := decodeOGG(f)
		if err == nil {
			return buf, nil
		}
		// Opus shares the Ogg container but is not Vorbis; re-encode
		// through ffmpeg when available.
		if fb, ferr := decodeFFmpeg(path); ferr == nil {
			return fb, nil
		}
		return nil, err
	default:
		buf, err := decodeFFmpeg(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
		return buf, nil
	}
}

func decodeMP3(f *os.File) (*Buffer, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	// go-mp3 always emits 16-bit stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	frames := len(raw) / 4
	if frames == 0 {
		return nil, ErrInvalidBuffer
	}

	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		off := i * 4
		left[i] = float64(int16(uint16(raw[off])|uint16(raw[off+1])<<8)) / 32768.0
		right[i] = float64(int16(uint16(raw[off+2])|uint16(raw[off+3])<<8)) / 32768.0
	}
	return &Buffer{Channels: [][]float64{left, right}, SampleRate: dec.SampleRate()}, nil
}

func decodeWAV(f *os.File) (*Buffer, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading WAV PCM data: %v", ErrDecodingFailed, err)
	}
	channels := pcm.Format.NumChannels
	if channels == 0 || len(pcm.Data) == 0 {
		return nil, ErrInvalidBuffer
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))
	frames := len(pcm.Data) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = float64(pcm.Data[i*channels+ch]) / scale
		}
	}
	return &Buffer{Channels: out, SampleRate: pcm.Format.SampleRate}, nil
}

func decodeFLAC(f *os.File) (*Buffer, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	channels := int(stream.Info.NChannels)
	scale := float64(int64(1) << (stream.Info.BitsPerSample - 1))
	out := make([][]float64, channels)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decoding FLAC: %v", ErrDecodingFailed, err)
		}
		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			sub := frame.Subframes[ch]
			for _, s := range sub.Samples[:sub.NSamples] {
				out[ch] = append(out[ch], float64(s)/scale)
			}
		}
	}
	if channels == 0 || len(out[0]) == 0 {
		return nil, ErrInvalidBuffer
	}
	return &Buffer{Channels: out, SampleRate: int(stream.Info.SampleRate)}, nil
}

func decodeOGG(f *os.File) (*Buffer, error) {
	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding OGG: %v", ErrDecodingFailed, err)
	}
	channels := format.Channels
	if channels == 0 || len(data) == 0 {
		return nil, ErrInvalidBuffer
	}

	frames := len(data) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = float64(data[i*channels+ch])
		}
	}
	return &Buffer{Channels: out, SampleRate: format.SampleRate}, nil
}
