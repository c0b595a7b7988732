package extractor

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestRMS(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.5}, 0.5},
		{"negative single", []float64{-0.5}, 0.5},
		{"constant", []float64{0.3, 0.3, 0.3}, 0.3},
		{"mixed", []float64{1, -1, 1, -1}, 1},
		{"silence", []float64{0, 0, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMS(tt.samples)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("RMS(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}

func TestReduceBucketsAndRemainder(t *testing.T) {
	// 10 samples into 4 buckets: bucketSize = 2, last bucket takes the
	// remaining 4 samples.
	mono := []float64{0.1, 0.1, 0.2, 0.2, 0.3, 0.3, 0.4, 0.4, 0.5, 0.5}
	got := Reduce(mono, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	want := []float64{
		0.1,
		0.2,
		0.3,
		RMS([]float64{0.4, 0.4, 0.5, 0.5}),
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("bucket %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReducePassThroughWhenShort(t *testing.T) {
	mono := []float64{0.2, -0.4, 0.6}
	got := Reduce(mono, 10)
	want := []float64{0.2, 0.4, 0.6}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("value %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReduceSilentBufferYieldsZeros(t *testing.T) {
	got := Reduce(make([]float64, 1000), 8)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	for i, v := range got {
		if v != 0 {
			t.Fatalf("bucket %d = %v, want 0", i, v)
		}
	}
}

func TestReduceEdgeInputs(t *testing.T) {
	if got := Reduce(nil, 10); got != nil {
		t.Fatalf("Reduce(nil) = %v, want nil", got)
	}
	if got := Reduce([]float64{0.5}, 0); got != nil {
		t.Fatalf("Reduce(target=0) = %v, want nil", got)
	}
}

func TestBufferMono(t *testing.T) {
	tests := []struct {
		name     string
		channels [][]float64
		want     []float64
	}{
		{"empty", nil, nil},
		{"mono passthrough", [][]float64{{0.1, 0.2}}, []float64{0.1, 0.2}},
		{"stereo average", [][]float64{{0.2, 0.4}, {0.4, 0.0}}, []float64{0.3, 0.2}},
		{
			// A third channel must not contribute.
			"surround ignores extras",
			[][]float64{{0.2, 0.2}, {0.4, 0.4}, {1.0, 1.0}},
			[]float64{0.3, 0.3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Buffer{Channels: tt.channels}
			got := b.Mono()
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Fatalf("sample %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.mp3"), 10)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestDecodeFileUnsupportedExtension(t *testing.T) {
	orig := lookFFmpeg
	lookFFmpeg = func() (string, error) { return "", errors.New("not found") }
	defer func() { lookFFmpeg = orig }()

	path := filepath.Join(t.TempDir(), "song.xyz")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, []int{8192, -8192, 16384, -16384, 0, 0, 8192, 8192})

	series, err := Extract(path, 4)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("len = %d, want 4", len(series))
	}
	// Stereo frames mix to mono pairs: (8192-8192)/2=0, (16384-16384)/2=0,
	// (0+0)/2=0, (8192+8192)/2=8192 → /32768 = 0.25. One frame per bucket.
	want := []float64{0, 0, 0, 0.25}
	for i := range want {
		if math.Abs(series[i]-want[i]) > 1e-9 {
			t.Fatalf("bucket %d = %v, want %v", i, series[i], want[i])
		}
	}
}

// writeTestWAV writes interleaved 16-bit stereo samples.
func writeTestWAV(t *testing.T, path string, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestIsSupportedExt(t *testing.T) {
	for _, ext := range []string{".mp3", ".WAV", ".flac", ".ogg", ".opus", ".m4a"} {
		if !IsSupportedExt(ext) {
			t.Errorf("IsSupportedExt(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{".txt", ".mp4", ""} {
		if IsSupportedExt(ext) {
			t.Errorf("IsSupportedExt(%q) = true, want false", ext)
		}
	}
}
