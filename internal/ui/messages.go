package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcel-blanc/waveview/internal/extractor"
	"github.com/marcel-blanc/waveview/internal/player"
)

// Host-facing events. An embedding program that composes Model into a larger
// Bubbletea application receives these through the command stream and can
// react without reaching into the model.

// LoadingCompleteMsg is emitted once a source file has been decoded and its
// amplitude series installed.
type LoadingCompleteMsg struct {
	Bars     int
	Duration time.Duration
}

// ProgressMsg is emitted whenever the playback cursor moves, whether from
// playback, an animation step, or a drag in flight.
type ProgressMsg struct {
	Progress float64
}

// SeekMsg is emitted when the user releases a drag on the linear waveform.
// It carries the committed position; ProgressMsg reports the intermediate
// positions during the drag.
type SeekMsg struct {
	Progress float64
}

// RecordingStartedMsg, RecordingStoppedMsg, RecordingPausedMsg and
// RecordingResumedMsg mirror the capture session lifecycle.
type RecordingStartedMsg struct{}
type RecordingStoppedMsg struct{}
type RecordingPausedMsg struct{}
type RecordingResumedMsg struct{}

// ErrorMsg is emitted on decode or capture failures. The previous waveform,
// if any, stays on screen.
type ErrorMsg struct {
	Err error
}

type tickMsg time.Time

type loadedMsg struct {
	buf    *extractor.Buffer
	series []float64
	meta   player.Metadata
	err    error
}

type amplitudeMsg float64

type playbackEndedMsg struct{}

const tickInterval = 50 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
