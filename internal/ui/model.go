package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcel-blanc/waveview/internal/capture"
	"github.com/marcel-blanc/waveview/internal/extractor"
	"github.com/marcel-blanc/waveview/internal/player"
	"github.com/marcel-blanc/waveview/internal/render"
	"github.com/marcel-blanc/waveview/internal/util"
	"github.com/marcel-blanc/waveview/internal/waveform"
)

// RendererMode selects which geometry renderer draws the waveform.
type RendererMode uint8

const (
	RendererLinear RendererMode = iota
	RendererCircular
)

// Layout constants shared between View and the mouse handler.
const (
	leftMargin = 2
	waveTopRow = 4
)

// Config configures a waveview Model. Exactly one of Path or Record should
// be set; zero-value renderer configs pick terminal-friendly defaults.
type Config struct {
	Path       string
	Record     bool
	TargetBars int
	Linear     render.LinearConfig
	Circular   render.CircularConfig
}

// Model is the Bubbletea model for the waveview TUI. It can also be embedded
// in a larger program; host-facing events are surfaced as messages (see
// messages.go) and the exported methods mirror the message-driven controls.
type Model struct {
	cfg  Config
	mode RendererMode

	wave      *waveform.Model
	circPaint *render.CircularPainter
	linPaint  *render.LinearPainter
	anim      render.Animator

	fadeFromActive   render.RGB
	fadeFromInactive render.RGB
	fadeToActive     render.RGB
	fadeToInactive   render.RGB
	colorFade        render.Animator

	meta    player.Metadata
	pl      *player.Player
	session *capture.Session

	width, height int
	loading       bool
	spinner       spinner.Model
	footer        progress.Model
	errText       string
	errTime       time.Time
	lastProgress  float64
	dragging      bool
	finished      bool
	listening     bool
	counting      bool
	recordStart   time.Time
	recorded      time.Duration
	quitting      bool
}

// New creates a Model for the given configuration.
func New(cfg Config) Model {
	if cfg.TargetBars <= 0 {
		cfg.TargetBars = extractor.DefaultBarCount
	}
	if cfg.Linear == (render.LinearConfig{}) {
		cfg.Linear = terminalLinearConfig()
	}
	if cfg.Circular == (render.CircularConfig{}) {
		cfg.Circular = render.DefaultCircularConfig()
	}

	mode := waveform.Global
	if cfg.Record {
		mode = waveform.Dynamic
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	p := progress.New(
		progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
		progress.WithoutPercentage(),
	)

	m := Model{
		cfg:       cfg,
		wave:      waveform.New(mode, 0, 1),
		circPaint: render.NewCircularPainter(cfg.Circular.Animation),
		linPaint:  render.NewLinearPainter(),
		spinner:   s,
		footer:    p,
		loading:   cfg.Path != "",
	}
	m.fadeToActive = cfg.Linear.ActiveColor
	m.fadeToInactive = cfg.Linear.InactiveColor
	m.colorFade.Set(1)
	if cfg.Record {
		m.session = capture.NewSession(capture.NewFFmpegSource(), 0)
	}
	return m
}

// terminalLinearConfig narrows the default bar geometry to cell resolution.
// MaxBarHeight is resolved against the viewport at render time.
func terminalLinearConfig() render.LinearConfig {
	cfg := render.DefaultLinearConfig()
	cfg.BarWidth = 2
	cfg.Spacing = 1
	cfg.CornerRadius = 0
	cfg.MinBarHeight = 1
	cfg.MaxBarHeight = 0
	return cfg
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.spinner.Tick}
	if m.cfg.Path != "" {
		cmds = append(cmds, loadCmd(m.cfg.Path, m.cfg.TargetBars), tea.SetWindowTitle(windowTitle(m.cfg.Path)))
	}
	if m.session != nil {
		cmds = append(cmds, startCaptureCmd(m.session), tea.SetWindowTitle("waveview — recording"))
	}
	return tea.Batch(cmds...)
}

func loadCmd(path string, targetBars int) tea.Cmd {
	return func() tea.Msg {
		buf, err := extractor.DecodeFile(path)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{
			buf:    buf,
			series: extractor.Reduce(buf.Mono(), targetBars),
			meta:   player.ReadMetadata(path),
		}
	}
}

func startCaptureCmd(s *capture.Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.Start(); err != nil {
			return ErrorMsg{Err: err}
		}
		return RecordingStartedMsg{}
	}
}

func stopCaptureCmd(s *capture.Session) tea.Cmd {
	return func() tea.Msg {
		if err := s.Stop(); err != nil {
			return ErrorMsg{Err: err}
		}
		return RecordingStoppedMsg{}
	}
}

func waitForAmplitude(s *capture.Session) tea.Cmd {
	return func() tea.Msg {
		return amplitudeMsg(<-s.Amplitudes())
	}
}

func checkDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

// SetProgress moves the playback cursor, optionally easing to the target.
// The value is clamped to [0, 1].
func (m Model) SetProgress(p float64, animated bool) (Model, tea.Cmd) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	if animated {
		m.anim.Start(m.anim.Value(), p, render.DefaultAnimationDuration)
	} else {
		m.anim.Set(p)
	}
	return m, emit(ProgressMsg{Progress: m.anim.Value()})
}

// Clear drops all amplitude data and resets the cursor.
func (m Model) Clear() Model {
	m.wave.Clear()
	m.anim.Set(0)
	m.finished = false
	return m
}

// UpdateColors swaps the bar palette, crossfading when animated.
func (m Model) UpdateColors(active, inactive render.RGB, animated bool) Model {
	from, fromIn := m.currentColors()
	m.fadeFromActive, m.fadeFromInactive = from, fromIn
	m.fadeToActive, m.fadeToInactive = active, inactive
	if animated {
		m.colorFade.Start(0, 1, render.DefaultAnimationDuration)
	} else {
		m.colorFade.Set(1)
	}
	return m
}

func (m Model) currentColors() (active, inactive render.RGB) {
	t := m.colorFade.Value()
	return m.fadeFromActive.Lerp(m.fadeToActive, t), m.fadeFromInactive.Lerp(m.fadeToInactive, t)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m.handleLoaded(msg)

	case amplitudeMsg:
		if m.session == nil {
			return m, nil
		}
		m.wave.Append(float64(msg))
		return m, waitForAmplitude(m.session)

	case RecordingStartedMsg:
		m.recordStart = time.Now()
		m.counting = true
		if m.listening {
			return m, nil
		}
		m.listening = true
		return m, waitForAmplitude(m.session)

	case RecordingStoppedMsg, RecordingPausedMsg:
		if m.counting {
			m.recorded += time.Since(m.recordStart)
			m.counting = false
		}
		return m, nil

	case RecordingResumedMsg:
		m.recordStart = time.Now()
		m.counting = true
		return m, nil

	case playbackEndedMsg:
		m.finished = true
		m.anim.Set(1)
		return m, emit(ProgressMsg{Progress: 1})

	case ErrorMsg:
		m.setError(msg.Err)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		if m.pl != nil {
			m.pl.Close()
		}
		if m.session != nil {
			switch m.session.State() {
			case capture.Active, capture.Paused:
				m.session.Stop()
			}
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		if m.pl != nil && !m.finished {
			m.pl.TogglePause()
		}
		return m, nil

	case "left", "right":
		if m.pl == nil {
			return m, nil
		}
		delta := 5 * time.Second
		if msg.String() == "left" {
			delta = -delta
		}
		target := clampProgress(m.pl.Progress() + delta.Seconds()/m.pl.Duration().Seconds())
		m.pl.SeekTo(target)
		cmds := []tea.Cmd{emit(SeekMsg{Progress: target})}
		if m.finished {
			// The done channel was re-armed by the seek; watch it again.
			m.finished = false
			cmds = append(cmds, checkDone(m.pl))
		}
		m.anim.Start(m.anim.Value(), target, render.DefaultAnimationDuration)
		return m, tea.Batch(cmds...)

	case "v":
		if m.mode == RendererLinear {
			m.mode = RendererCircular
		} else {
			m.mode = RendererLinear
		}
		return m, nil

	case "a":
		if m.cfg.Circular.Animation == render.AnimationRadial {
			m.cfg.Circular.Animation = render.AnimationFlow
		} else {
			m.cfg.Circular.Animation = render.AnimationRadial
		}
		m.circPaint.SetAnimation(m.cfg.Circular.Animation)
		return m, nil

	case "n":
		if m.wave.Mode() == waveform.Global {
			m.wave.SetMode(waveform.Dynamic)
		} else {
			m.wave.SetMode(waveform.Global)
		}
		return m, nil

	case "o":
		alt := render.RGB{R: 0, G: 200, B: 255}
		altIn := render.RGB{R: 60, G: 80, B: 90}
		if m.fadeToActive == alt {
			alt = render.DefaultLinearConfig().ActiveColor
			altIn = render.DefaultLinearConfig().InactiveColor
		}
		m = m.UpdateColors(alt, altIn, true)
		return m, nil

	case "c":
		m = m.Clear()
		return m, emit(ProgressMsg{Progress: 0})

	case "r":
		if m.session == nil {
			return m, nil
		}
		switch m.session.State() {
		case capture.Active, capture.Paused:
			return m, stopCaptureCmd(m.session)
		default:
			return m, startCaptureCmd(m.session)
		}

	case "p":
		if m.session == nil {
			return m, nil
		}
		switch m.session.State() {
		case capture.Active:
			if err := m.session.Pause(); err != nil {
				m.setError(err)
				return m, nil
			}
			return m, emit(RecordingPausedMsg{})
		case capture.Paused:
			if err := m.session.Resume(); err != nil {
				m.setError(err)
				return m, nil
			}
			return m, emit(RecordingResumedMsg{})
		}
		return m, nil
	}

	return m, nil
}

// handleMouse implements drag-to-scrub on the linear waveform. The cursor
// tracks the pointer while dragging; the seek commits on release only.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != RendererLinear || m.wave.Len() == 0 {
		return m, nil
	}
	vw, vh := m.viewport()
	inArea := msg.Y >= waveTopRow && msg.Y < waveTopRow+vh
	x := float64(msg.X - leftMargin)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inArea {
			return m, nil
		}
		m.dragging = true
		p := render.NewLinear(m.cfg.Linear).ProgressAt(x, float64(vw))
		m.anim.Set(p)
		return m, emit(ProgressMsg{Progress: p})

	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		p := render.NewLinear(m.cfg.Linear).ProgressAt(x, float64(vw))
		m.anim.Set(p)
		return m, emit(ProgressMsg{Progress: p})

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		p := render.NewLinear(m.cfg.Linear).ProgressAt(x, float64(vw))
		m.anim.Set(p)
		cmds := []tea.Cmd{emit(SeekMsg{Progress: p})}
		if m.pl != nil {
			m.pl.SeekTo(p)
			if m.finished {
				m.finished = false
				cmds = append(cmds, checkDone(m.pl))
			}
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.anim.Step(now)
	m.colorFade.Step(now)
	if m.pl != nil && !m.dragging && !m.anim.Animating() && !m.finished {
		m.anim.Set(m.pl.Progress())
	}
	if m.errText != "" && now.Sub(m.errTime) > 5*time.Second {
		m.errText = ""
	}

	cmds := []tea.Cmd{tickCmd()}
	if p := m.anim.Value(); p != m.lastProgress {
		m.lastProgress = p
		cmds = append(cmds, emit(ProgressMsg{Progress: p}))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, emit(ErrorMsg{Err: msg.err})
	}

	m.wave.Update(msg.series)
	m.meta = msg.meta
	m.anim.Set(0)
	m.finished = false

	done := LoadingCompleteMsg{Bars: m.wave.Len()}
	cmds := []tea.Cmd{}

	pl, err := player.New(msg.buf)
	if err != nil {
		// No audio device is not fatal; the waveform still renders.
		m.setError(err)
	} else {
		m.pl = pl
		done.Duration = pl.Duration()
		pl.Play()
		cmds = append(cmds, checkDone(pl))
	}
	cmds = append(cmds, emit(done))
	return m, tea.Batch(cmds...)
}

func (m *Model) setError(err error) {
	m.errText = err.Error()
	m.errTime = time.Now()
}

func (m Model) viewport() (vw, vh int) {
	w, h := m.width, m.height
	if w < 30 {
		w = 80
	}
	if h < 12 {
		h = 24
	}
	vw = w - 2*leftMargin
	vh = h - 8
	if vh < 5 {
		vh = 5
	}
	return vw, vh
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	vw, vh := m.viewport()

	header := headerStyle.Render("waveview")

	sub := ""
	if m.cfg.Record {
		sub = recordStyle.Render("● recording") + "  " + statusStyle.Render(m.session.State().String())
	} else if m.meta.Title != "" {
		sub = titleStyle.Render(m.meta.Title)
		if m.meta.Artist != "" {
			sub += artistStyle.Render("  " + m.meta.Artist)
		}
	}

	wave := m.renderWave(vw, vh)

	lines := "\n"
	lines += "  " + header + "\n"
	if sub != "" {
		lines += "  " + sub + "\n"
	} else {
		lines += "\n"
	}
	lines += "\n"
	lines += indent(wave, vh) + "\n"
	lines += "\n"
	lines += "  " + m.footerLine(vw) + "\n"
	if m.errText != "" {
		lines += "  " + errorStyle.Render(m.errText) + "\n"
	}
	lines += "  " + helpStyle.Render(helpText(m.cfg.Record)) + "\n"
	return lines
}

func (m Model) renderWave(vw, vh int) string {
	if m.loading {
		return m.spinner.View() + " decoding…"
	}
	if m.wave.Len() == 0 {
		return helpStyle.Render("no data")
	}
	active, inactive := m.currentColors()
	p := m.anim.Value()

	switch m.mode {
	case RendererCircular:
		d := render.NewCircular(m.cfg.Circular).Render(m.wave, float64(vw), float64(vh), p)
		return m.circPaint.Paint(d, vw, vh, active, inactive)
	default:
		cfg := m.cfg.Linear
		if cfg.MaxBarHeight <= 0 || cfg.MaxBarHeight > float64(vh) {
			cfg.MaxBarHeight = float64(vh)
		}
		f := render.NewLinear(cfg).Render(m.wave, float64(vw), float64(vh), p)
		return m.linPaint.Paint(f, active, inactive)
	}
}

func (m Model) footerLine(vw int) string {
	if m.cfg.Record {
		elapsed := m.recorded
		if m.counting {
			elapsed += time.Since(m.recordStart)
		}
		level := m.session.Smoothed()
		m.footer.Width = vw - 12
		return fmt.Sprintf("%s %s", timeStyle.Render(util.FormatDuration(elapsed)), m.footer.ViewAs(level))
	}

	var elapsed, total time.Duration
	if m.pl != nil {
		elapsed = m.pl.Position()
		total = m.pl.Duration()
	}
	m.footer.Width = vw - 12
	bar := m.footer.ViewAs(m.anim.Value())
	return fmt.Sprintf("%s %s %s",
		timeStyle.Render(util.FormatDuration(elapsed)),
		bar,
		timeStyle.Render(util.FormatDuration(total)))
}

// indent prefixes each wave row with the left margin and pads the block to
// the viewport height so the footer stays put.
func indent(block string, vh int) string {
	rows := strings.Split(block, "\n")
	var out strings.Builder
	for i, row := range rows {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString("  ")
		out.WriteString(row)
	}
	for i := len(rows); i < vh; i++ {
		out.WriteByte('\n')
	}
	return out.String()
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func windowTitle(path string) string {
	return "waveview — " + path
}
