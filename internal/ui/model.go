package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/sonoscope/internal/analysis"
	"github.com/olivier-w/sonoscope/internal/audio"
	"github.com/olivier-w/sonoscope/internal/config"
	"github.com/olivier-w/sonoscope/internal/scene"
	"github.com/olivier-w/sonoscope/internal/util"
	"github.com/olivier-w/sonoscope/internal/visualizer"
)

const (
	alertTTL        = 5 * time.Second
	sensitivityStep = 0.1
	chromeLines     = 7
)

// Snapshot is the latest poll result. The renderer reads whatever is here.
type Snapshot struct {
	Bands  analysis.Bands
	Volume float64
	At     time.Time
}

// Model is the Bubbletea model for the sonoscope TUI.
type Model struct {
	ctrl     *controller
	analyser *analysis.Analyser
	sampler  *analysis.Sampler
	scene    *scene.Scene
	views    []visualizer.Visualizer
	view     int

	params       audio.Params
	pollInterval time.Duration
	fps          int

	seq      int
	mode     audio.Mode
	pending  bool
	info     audio.MediaInfo
	position time.Duration

	snapshot    Snapshot
	sensitivity float64
	start       time.Time
	elapsed     time.Duration

	alert   string
	alertAt time.Time
	now     func() time.Time

	keys     keyMap
	help     help.Model
	sensBar  progress.Model
	spinner  spinner.Model
	width    int
	height   int
	quitting bool
}

// New creates a Model driving g, whose sink is a. If start is not ModeIdle the
// model acquires it on Init.
func New(cfg config.Config, g *audio.Graph, a *analysis.Analyser, start audio.Mode) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	bar := progress.New(
		progress.WithScaledGradient("#5A56E0", "#EE6FF8"),
		progress.WithoutPercentage(),
	)
	bar.Width = 20

	m := Model{
		ctrl:         newController(g, a),
		analyser:     a,
		sampler:      analysis.NewSampler(a, cfg.Analysis),
		scene:        scene.New(cfg.Visual.Particles, cfg.Visual.Seed),
		views:        visualizer.Modes(cfg.Visual.FPS),
		params:       audio.ParamsFromConfig(cfg),
		pollInterval: cfg.Analysis.PollInterval.Duration,
		fps:          cfg.Visual.FPS,
		sensitivity:  config.ClampSensitivity(cfg.Visual.Sensitivity),
		now:          time.Now,
		keys:         newKeyMap(),
		help:         help.New(),
		sensBar:      bar,
		spinner:      s,
	}
	if start != audio.ModeIdle {
		m.seq = 1
		m.pending = true
		m.mode = start
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		pollCmd(m.pollInterval),
		frameCmd(m.fps),
		tea.SetWindowTitle("sonoscope"),
	}
	if m.pending {
		cmds = append(cmds, m.ctrl.submit(m.seq, m.mode, m.params), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case acquiredMsg:
		if msg.superseded || msg.seq != m.seq {
			return m, nil
		}
		m.pending = false
		m.mode = msg.mode
		m.info = msg.info
		m.position = 0
		if !msg.ok {
			m.snapshot = Snapshot{}
			m.setAlert(fmt.Sprintf("could not start: %v", msg.err))
			return m, nil
		}
		m.sampler.SetSampleRate(msg.rate)
		if msg.done != nil {
			return m, waitForEnd(msg.seq, msg.done)
		}
		return m, nil

	case sourceEndedMsg:
		if msg.seq != m.seq || m.mode != audio.ModeMedia {
			return m, nil
		}
		m.setAlert("sample media finished")
		return m.request(audio.ModeIdle)

	case pollMsg:
		now := time.Time(msg)
		if isActive(m.mode) {
			m.snapshot = Snapshot{
				Bands:  m.sampler.SampleBands(),
				Volume: m.sampler.SampleVolume(),
				At:     now,
			}
			if m.info != nil {
				m.position = m.info.Position()
			}
		} else {
			m.snapshot = Snapshot{}
		}
		if m.alert != "" && now.Sub(m.alertAt) > alertTTL {
			m.alert = ""
		}
		return m, pollCmd(m.pollInterval)

	case frameMsg:
		m.advance(time.Time(msg))
		return m, frameCmd(m.fps)

	case configChangedMsg:
		m.params = audio.ParamsFromConfig(msg.cfg)
		m.analyser.SetSmoothing(msg.cfg.Analysis.Smoothing)
		m.sensitivity = config.ClampSensitivity(msg.cfg.Visual.Sensitivity)
		m.setAlert("config reloaded")
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		barWidth := msg.Width / 4
		if barWidth < 10 {
			barWidth = 10
		}
		if barWidth > 40 {
			barWidth = 40
		}
		m.sensBar.Width = barWidth
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.ctrl.close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	case key.Matches(msg, m.keys.Mic):
		return m.request(audio.ModeMicrophone)
	case key.Matches(msg, m.keys.Tone):
		return m.request(audio.ModeTone)
	case key.Matches(msg, m.keys.Media):
		return m.request(audio.ModeMedia)
	case key.Matches(msg, m.keys.Stop):
		return m.request(audio.ModeIdle)
	case key.Matches(msg, m.keys.SensUp):
		m.adjustSensitivity(sensitivityStep)
	case key.Matches(msg, m.keys.SensDown):
		m.adjustSensitivity(-sensitivityStep)
	case key.Matches(msg, m.keys.View):
		m.view = (m.view + 1) % len(m.views)
	}
	return m, nil
}

// request hands a mode change to the controller. Whatever was running is
// released first, so the snapshot goes back to zero straight away.
func (m Model) request(mode audio.Mode) (Model, tea.Cmd) {
	m.seq++
	m.mode = audio.ModeIdle
	m.info = nil
	m.position = 0
	m.snapshot = Snapshot{}
	m.pending = mode != audio.ModeIdle

	cmd := m.ctrl.submit(m.seq, mode, m.params)
	if m.pending {
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m *Model) adjustSensitivity(delta float64) {
	s := math.Round((m.sensitivity+delta)*10) / 10
	m.sensitivity = config.ClampSensitivity(s)
}

func (m *Model) setAlert(text string) {
	m.alert = text
	m.alertAt = m.now()
}

// advance steps the scene to t and redraws the active view.
func (m *Model) advance(t time.Time) {
	if m.start.IsZero() {
		m.start = t
	}
	m.elapsed = t.Sub(m.start)
	m.scene.Step(m.snapshot.Bands, m.sensitivity, m.elapsed.Seconds())

	w, h := m.vizSize()
	m.views[m.view].Update(visualizer.Frame{
		Bands:       m.snapshot.Bands,
		Volume:      m.snapshot.Volume,
		Sensitivity: m.sensitivity,
		Elapsed:     m.elapsed,
		Scene:       m.scene,
	}, w, h)
}

func (m Model) vizSize() (int, int) {
	w := m.width
	if w < 20 {
		w = 60
	}
	h := m.height - chromeLines
	if h < 3 {
		h = 3
	}
	return w, h
}

func isActive(mode audio.Mode) bool {
	switch mode {
	case audio.ModeMicrophone, audio.ModeTone, audio.ModeMedia:
		return true
	}
	return false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w, _ := m.vizSize()

	left := headerStyle.Render("sonoscope") + "  " + modeStyle.Render(m.mode.String())
	leftWidth := len("sonoscope") + 2 + len(m.mode.String())
	if m.pending {
		left += " " + m.spinner.View()
		leftWidth += 2
	}
	var right string
	var rightWidth int
	if m.info != nil {
		label := m.info.Metadata().Label()
		elapsed := util.FormatDuration(m.position)
		right = titleStyle.Render(label) + "  " + timeStyle.Render(elapsed)
		rightWidth = lipgloss.Width(label) + 2 + len(elapsed)
	}
	headerLine := left + spaces(w-leftWidth-rightWidth-4) + right

	sens := renderSensitivity(m.sensBar, m.sensitivity)
	vol := renderVolumePercent(m.snapshot.Volume)
	statusLine := statusStyle.Render(sens) + spaces(w-lipgloss.Width(sens)-len(vol)-4) + statusStyle.Render(vol)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  " + headerLine + "\n")
	sb.WriteString("\n")
	sb.WriteString(m.views[m.view].View() + "\n")
	sb.WriteString("\n")
	sb.WriteString("  " + statusLine + "\n")
	if m.alert != "" {
		sb.WriteString("  " + alertStyle.Render(m.alert))
	}
	sb.WriteString("\n")
	sb.WriteString("  " + m.help.View(m.keys) + "\n")
	return sb.String()
}

// Sensitivity returns the current sensitivity factor.
func (m Model) Sensitivity() float64 { return m.sensitivity }

// Snapshot returns the latest poll result.
func (m Model) Snapshot() Snapshot { return m.snapshot }
