package ui

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/sonoscope/internal/analysis"
	"github.com/olivier-w/sonoscope/internal/audio"
	"github.com/olivier-w/sonoscope/internal/config"
	"github.com/olivier-w/sonoscope/internal/player"
)

type fakeSource struct {
	signal bool
	done   chan struct{}
}

func (s *fakeSource) Start(sink audio.Sink) error {
	if s.signal {
		buf := make([]float32, 4096)
		for i := range buf {
			buf[i] = float32(0.8 * math.Sin(2*math.Pi*1000*float64(i)/44100))
		}
		sink.Write(buf)
	}
	return nil
}

func (s *fakeSource) Stop() error           { return nil }
func (s *fakeSource) Done() <-chan struct{} { return s.done }

type fakeMedia struct {
	fakeSource
	meta player.Metadata
}

func (s *fakeMedia) Metadata() player.Metadata { return s.meta }
func (s *fakeMedia) Position() time.Duration   { return 3 * time.Second }

type testRig struct {
	graph *audio.Graph
	media *fakeMedia
}

func newTestModel(t *testing.T) (Model, *testRig) {
	t.Helper()
	cfg := config.Default()
	cfg.Visual.Particles = 50

	rig := &testRig{media: &fakeMedia{
		fakeSource: fakeSource{signal: true, done: make(chan struct{})},
		meta:       player.Metadata{Title: "Loop"},
	}}
	a := analysis.NewAnalyser(cfg.Analysis)
	rig.graph = audio.NewGraph(a,
		audio.WithFactory(audio.ModeTone, func(context.Context, audio.Params) (audio.Source, error) {
			return &fakeSource{signal: true}, nil
		}),
		audio.WithFactory(audio.ModeMicrophone, func(context.Context, audio.Params) (audio.Source, error) {
			return nil, errors.New("no input device")
		}),
		audio.WithFactory(audio.ModeMedia, func(context.Context, audio.Params) (audio.Source, error) {
			return rig.media, nil
		}),
	)
	return New(cfg, rig.graph, a, audio.ModeIdle), rig
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// settle runs cmd and feeds any acquisition results back into m.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = settle(t, m, c)
		}
	case acquiredMsg:
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func poll(m Model, at time.Time) Model {
	next, _ := m.Update(pollMsg(at))
	return next.(Model)
}

func TestSensitivityClamps(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Sensitivity() != 1 {
		t.Fatalf("initial sensitivity = %f, want 1", m.Sensitivity())
	}

	m, _ = press(t, m, "+")
	m, _ = press(t, m, "=")
	if math.Abs(m.Sensitivity()-1.2) > 1e-9 {
		t.Fatalf("sensitivity = %f, want 1.2", m.Sensitivity())
	}

	for range 40 {
		m, _ = press(t, m, "+")
	}
	if m.Sensitivity() != config.MaxSensitivity {
		t.Fatalf("sensitivity = %f, want %f", m.Sensitivity(), config.MaxSensitivity)
	}

	for range 60 {
		m, _ = press(t, m, "-")
	}
	if m.Sensitivity() != config.MinSensitivity {
		t.Fatalf("sensitivity = %f, want %f", m.Sensitivity(), config.MinSensitivity)
	}
}

func TestPollOverwritesSnapshotWhileActive(t *testing.T) {
	m, rig := newTestModel(t)

	now := time.Now()
	m = poll(m, now)
	if !m.Snapshot().Bands.IsZero() {
		t.Fatalf("idle snapshot has energy: %v", m.Snapshot().Bands)
	}

	m, cmd := press(t, m, "t")
	m = settle(t, m, cmd)
	if m.mode != audio.ModeTone {
		t.Fatalf("mode = %s, want test tone", m.mode)
	}
	if rig.graph.Connections() != 1 {
		t.Fatalf("connections = %d, want 1", rig.graph.Connections())
	}

	later := now.Add(100 * time.Millisecond)
	m = poll(m, later)
	snap := m.Snapshot()
	if snap.Bands.IsZero() {
		t.Fatalf("active snapshot is silent")
	}
	if !snap.At.Equal(later) {
		t.Fatalf("snapshot time = %v, want %v", snap.At, later)
	}
}

func TestStopResetsSnapshot(t *testing.T) {
	m, rig := newTestModel(t)
	m, cmd := press(t, m, "t")
	m = settle(t, m, cmd)
	m = poll(m, time.Now())
	if m.Snapshot().Bands.IsZero() {
		t.Fatalf("expected energy before stop")
	}

	m, cmd = press(t, m, "x")
	if !m.Snapshot().Bands.IsZero() || m.Snapshot().Volume != 0 {
		t.Fatalf("snapshot not cleared on stop: %+v", m.Snapshot())
	}
	m = settle(t, m, cmd)
	if rig.graph.Connections() != 0 {
		t.Fatalf("connections = %d after stop, want 0", rig.graph.Connections())
	}

	m = poll(m, time.Now())
	if !m.Snapshot().Bands.IsZero() {
		t.Fatalf("poll after stop produced energy")
	}
}

func TestSwitchingModesKeepsOneConnection(t *testing.T) {
	m, rig := newTestModel(t)
	for _, k := range []string{"t", "p", "t", "p"} {
		var cmd tea.Cmd
		m, cmd = press(t, m, k)
		m = settle(t, m, cmd)
		if rig.graph.Connections() != 1 {
			t.Fatalf("after %q: connections = %d, want 1", k, rig.graph.Connections())
		}
	}
}

func TestAcquireFailureShowsAlert(t *testing.T) {
	m, rig := newTestModel(t)
	start := time.Now()
	m.now = func() time.Time { return start }

	m, cmd := press(t, m, "m")
	m = settle(t, m, cmd)
	if m.mode != audio.ModeError {
		t.Fatalf("mode = %s, want error", m.mode)
	}
	if !strings.Contains(m.alert, "no input device") {
		t.Fatalf("alert = %q", m.alert)
	}
	if rig.graph.Connections() != 0 {
		t.Fatalf("connections = %d, want 0", rig.graph.Connections())
	}

	m = poll(m, start.Add(time.Second))
	if m.alert == "" {
		t.Fatalf("alert cleared too early")
	}
	if !m.Snapshot().Bands.IsZero() {
		t.Fatalf("error mode produced energy")
	}
	m = poll(m, start.Add(alertTTL+time.Second))
	if m.alert != "" {
		t.Fatalf("alert = %q after %v, want cleared", m.alert, alertTTL)
	}
}

func TestSupersededAcquisitionIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.seq = 5
	next, cmd := m.Update(acquiredMsg{seq: 3, mode: audio.ModeTone, ok: true})
	m = next.(Model)
	if m.mode != audio.ModeIdle || cmd != nil {
		t.Fatalf("stale result applied: mode = %s", m.mode)
	}
}

func TestMediaEndReleasesSource(t *testing.T) {
	m, rig := newTestModel(t)
	m, cmd := press(t, m, "p")
	m = settle(t, m, cmd)
	if m.mode != audio.ModeMedia {
		t.Fatalf("mode = %s, want sample media", m.mode)
	}

	m = poll(m, time.Now())
	if m.position != 3*time.Second {
		t.Fatalf("position = %v, want 3s", m.position)
	}
	if !strings.Contains(m.View(), "Loop") {
		t.Fatalf("view does not show the media title")
	}

	close(rig.media.done)
	next, cmd := m.Update(sourceEndedMsg{seq: m.seq})
	m = settle(t, next.(Model), cmd)
	if m.mode != audio.ModeIdle {
		t.Fatalf("mode = %s after media end, want idle", m.mode)
	}
	if rig.graph.Connections() != 0 {
		t.Fatalf("connections = %d, want 0", rig.graph.Connections())
	}
	if m.alert != "sample media finished" {
		t.Fatalf("alert = %q", m.alert)
	}
}

func TestFrameAdvancesSceneAndCyclesViews(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	t0 := time.Now()
	next, _ = m.Update(frameMsg(t0))
	next, _ = next.Update(frameMsg(t0.Add(time.Second)))
	m = next.(Model)
	if m.elapsed != time.Second {
		t.Fatalf("elapsed = %v, want 1s", m.elapsed)
	}
	if !strings.Contains(m.View(), "sonoscope") {
		t.Fatalf("view missing header")
	}

	for i := range len(m.views) {
		if m.view != i {
			t.Fatalf("view = %d, want %d", m.view, i)
		}
		m, _ = press(t, m, "v")
	}
	if m.view != 0 {
		t.Fatalf("view did not wrap: %d", m.view)
	}
}

func TestConfigChangedAppliesSensitivity(t *testing.T) {
	m, _ := newTestModel(t)
	cfg := config.Default()
	cfg.Visual.Sensitivity = 2.5
	next, _ := m.Update(ConfigChanged(cfg))
	m = next.(Model)
	if m.Sensitivity() != 2.5 {
		t.Fatalf("sensitivity = %f, want 2.5", m.Sensitivity())
	}
}

func TestQuitClearsView(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := press(t, m, "t")
	m = settle(t, m, cmd)

	m, cmd = press(t, m, "esc")
	if !m.quitting {
		t.Fatalf("esc did not quit")
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if m.View() != "" {
		t.Fatalf("view not empty after quit")
	}
}

func TestAcquiredRateRetunesSampler(t *testing.T) {
	m, _ := newTestModel(t)
	m.sampler.SetSampleRate(48000)

	m, cmd := press(t, m, "t")
	m = settle(t, m, cmd)
	if got := m.sampler.SampleRate(); got != player.OutputSampleRate {
		t.Fatalf("sampler rate = %d after tone, want %d", got, player.OutputSampleRate)
	}
}

type countingSource struct {
	fakeSource
	starts *atomic.Int32
}

func (s *countingSource) Start(sink audio.Sink) error {
	s.starts.Add(1)
	return s.fakeSource.Start(sink)
}

// slowRig holds media acquisition inside its factory until proceed closes.
type slowRig struct {
	graph   *audio.Graph
	entered chan struct{}
	proceed chan struct{}
	tones   atomic.Int32
	starts  atomic.Int32
}

func newSlowModel(t *testing.T) (Model, *slowRig) {
	t.Helper()
	cfg := config.Default()
	cfg.Visual.Particles = 50

	rig := &slowRig{entered: make(chan struct{}), proceed: make(chan struct{})}
	var once sync.Once
	a := analysis.NewAnalyser(cfg.Analysis)
	rig.graph = audio.NewGraph(a,
		audio.WithFactory(audio.ModeMedia, func(context.Context, audio.Params) (audio.Source, error) {
			once.Do(func() { close(rig.entered) })
			<-rig.proceed
			return &countingSource{starts: &rig.starts}, nil
		}),
		audio.WithFactory(audio.ModeTone, func(context.Context, audio.Params) (audio.Source, error) {
			rig.tones.Add(1)
			return &countingSource{starts: &rig.starts}, nil
		}),
	)
	return New(cfg, rig.graph, a, audio.ModeIdle), rig
}

// controllerCmd returns the acquisition command from a pending request, which
// is batched with the spinner tick.
func controllerCmd(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) == 0 {
		t.Fatalf("expected batched acquisition command")
	}
	return batch[0]
}

func waitMsg(t *testing.T, ch <-chan tea.Msg) acquiredMsg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg.(acquiredMsg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an acquisition result")
	}
	return acquiredMsg{}
}

func TestKeysStayResponsiveWhileAcquiring(t *testing.T) {
	m, rig := newSlowModel(t)

	m, cmd := press(t, m, "p")
	acquire := controllerCmd(t, cmd)
	first := make(chan tea.Msg, 1)
	go func() { first <- acquire() }()
	select {
	case <-rig.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("media factory never ran")
	}

	type pressed struct {
		m    Model
		cmds []tea.Cmd
	}
	out := make(chan pressed, 1)
	go func() {
		p := pressed{m: m}
		for range 20 {
			var c tea.Cmd
			p.m, c = press(t, p.m, "t")
			p.cmds = append(p.cmds, c)
		}
		var c tea.Cmd
		p.m, c = press(t, p.m, "x")
		p.cmds = append(p.cmds, c)
		out <- p
	}()
	var p pressed
	select {
	case p = <-out:
	case <-time.After(time.Second):
		t.Fatal("Update blocked while an acquisition was in flight")
	}
	m = p.m

	tones := make(chan tea.Msg, len(p.cmds))
	for _, c := range p.cmds[:len(p.cmds)-1] {
		acquire := controllerCmd(t, c)
		go func() { tones <- acquire() }()
	}
	stop := make(chan tea.Msg, 1)
	go func() { stop <- p.cmds[len(p.cmds)-1]() }()

	for range len(p.cmds) - 1 {
		if msg := waitMsg(t, tones); !msg.superseded {
			t.Fatalf("replaced request %d was applied: %+v", msg.seq, msg)
		}
	}

	close(rig.proceed)
	if msg := waitMsg(t, first); msg.ok {
		t.Fatalf("replaced media acquisition reported success")
	}
	msg := waitMsg(t, stop)
	if msg.seq != m.seq || msg.mode != audio.ModeIdle || !msg.ok {
		t.Fatalf("stop result = %+v, want idle with seq %d", msg, m.seq)
	}
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.mode != audio.ModeIdle || m.pending {
		t.Fatalf("mode = %s pending = %v, want settled idle", m.mode, m.pending)
	}
	if n := rig.tones.Load(); n != 0 {
		t.Fatalf("tone factory ran %d times for replaced requests", n)
	}
	if n := rig.starts.Load(); n != 0 {
		t.Fatalf("replaced sources started %d times", n)
	}
	if rig.graph.Connections() != 0 {
		t.Fatalf("connections = %d, want 0", rig.graph.Connections())
	}
}

func TestQuitWhileAcquiringReleases(t *testing.T) {
	m, rig := newSlowModel(t)

	m, cmd := press(t, m, "p")
	acquire := controllerCmd(t, cmd)
	first := make(chan tea.Msg, 1)
	go func() { first <- acquire() }()
	<-rig.entered

	quit := make(chan Model, 1)
	go func() {
		next, _ := press(t, m, "q")
		quit <- next
	}()
	select {
	case m = <-quit:
	case <-time.After(time.Second):
		t.Fatal("quit blocked while an acquisition was in flight")
	}
	if !m.quitting {
		t.Fatal("q did not quit")
	}

	close(rig.proceed)
	if msg := waitMsg(t, first); msg.ok {
		t.Fatalf("acquisition survived quit: %+v", msg)
	}
	if rig.starts.Load() != 0 || rig.graph.Connections() != 0 {
		t.Fatalf("source started after quit: starts = %d connections = %d", rig.starts.Load(), rig.graph.Connections())
	}
}
