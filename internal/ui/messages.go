package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/sonoscope/internal/audio"
	"github.com/olivier-w/sonoscope/internal/config"
)

type pollMsg time.Time
type frameMsg time.Time

type acquiredMsg struct {
	seq  int
	mode audio.Mode
	ok   bool
	err  error
	done <-chan struct{}
	info audio.MediaInfo
	rate int // sample rate the source feeds the analyser at

	// superseded is set when a newer request replaced this one before it ran.
	superseded bool
}

type sourceEndedMsg struct{ seq int }

type configChangedMsg struct{ cfg config.Config }

// ConfigChanged wraps a reloaded configuration for Program.Send.
func ConfigChanged(cfg config.Config) tea.Msg {
	return configChangedMsg{cfg: cfg}
}

func pollCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitForEnd(seq int, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return sourceEndedMsg{seq: seq}
	}
}
