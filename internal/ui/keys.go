package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Mic      key.Binding
	Tone     key.Binding
	Media    key.Binding
	Stop     key.Binding
	SensUp   key.Binding
	SensDown key.Binding
	View     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Mic:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mic")),
		Tone:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tone")),
		Media:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "media")),
		Stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		SensUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "sensitivity")),
		SensDown: key.NewBinding(key.WithKeys("-", "_")),
		View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mic, k.Tone, k.Media, k.Stop, k.SensUp, k.View, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Mic, k.Tone, k.Media, k.Stop},
		{k.SensUp, k.View, k.Quit},
	}
}
