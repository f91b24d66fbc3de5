// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// PlayerKeyMap defines the keybindings of the terminal player.
type PlayerKeyMap struct {
	// Stepping
	Next   key.Binding
	Prev   key.Binding
	First  key.Binding
	Last   key.Binding
	Replay key.Binding

	// Playback
	Pause  key.Binding
	Faster key.Binding
	Slower key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// Player is the default player keymap.
var Player = DefaultPlayerKeyMap()

// DefaultPlayerKeyMap returns the default player keybindings.
func DefaultPlayerKeyMap() PlayerKeyMap {
	return PlayerKeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", "n", " "),
			key.WithHelp("→/l/space", "next step"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/h", "previous step"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first step"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last step"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		Pause: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "pause"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "slower"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k PlayerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Replay, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k PlayerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last, k.Replay}, // Stepping
		{k.Pause, k.Faster, k.Slower},               // Playback
		{k.Help, k.Quit},                            // General
	}
}
