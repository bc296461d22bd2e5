// Package tui renders the now-playing screen and routes keystrokes to the
// playback proxy.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// playerKeymap defines the keyboard interactions available on the now-playing screen.
type playerKeymap struct {
	playPause,
	next, prev,
	favorite,
	volumeUp, volumeDown,
	seekForward, seekBack,
	openURL,
	playlist, confirm,
	showHelp,
	quit, forceQuit key.Binding
}

func newPlayerKeymap() *playerKeymap {
	return &playerKeymap{
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next track"),
		),
		prev: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous track"),
		),
		favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "volume down"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "seek forward"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "seek back"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in spotify"),
		),
		playlist: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "playlist"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play selected"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *playerKeymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.next, k.favorite, k.playlist, k.showHelp, k.quit}
}

// FullHelp implements help.KeyMap.
func (k *playerKeymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.next, k.prev, k.favorite},
		{k.volumeUp, k.volumeDown, k.seekForward, k.seekBack},
		{k.playlist, k.confirm, k.openURL},
		{k.showHelp, k.quit, k.forceQuit},
	}
}
