// Package tui renders the now-playing screen and routes keystrokes to the
// playback proxy.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gtplayer-cli/gtplayer/proxy"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Proxy *proxy.Proxy
}

// Run initializes and executes the primary Bubble Tea application loop.
// Blocks until the user quits.
func Run(options *Options) error {
	bubble := newBubble(options)
	program := tea.NewProgram(bubble, tea.WithAltScreen())

	// Notifications from the service land on the transport goroutine; a
	// repaint message hops them over to the program's event loop.
	options.Proxy.SetOnUpdate(func() {
		program.Send(refreshMsg{})
	})
	defer options.Proxy.SetOnUpdate(nil)

	_, err := program.Run()
	return err
}
