// Package tui renders the now-playing screen and routes keystrokes to the
// playback proxy.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/proxy"
)

// refreshMsg signals that a service notification changed visible state.
type refreshMsg struct{}

// tickMsg drives periodic position polling.
type tickMsg time.Time

// playerBubble is the single-screen model behind the now-playing view.
type playerBubble struct {
	proxy  *proxy.Proxy
	keymap *playerKeymap

	progressC progress.Model
	helpC     help.Model
	listC     list.Model

	showPlaylist  bool
	width, height int
}

func newBubble(options *Options) *playerBubble {
	bubble := &playerBubble{
		proxy:  options.Proxy,
		keymap: newPlayerKeymap(),
	}

	bubble.helpC = help.New()
	bubble.progressC = progress.New(progress.WithDefaultGradient())
	bubble.progressC.ShowPercentage = false

	bubble.listC = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	bubble.listC.Title = "Playlist"
	bubble.listC.SetShowHelp(false)
	bubble.listC.SetShowStatusBar(false)
	bubble.listC.SetStatusBarItemName("track", "tracks")
	bubble.syncPlaylist()

	return bubble
}

// syncPlaylist rebuilds the list items from the mirror and keeps the
// selection on the current track.
func (b *playerBubble) syncPlaylist() {
	tracks, index := b.proxy.Playlist()

	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{track: track}
	}

	b.listC.SetItems(items)
	if index >= 0 && index < len(items) {
		b.listC.Select(index)
	}
}

func (b *playerBubble) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	interval := viper.GetInt(key.PlayerPosInterval)
	if interval <= 0 {
		interval = 500
	}

	return tea.Tick(time.Duration(interval)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
