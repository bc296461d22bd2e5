// Package tui renders the now-playing screen and routes keystrokes to the
// playback proxy.
package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/open"
)

const (
	volumeStep = 0.05
	seekStep   = 5.0
)

func (b *playerBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.progressC.Width = msg.Width - 8
		b.listC.SetSize(msg.Width-4, msg.Height-4)
		return b, nil

	case tickMsg:
		// The reply lands as a pos notification, which repaints on its own.
		b.proxy.RequestPos()
		return b, tickCmd()

	case refreshMsg:
		b.syncPlaylist()
		return b, nil

	case tea.KeyMsg:
		if b.showPlaylist {
			return b.handlePlaylistKey(msg)
		}
		return b.handleKey(msg)
	}

	return b, nil
}

func (b *playerBubble) handlePlaylistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := b.keymap

	// While the filter input is open every keystroke belongs to the list.
	if b.listC.FilterState() != list.Filtering {
		switch {
		case bubblesKey.Matches(msg, k.forceQuit):
			return b, tea.Quit

		case bubblesKey.Matches(msg, k.quit), bubblesKey.Matches(msg, k.playlist):
			b.showPlaylist = false
			return b, nil

		case bubblesKey.Matches(msg, k.confirm):
			if item, ok := b.listC.SelectedItem().(trackItem); ok {
				b.proxy.PlayTrack(item.track.ID)
				b.showPlaylist = false
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.listC, cmd = b.listC.Update(msg)
	return b, cmd
}

func (b *playerBubble) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := b.keymap

	switch {
	case bubblesKey.Matches(msg, k.forceQuit):
		return b, tea.Quit

	case bubblesKey.Matches(msg, k.quit):
		b.proxy.Suspend()
		return b, tea.Quit

	case bubblesKey.Matches(msg, k.playPause):
		b.proxy.Control()

	case bubblesKey.Matches(msg, k.next):
		b.proxy.SkipNext()

	case bubblesKey.Matches(msg, k.prev):
		b.proxy.SkipPrevious()

	case bubblesKey.Matches(msg, k.favorite):
		if err := b.proxy.ToggleFavorite(); err != nil {
			log.Warn(err)
		}

	case bubblesKey.Matches(msg, k.volumeUp):
		b.proxy.SetVolume(b.proxy.Volume() + volumeStep)

	case bubblesKey.Matches(msg, k.volumeDown):
		b.proxy.SetVolume(b.proxy.Volume() - volumeStep)

	case bubblesKey.Matches(msg, k.seekForward):
		b.proxy.Seek(b.proxy.LastPos() + seekStep)

	case bubblesKey.Matches(msg, k.seekBack):
		pos := b.proxy.LastPos() - seekStep
		if pos < 0 {
			pos = 0
		}
		b.proxy.Seek(pos)

	case bubblesKey.Matches(msg, k.playlist):
		b.syncPlaylist()
		b.showPlaylist = true

	case bubblesKey.Matches(msg, k.openURL):
		if track, ok := b.proxy.Current().Get(); ok && track.SpotifyID != "" {
			if err := open.Start("https://open.spotify.com/track/" + track.SpotifyID); err != nil {
				log.Warn(err)
			}
		}

	case bubblesKey.Matches(msg, k.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return b, nil
}
