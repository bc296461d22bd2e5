// Package tui renders the now-playing screen and routes keystrokes to the
// playback proxy.
package tui

import (
	"github.com/gtplayer-cli/gtplayer/icon"
	"github.com/gtplayer-cli/gtplayer/song"
)

// trackItem adapts a track for the playlist list component.
type trackItem struct {
	track song.Song
}

func (t trackItem) Title() string {
	title := t.track.Name
	if t.track.IsFavorite() {
		title += " " + icon.Get(icon.Heart)
	}
	return title
}

func (t trackItem) Description() string {
	return t.track.Artist
}

func (t trackItem) FilterValue() string {
	return t.track.Name + " " + t.track.Artist
}
