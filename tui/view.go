// Package tui renders the now-playing screen and routes keystrokes to the
// playback proxy.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/gtplayer-cli/gtplayer/color"
	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/icon"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/style"
	"github.com/gtplayer-cli/gtplayer/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *playerBubble) View() string {
	if b.showPlaylist {
		return paddingStyle.Render(b.listC.View())
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		b.viewTrack(),
		"",
		b.viewPosition(),
		b.viewStatus(),
	}

	return b.renderLines(lines)
}

func (b *playerBubble) viewTrack() string {
	track, ok := b.proxy.Current().Get()
	if !ok {
		return style.Faint("Nothing queued")
	}

	line := fmt.Sprintf("%s %s %s %s",
		icon.Get(icon.Note),
		style.Fg(color.Purple)(track.Name),
		style.Faint("by"),
		track.Artist,
	)
	if track.IsFavorite() {
		line += " " + icon.Get(icon.Heart)
	}

	if b.width > 4 {
		line = truncate.StringWithTail(line, uint(b.width-4), "…")
	}
	return line
}

// viewPosition renders the elapsed-time bar. Preview clips have a fixed
// length, so only they get a filled ratio; full tracks show elapsed time
// alone since the wire carries no duration.
func (b *playerBubble) viewPosition() string {
	pos := b.proxy.LastPos()
	elapsed := util.FormatTimestamp(pos)

	if playMode() == store.PlayModePreview {
		ratio := pos / constant.PreviewSeconds
		if ratio > 1 {
			ratio = 1
		}
		return fmt.Sprintf("%s %s", b.progressC.ViewAs(ratio), elapsed)
	}

	return elapsed
}

func (b *playerBubble) viewStatus() string {
	tracks, index := b.proxy.Playlist()

	status := fmt.Sprintf("%s %s", stateIcon(b.proxy.State()), b.proxy.State())
	if len(tracks) > 0 && index >= 0 {
		status += style.Faint(fmt.Sprintf("  track %d/%d", index+1, len(tracks)))
	}
	status += style.Faint(fmt.Sprintf("  vol %d%%", int(b.proxy.Volume()*100+0.5)))

	return status
}

func (b *playerBubble) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if b.height > h {
		l += strings.Repeat("\n", b.height-h)
	}
	l += b.helpC.View(b.keymap)

	return paddingStyle.Render(l)
}

func stateIcon(state protocol.State) string {
	switch state {
	case protocol.StatePlaying:
		return icon.Get(icon.Play)
	case protocol.StatePaused:
		return icon.Get(icon.Pause)
	default:
		return icon.Get(icon.Stop)
	}
}

func playMode() string {
	if user, ok := store.GetUser().Get(); ok && user.PlayMode != "" {
		return user.PlayMode
	}
	return store.PlayModePreview
}
