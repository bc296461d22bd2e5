package proxy

import (
	"fmt"

	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/util"
)

// Control toggles playback: playing pauses, paused resumes, stopped starts
// the current track from the top.
func (p *Proxy) Control() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case protocol.StatePlaying:
		p.send(protocol.OpPause)
	case protocol.StatePaused:
		p.send(protocol.OpPlay, p.lastPos, p.volume)
	default:
		track, ok := p.view.Current().Get()
		if !ok {
			return
		}
		if p.lastPos > 0 {
			// Restart resume: reload the track, then pick up where the
			// previous session left off.
			p.send(protocol.OpLoad, track.ID)
			p.send(protocol.OpPlay, p.lastPos, p.volume)
			return
		}
		p.send(protocol.OpLoadPlay, track.ID, p.volume)
	}
}

// SkipNext moves to the next track. The mirror advances optimistically and
// the command follows; a later playing notification re-anchors the mirror if
// the service landed somewhere else. At the tail there is nothing local to
// advance to, so the service is asked for a fresh playlist instead.
func (p *Proxy) SkipNext() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.view.IsLast() {
		p.send(protocol.OpPlayNewPlaylist)
		return
	}

	if current, ok := p.view.Current().Get(); ok {
		p.history.Push(current)
	}

	next, err := p.view.Next()
	if err != nil {
		log.Warn(err)
		return
	}
	p.send(protocol.OpLoadPlay, next.ID, p.volume)
}

// SkipPrevious moves to the previous track, restarting the first one rather
// than walking off the head.
func (p *Proxy) SkipPrevious() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.view.IsFirst() {
		p.send(protocol.OpSeek, 0.0)
		p.lastPos = 0
		return
	}

	previous, err := p.view.Previous()
	if err != nil {
		log.Warn(err)
		return
	}
	p.send(protocol.OpLoadPlay, previous.ID, p.volume)
}

// PlayTrack jumps to an arbitrary playlist entry. The mirror moves
// optimistically, like the skips.
func (p *Proxy) PlayTrack(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current, ok := p.view.Current().Get(); ok && current.ID != id {
		p.history.Push(current)
	}
	if err := p.view.SetCurrent(id); err != nil {
		log.Warn(err)
		return
	}
	p.send(protocol.OpLoadPlay, id, p.volume)
}

// Seek asks the service to move within the current track.
func (p *Proxy) Seek(pos float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.send(protocol.OpSeek, pos)
	p.lastPos = pos
}

// SetVolume adjusts the gain on both sides and persists the preference.
func (p *Proxy) SetVolume(volume float64) {
	volume = util.Clamp(volume, 0, 1)

	p.mu.Lock()
	p.volume = volume
	p.send(protocol.OpSetVolume, volume)
	p.mu.Unlock()

	if err := store.UpdateVolume(volume); err != nil {
		log.Warn(err)
	}
}

// RequestPos asks the service for the authoritative position. The answer
// arrives as a pos notification.
func (p *Proxy) RequestPos() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send(protocol.OpGetPos)
}

// ToggleFavorite flips the favorite state of the current track.
func (p *Proxy) ToggleFavorite() error {
	track, ok := p.Current().Get()
	if !ok {
		return fmt.Errorf("no current track")
	}

	if store.IsFavorite(track.ID) {
		return store.RemoveFavorite(track.ID)
	}
	return store.AddFavorite(track)
}

// Suspend captures the position for restart resume and pauses playback.
// Called when the interface goes away.
func (p *Proxy) Suspend() {
	p.RequestPos()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == protocol.StatePlaying {
		p.send(protocol.OpPause)
	}
}

// send delivers one fire-and-forget command. Callers hold the lock.
func (p *Proxy) send(op protocol.Opcode, args ...any) {
	p.transport.Send(protocol.NewMessage(op, args...))
}
