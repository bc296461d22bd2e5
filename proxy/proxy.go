// Package proxy implements the UI side of the control channel: a mirrored
// subset of the service's playback state, the optimistic playlist view, and
// the command surface the interface calls into.
//
// The proxy never decides playback truth. It sends commands, applies
// notifications, and treats its own copies as stale the moment they are read.
package proxy

import (
	"net"
	"sync"

	"github.com/gtplayer-cli/gtplayer/history"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/util"
	"github.com/samber/mo"
)

// Options wires the proxy's collaborators.
type Options struct {
	Transport *protocol.Transport
	View      *playlist.View

	// OnUpdate is invoked after any notification changes visible state.
	// The TUI uses it to repaint. May be nil.
	OnUpdate func()
}

// Proxy is the playback-control state mirror.
type Proxy struct {
	mu sync.Mutex

	transport *protocol.Transport
	view      *playlist.View
	onUpdate  func()

	state    protocol.State
	lastPos  float64
	volume   float64
	complete bool
	history  *util.Stack[song.Song]
}

// New creates a proxy around the given collaborators, restoring volume and
// resume position from the stored user record.
func New(options Options) *Proxy {
	p := &Proxy{
		transport: options.Transport,
		view:      options.View,
		onUpdate:  options.OnUpdate,
		state:     protocol.StateStopped,
		volume:    0.5,
		history:   util.NewStack[song.Song](),
	}

	if user, ok := store.GetUser().Get(); ok {
		if user.Volume > 0 {
			p.volume = user.Volume
		}
		p.lastPos = user.LastPos
	}
	return p
}

// SetOnUpdate replaces the repaint callback. The UI hooks itself in here
// once its event loop exists.
func (p *Proxy) SetOnUpdate(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Run serves notifications until the transport closes. Blocking.
func (p *Proxy) Run() {
	p.transport.Serve(p.Handle)
}

// Close shuts the control socket.
func (p *Proxy) Close() error {
	return p.transport.Close()
}

// State returns the mirrored playback state.
func (p *Proxy) State() protocol.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the mirrored current track.
func (p *Proxy) Current() mo.Option[song.Song] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.Current()
}

// Playlist returns a copy of the mirrored track sequence and index.
func (p *Proxy) Playlist() ([]song.Song, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.Tracks(), p.view.Index()
}

// LastPos returns the last reported playback position.
func (p *Proxy) LastPos() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPos
}

// Volume returns the mirrored gain.
func (p *Proxy) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Completed reports whether the current track finished on its own.
func (p *Proxy) Completed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.complete
}

// History returns the previously played tracks, most recent last.
func (p *Proxy) History() []song.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Items()
}

// Handle dispatches one inbound notification.
func (p *Proxy) Handle(msg protocol.Message, _ net.Addr) {
	p.mu.Lock()
	changed := false

	switch msg.Op {
	case protocol.OpPlaying:
		changed = p.handlePlaying(msg)
	case protocol.OpPos:
		changed = p.handlePos(msg)
	case protocol.OpSetState:
		changed = p.handleSetState(msg)
	case protocol.OpSetComplete:
		changed = p.handleSetComplete(msg)
	case protocol.OpUpdatePlaylist:
		changed = p.handleUpdatePlaylist()
	default:
		log.Warnf("proxy: unexpected %s", msg.Op)
	}

	onUpdate := p.onUpdate
	p.mu.Unlock()

	if changed && onUpdate != nil {
		onUpdate()
	}
}

// handlePlaying is the synchronization point between the two cursors. A
// track id differing from the mirror means the service advanced on its own;
// the mirror re-anchors and the UI gets a full refresh.
func (p *Proxy) handlePlaying(msg protocol.Message) bool {
	id, err := msg.Int64(0)
	if err != nil {
		log.Warn(err)
		return false
	}
	pos, err := msg.Float(1)
	if err != nil {
		log.Warn(err)
		return false
	}

	if current, ok := p.view.Current().Get(); !ok || current.ID != id {
		if err := p.reanchor(id); err != nil {
			log.Warn(err)
			return false
		}
	}

	p.lastPos = pos
	p.complete = false

	if track, ok := p.view.Current().Get(); ok && pos == 0 {
		if err := history.Save(track); err != nil {
			log.Warn(err)
		}
	}
	return true
}

// reanchor points the mirror at the reported track, reloading the snapshot
// first when the mirror has never heard of it.
func (p *Proxy) reanchor(id int64) error {
	if current, ok := p.view.Current().Get(); ok {
		p.history.Push(current)
	}

	if err := p.view.SetCurrent(id); err == nil {
		return nil
	}
	if err := p.view.Reload(); err != nil {
		return err
	}
	return p.view.SetCurrent(id)
}

// handlePos is the get_pos reply: it touches the position cache and nothing
// else, and persists the position for restart resume.
func (p *Proxy) handlePos(msg protocol.Message) bool {
	pos, err := msg.Float(0)
	if err != nil {
		log.Warn(err)
		return false
	}

	p.lastPos = pos
	if err := store.UpdateLastPos(pos); err != nil {
		log.Warn(err)
	}
	return true
}

// handleSetState applies a state change. A notification carrying a track id
// for a track the mirror already moved past is stale and dropped.
func (p *Proxy) handleSetState(msg protocol.Message) bool {
	name, err := msg.String(0)
	if err != nil {
		log.Warn(err)
		return false
	}

	if id, err := msg.Int64(1); err == nil {
		if current, ok := p.view.Current().Get(); ok && current.ID != id {
			log.Debugf("dropping stale %s for track %d", name, id)
			return false
		}
	}

	p.state = protocol.State(name)
	return true
}

func (p *Proxy) handleSetComplete(msg protocol.Message) bool {
	done, err := msg.Bool(0)
	if err != nil {
		log.Warn(err)
		return false
	}
	p.complete = done
	return true
}

// handleUpdatePlaylist refetches the snapshot the service just replaced.
func (p *Proxy) handleUpdatePlaylist() bool {
	if err := p.view.Reload(); err != nil {
		log.Error(err)
		return false
	}
	return true
}
