// Package service implements the player side of the control channel: the
// authoritative playback state machine, the playlist cursor it owns, and the
// position/prefetch timer.
//
// All state mutation is serialized behind one mutex. Message handlers run on
// the transport's read goroutine, completion events arrive from the audio
// backend's goroutine, and timer ticks from the ticker goroutine; each entry
// point takes the lock before touching anything.
package service

import (
	"net"
	"sync"

	"github.com/gtplayer-cli/gtplayer/api"
	"github.com/gtplayer-cli/gtplayer/audio"
	"github.com/gtplayer-cli/gtplayer/download"
	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/spf13/viper"
)

// Refresher fetches a fresh batch of tracks when the playlist is exhausted.
type Refresher func() ([]song.Song, error)

// Options wires the service's collaborators.
type Options struct {
	Transport *protocol.Transport
	Backend   audio.Backend
	Downloads *download.Manager
	Cursor    *playlist.Cursor

	// Refresh replaces the default recommendation-API fetch. Leave nil
	// outside tests.
	Refresh Refresher
}

// Service is the authoritative playback state machine.
type Service struct {
	mu sync.Mutex

	transport *protocol.Transport
	backend   audio.Backend
	downloads *download.Manager
	cursor    *playlist.Cursor
	refresh   Refresher

	state    protocol.State
	volume   float64
	prepared bool

	ticker *posTicker
}

// New creates a service around the given collaborators. The cursor is the
// single source of truth for playlist position; the proxy only mirrors it.
func New(options Options) *Service {
	s := &Service{
		transport: options.Transport,
		backend:   options.Backend,
		downloads: options.Downloads,
		cursor:    options.Cursor,
		refresh:   options.Refresh,
		state:     protocol.StateStopped,
		volume:    viper.GetFloat64(key.PlayerVolume),
	}

	if s.cursor == nil {
		s.cursor = playlist.NewCursor(nil)
	}
	if s.refresh == nil {
		s.refresh = defaultRefresh
	}

	s.backend.OnComplete(s.onComplete)
	s.ticker = newPosTicker(s)
	return s
}

// defaultRefresh pulls recommendations matching the stored user preferences.
func defaultRefresh() ([]song.Song, error) {
	user, _ := store.GetUser().Get()
	mode := user.PlayMode
	if mode == "" {
		mode = store.PlayModePreview
	}

	tracks, err := api.GetRecommendations(user.Genres, user.Artists, mode)
	if err != nil {
		return nil, err
	}

	out := make([]song.Song, len(tracks))
	for i, t := range tracks {
		out[i] = *t
	}
	return out, nil
}

// Run serves control messages until the transport closes. Blocking.
func (s *Service) Run() {
	s.ticker.Start()
	s.transport.Serve(s.Handle)
}

// Close stops the timer, the audio backend and the transport.
func (s *Service) Close() error {
	s.ticker.Stop()
	_ = s.backend.Close()
	return s.transport.Close()
}

// Handle dispatches one inbound control message.
func (s *Service) Handle(msg protocol.Message, from net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Op {
	case protocol.OpLoad:
		s.handleLoad(msg)
	case protocol.OpPlay:
		s.handlePlay(msg)
	case protocol.OpLoadPlay:
		s.handleLoadPlay(msg)
	case protocol.OpSeek:
		s.handleSeek(msg)
	case protocol.OpStop:
		s.handleStop()
	case protocol.OpPause:
		s.handlePause()
	case protocol.OpSetVolume:
		s.handleSetVolume(msg)
	case protocol.OpGetPos:
		s.handleGetPos(from)
	case protocol.OpPlayNewPlaylist:
		s.playNewPlaylist()
	default:
		log.Warnf("service: unexpected %s", msg.Op)
	}
}

// handleLoad prepares a track without starting playback.
func (s *Service) handleLoad(msg protocol.Message) {
	id, err := msg.Int64(0)
	if err != nil {
		log.Warn(err)
		return
	}
	if err := s.load(id); err != nil {
		log.Error(err)
	}
}

// load makes the track with the given id current and loaded in the backend,
// downloading its audio first when the cache has nothing for it.
func (s *Service) load(id int64) error {
	if err := s.cursor.SetCurrent(id); err != nil {
		return err
	}
	s.persistCursor()

	track := s.cursor.Current().MustGet()
	path, err := s.ensureAudio(track)
	if err != nil {
		return err
	}

	if err := s.backend.Load(string(path)); err != nil {
		return err
	}
	s.prepared = true

	// Cover art is cached off the playback path. The shutdown sweep in
	// download.EvictCovers reclaims whatever falls out of reach.
	go func() {
		if _, err := s.downloads.EnsureCover(track); err != nil {
			log.Warnf("cover for %s: %v", track, err)
		}
	}()
	return nil
}

// ensureAudio blocks until the track's audio for the active play mode is on
// disk, then refreshes the cursor's copy of the track so its cache path is
// current.
func (s *Service) ensureAudio(track song.Song) (song.CachePath, error) {
	path, err := s.downloads.Ensure(track, playMode())
	if err != nil {
		return song.CacheAbsent, err
	}

	if fresh, ok := store.GetTrack(track.ID).Get(); ok {
		s.cursor.Update(fresh)
	}
	return path, nil
}

// handlePlay starts or resumes playback. A play arriving before any load
// self-heals by loading the current track first; the proxy learns about the
// recovery through the playing notification.
func (s *Service) handlePlay(msg protocol.Message) {
	seek, err := msg.Float(0)
	if err != nil {
		log.Warn(err)
		return
	}
	if volume, err := msg.Float(1); err == nil {
		s.volume = volume
	}

	if !s.prepared {
		track, ok := s.cursor.Current().Get()
		if !ok {
			log.Warn("play with nothing loaded and no current track")
			return
		}
		if err := s.load(track.ID); err != nil {
			log.Error(err)
			return
		}
		s.notify(protocol.OpPlaying, track.ID, seek)
	}

	s.play(seek)
}

// play runs the backend and publishes the state change. Callers hold the lock.
func (s *Service) play(seek float64) {
	if err := s.backend.Play(seek, s.volume); err != nil {
		log.Error(err)
		return
	}
	s.setState(protocol.StatePlaying)
}

// handleLoadPlay switches to a track and plays it from the start. An active
// track is stopped first, and the proxy sees the full transition: stopped,
// the new track's playing notification, then playing.
func (s *Service) handleLoadPlay(msg protocol.Message) {
	id, err := msg.Int64(0)
	if err != nil {
		log.Warn(err)
		return
	}
	if volume, err := msg.Float(1); err == nil {
		s.volume = volume
	}

	s.loadPlay(id)
}

func (s *Service) loadPlay(id int64) {
	if s.state == protocol.StatePlaying {
		if err := s.backend.Stop(); err != nil {
			log.Warn(err)
		}
		s.setState(protocol.StateStopped)
	}

	if err := s.load(id); err != nil {
		log.Error(err)
		return
	}

	s.notify(protocol.OpPlaying, id, 0.0)
	s.play(0)
}

// handleSeek moves within the loaded track. Seeking with nothing prepared is
// a no-op rather than an error: the message likely raced a track switch.
func (s *Service) handleSeek(msg protocol.Message) {
	pos, err := msg.Float(0)
	if err != nil {
		log.Warn(err)
		return
	}
	if !s.prepared {
		return
	}
	if err := s.backend.Seek(pos); err != nil {
		log.Warn(err)
	}
}

// handleStop ends playback. Idempotent: stopping while stopped changes
// nothing and notifies nobody.
func (s *Service) handleStop() {
	if s.state == protocol.StateStopped {
		return
	}
	if err := s.backend.Stop(); err != nil {
		log.Warn(err)
	}
	s.setState(protocol.StateStopped)
}

// handlePause suspends playback keeping the position. Only a playing track
// can pause; pausing from stopped or paused is a silent no-op.
func (s *Service) handlePause() {
	if s.state != protocol.StatePlaying {
		return
	}
	if err := s.backend.Pause(); err != nil {
		log.Warn(err)
	}
	s.setState(protocol.StatePaused)
}

// handleSetVolume stores the gain and applies it even when nothing plays, so
// the next play starts at the right level.
func (s *Service) handleSetVolume(msg protocol.Message) {
	volume, err := msg.Float(0)
	if err != nil {
		log.Warn(err)
		return
	}

	s.volume = volume
	if s.prepared {
		if err := s.backend.SetVolume(volume); err != nil {
			log.Warn(err)
		}
	}
}

// handleGetPos answers the sender with the current position.
func (s *Service) handleGetPos(from net.Addr) {
	pos := 0.0
	if s.prepared {
		if p, err := s.backend.Position(); err == nil {
			pos = p
		}
	}
	s.transport.Reply(protocol.NewMessage(protocol.OpPos, pos), from)
}

// onComplete is posted by the audio backend when a track plays to its end.
func (s *Service) onComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notify(protocol.OpSetComplete, true)
	s.setState(protocol.StateStopped)
	s.prepared = false
	s.playNext()
}

// playNext advances the cursor, refreshing the playlist first when the
// current track was the last one. The refresh fetch blocks dispatch; the
// stall is deliberate, playback already ended and nothing else is urgent.
func (s *Service) playNext() {
	if s.cursor.IsLast() {
		if !s.refreshPlaylist() {
			return
		}
	}

	if _, err := s.cursor.Next(); err != nil {
		log.Error(err)
		return
	}
	s.persistCursor()

	track, ok := s.cursor.Current().Get()
	if !ok {
		return
	}
	s.loadPlay(track.ID)
}

// playNewPlaylist discards the current playlist and starts the first track
// of a fresh one.
func (s *Service) playNewPlaylist() {
	if s.state == protocol.StatePlaying {
		if err := s.backend.Stop(); err != nil {
			log.Warn(err)
		}
		s.setState(protocol.StateStopped)
	}

	if !s.refreshPlaylist() {
		return
	}

	if _, err := s.cursor.Next(); err != nil {
		log.Error(err)
		return
	}
	s.persistCursor()

	if track, ok := s.cursor.Current().Get(); ok {
		s.loadPlay(track.ID)
	}
}

// refreshPlaylist replaces the cursor with freshly fetched tracks, persists
// the snapshot and tells the proxy its mirror is stale.
func (s *Service) refreshPlaylist() bool {
	tracks, err := s.refresh()
	if err != nil {
		log.Error(err)
		return false
	}
	if len(tracks) == 0 {
		log.Warn("playlist refresh returned no tracks")
		return false
	}

	s.cursor = playlist.NewCursor(tracks)
	s.prepared = false
	s.persistCursor()
	s.notify(protocol.OpUpdatePlaylist)
	return true
}

// persistCursor writes the cursor snapshot to the store. Crash safety: the
// proxy and a restarted service both resume from this.
func (s *Service) persistCursor() {
	if err := store.UpdatePlaylist(s.cursor.Snapshot()); err != nil {
		log.Warn(err)
	}
}

// setState records and publishes a state change. The current track id rides
// along so the proxy can drop notifications for tracks it moved past.
func (s *Service) setState(state protocol.State) {
	if s.state == state {
		return
	}
	s.state = state

	if track, ok := s.cursor.Current().Get(); ok {
		s.notify(protocol.OpSetState, string(state), track.ID)
	} else {
		s.notify(protocol.OpSetState, string(state))
	}
}

// notify sends a fire-and-forget notification to the proxy.
func (s *Service) notify(op protocol.Opcode, args ...any) {
	s.transport.Send(protocol.NewMessage(op, args...))
}

// playMode returns the stored play-mode preference.
func playMode() string {
	if user, ok := store.GetUser().Get(); ok && user.PlayMode != "" {
		return user.PlayMode
	}
	return store.PlayModePreview
}
