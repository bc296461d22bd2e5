package service

import (
	"time"

	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/spf13/viper"
)

// posTicker periodically samples the playback position and triggers the
// near-end prefetch. It is cancelable and re-creatable so state transitions
// can supersede it without leaking goroutines.
type posTicker struct {
	service *Service
	stop    chan struct{}
}

func newPosTicker(service *Service) *posTicker {
	return &posTicker{service: service}
}

// Start launches the tick loop. Starting a running ticker is a no-op.
func (t *posTicker) Start() {
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})

	interval := viper.GetDuration(key.PlayerPosInterval)
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	go func(stop chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.service.tick()
			}
		}
	}(t.stop)
}

// Stop cancels the tick loop.
func (t *posTicker) Stop() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// tick checks whether the playing track is close enough to its end to start
// fetching the next one. The download is fired and forgotten; the tick never
// blocks on network I/O it caused.
func (s *Service) tick() {
	if !viper.GetBool(key.PrefetchEnabled) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != protocol.StatePlaying || !s.prepared {
		return
	}

	pos, err := s.backend.Position()
	if err != nil {
		return
	}
	duration, err := s.backend.Duration()
	if err != nil || duration <= 0 {
		return
	}

	threshold := viper.GetDuration(key.PrefetchThreshold).Seconds()
	if duration-pos >= threshold {
		return
	}

	// At the tail the peek degrades to the current track and the refresh
	// fetch cannot run from a timer, so there is nothing to warm up.
	if s.cursor.IsLast() {
		return
	}

	next, err := s.cursor.PreviewNext()
	if err != nil {
		return
	}

	if path := next.File(playMode()); path.IsFile() {
		return
	}

	log.Debugf("prefetching %s, %0.1fs left in current track", next, duration-pos)
	s.downloads.Prefetch(next, playMode())
}
