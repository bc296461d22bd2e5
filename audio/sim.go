package audio

import (
	"fmt"
	"sync"
	"time"
)

// simDefaultDuration stands in for real media length when none is set.
const simDefaultDuration = 30 * time.Second

// Sim is a clock-driven Backend with no audio output. Every loaded file
// reports the configured duration and completes when the wall clock says it
// played through. Used for tests and for running without mpv installed.
type Sim struct {
	mu sync.Mutex

	trackDuration time.Duration

	loaded     bool
	path       string
	pos        float64
	volume     float64
	playing    bool
	startedAt  time.Time
	timer      *time.Timer
	onComplete func()
}

// NewSim creates a simulation backend. A zero duration falls back to the
// default track length.
func NewSim(duration time.Duration) *Sim {
	if duration <= 0 {
		duration = simDefaultDuration
	}
	return &Sim{trackDuration: duration}
}

// Load prepares the given path. The file does not need to exist.
func (s *Sim) Load(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimer()
	s.loaded = true
	s.path = path
	s.pos = 0
	s.playing = false
	return nil
}

// Play starts or resumes the clock at the given position.
func (s *Sim) Play(seek, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("nothing loaded")
	}

	s.volume = volume
	s.pos = clampPos(seek, s.trackDuration)
	s.playing = true
	s.startedAt = time.Now()
	s.armTimer()
	return nil
}

// Pause freezes the clock, keeping the position.
func (s *Sim) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		s.pos = s.positionLocked()
		s.playing = false
		s.cancelTimer()
	}
	return nil
}

// Stop freezes the clock and rewinds.
func (s *Sim) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = false
	s.pos = 0
	s.cancelTimer()
	return nil
}

// Seek moves the clock to an absolute position.
func (s *Sim) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("nothing loaded")
	}

	s.pos = clampPos(seconds, s.trackDuration)
	if s.playing {
		s.startedAt = time.Now()
		s.armTimer()
	}
	return nil
}

// SetVolume stores the gain.
func (s *Sim) SetVolume(volume float64) error {
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
	return nil
}

// Volume returns the stored gain.
func (s *Sim) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Position returns the simulated playback position.
func (s *Sim) Position() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return 0, fmt.Errorf("nothing loaded")
	}
	return s.positionLocked(), nil
}

// Duration returns the configured track length.
func (s *Sim) Duration() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return 0, fmt.Errorf("nothing loaded")
	}
	return s.trackDuration.Seconds(), nil
}

// Playing reports whether the clock is running.
func (s *Sim) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Path returns the loaded path.
func (s *Sim) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// OnComplete registers the end-of-track callback.
func (s *Sim) OnComplete(fn func()) {
	s.mu.Lock()
	s.onComplete = fn
	s.mu.Unlock()
}

// Close stops the clock.
func (s *Sim) Close() error {
	return s.Stop()
}

// positionLocked computes the position under the lock.
func (s *Sim) positionLocked() float64 {
	pos := s.pos
	if s.playing {
		pos += time.Since(s.startedAt).Seconds()
	}
	return clampPos(pos, s.trackDuration)
}

// armTimer schedules the completion callback for the remaining play time.
// Must be called under the lock.
func (s *Sim) armTimer() {
	s.cancelTimer()
	remaining := s.trackDuration - time.Duration(s.pos*float64(time.Second))
	if remaining < 0 {
		remaining = 0
	}
	s.timer = time.AfterFunc(remaining, s.complete)
}

// cancelTimer drops any pending completion. Must be called under the lock.
func (s *Sim) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// complete fires the end-of-track callback once the clock runs out.
func (s *Sim) complete() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.pos = s.trackDuration.Seconds()
	fn := s.onComplete
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func clampPos(pos float64, duration time.Duration) float64 {
	if pos < 0 {
		return 0
	}
	if max := duration.Seconds(); pos > max {
		return max
	}
	return pos
}
