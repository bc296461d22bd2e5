// Package audio defines a unified abstraction layer for audio playback engines.
// The architecture supports multiple backends, with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package audio

import (
	"fmt"

	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/spf13/viper"
)

// Backend encapsulates the required capabilities for an audio playback engine.
type Backend interface {
	// Load prepares the given local file for playback without starting it.
	Load(path string) error

	// Play starts or resumes playback at the given absolute position and gain.
	Play(seek, volume float64) error

	// Pause suspends playback, keeping the position for resume.
	Pause() error

	// Stop ends playback and discards the prepared position.
	Stop() error

	// Seek transitions the playback position to an absolute timestamp in seconds.
	Seek(seconds float64) error

	// SetVolume adjusts the output gain, 0.0 to 1.0.
	SetVolume(volume float64) error

	// Position retrieves the current absolute playback position in seconds.
	Position() (float64, error)

	// Duration retrieves the total temporal length of the loaded file in seconds.
	Duration() (float64, error)

	// OnComplete registers the callback invoked when the loaded file plays to
	// its natural end. Not invoked on Stop.
	OnComplete(fn func())

	// Close terminates the playback engine and releases all associated resources.
	Close() error
}

// New constructs the backend selected by configuration.
func New() (Backend, error) {
	name := viper.GetString(key.PlayerBackend)
	switch name {
	case "mpv", "":
		return NewMPV(), nil
	case "sim":
		return NewSim(0), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", name)
	}
}
