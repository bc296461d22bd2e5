package playlist

import (
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/samber/mo"
)

// View is the proxy-side mirror of the service's authoritative cursor. It is a
// read-through cache: local Next/Previous moves are optimistic and are
// confirmed (or corrected) by the service's notifications, and Reload discards
// the mirror entirely when an update_playlist notification arrives.
type View struct {
	cursor *Cursor
	load   func() (Snapshot, error)
}

// NewView builds a view over the given loader, which typically reads the
// persisted snapshot from the local store.
func NewView(load func() (Snapshot, error)) (*View, error) {
	v := &View{load: load}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Reload discards the mirror and refetches the snapshot from the loader.
func (v *View) Reload() error {
	snap, err := v.load()
	if err != nil {
		return err
	}
	v.cursor = FromSnapshot(snap)
	return nil
}

// Len returns the number of mirrored tracks.
func (v *View) Len() int { return v.cursor.Len() }

// Index returns the mirrored current position.
func (v *View) Index() int { return v.cursor.Index() }

// Tracks returns a copy of the mirrored sequence.
func (v *View) Tracks() []song.Song { return v.cursor.Tracks() }

// Current returns the mirrored selected track, if any.
func (v *View) Current() mo.Option[song.Song] { return v.cursor.Current() }

// IsFirst reports whether the mirrored index sits at the head.
func (v *View) IsFirst() bool { return v.cursor.IsFirst() }

// IsLast reports whether the mirrored index sits at the tail.
func (v *View) IsLast() bool { return v.cursor.IsLast() }

// ByID returns the mirrored track with the given id, if present.
func (v *View) ByID(id int64) mo.Option[song.Song] { return v.cursor.ByID(id) }

// Next optimistically advances the mirror. The matching command must be sent
// to the service immediately after; a later playing notification re-anchors
// the mirror if the service disagreed.
func (v *View) Next() (song.Song, error) { return v.cursor.Next() }

// Previous optimistically retreats the mirror.
func (v *View) Previous() (song.Song, error) { return v.cursor.Previous() }

// SetCurrent re-anchors the mirror to the track the service reported playing.
func (v *View) SetCurrent(id int64) error { return v.cursor.SetCurrent(id) }
