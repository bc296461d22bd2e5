// Package playlist implements the ordered track sequence with a single current position.
//
// Two flavors exist: Cursor, the authoritative read-write structure owned by
// the player service, and View, the proxy-side snapshot refreshed from the
// local store on notifications. They never share memory; the service's Cursor
// is the single source of truth.
package playlist

import (
	"errors"
	"fmt"

	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/samber/mo"
)

var (
	// ErrNotFound indicates a track lookup against a cursor that does not contain it.
	// This failing loudly is deliberate: it means the two cursors have desynchronized.
	ErrNotFound = errors.New("track not in playlist")

	// ErrTrackActive rejects removal of the currently selected track.
	ErrTrackActive = errors.New("track is currently selected")
)

// Cursor is an ordered sequence of tracks plus a single current index.
// The index is always -1 (nothing selected) or a valid position.
type Cursor struct {
	tracks  []song.Song
	current int
}

// NewCursor creates a cursor over the given tracks with nothing selected.
func NewCursor(tracks []song.Song) *Cursor {
	return &Cursor{tracks: tracks, current: -1}
}

// Snapshot is the serializable form of a cursor, persisted to the local store
// on every structural change so a process restart resumes where playback left off.
type Snapshot struct {
	Tracks  []song.Song `json:"tracks"`
	Current int         `json:"current"`
}

// Snapshot captures the cursor for persistence.
func (c *Cursor) Snapshot() Snapshot {
	tracks := make([]song.Song, len(c.tracks))
	copy(tracks, c.tracks)
	return Snapshot{Tracks: tracks, Current: c.current}
}

// FromSnapshot reconstructs a cursor from its persisted form. An out-of-range
// index is re-anchored to -1 rather than trusted.
func FromSnapshot(s Snapshot) *Cursor {
	c := &Cursor{tracks: s.Tracks, current: s.Current}
	if c.current < -1 || c.current >= len(c.tracks) {
		c.current = -1
	}
	return c
}

// Len returns the number of tracks in the sequence.
func (c *Cursor) Len() int { return len(c.tracks) }

// Index returns the current position, -1 when nothing is selected.
func (c *Cursor) Index() int { return c.current }

// Tracks returns a copy of the track sequence.
func (c *Cursor) Tracks() []song.Song {
	out := make([]song.Song, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Current returns the selected track, if any.
func (c *Cursor) Current() mo.Option[song.Song] {
	if c.current < 0 || c.current >= len(c.tracks) {
		return mo.None[song.Song]()
	}
	return mo.Some(c.tracks[c.current])
}

// IsFirst reports whether the current index sits at the head of the sequence.
func (c *Cursor) IsFirst() bool { return c.current == 0 }

// IsLast reports whether the current index sits at the tail of the sequence.
// An empty cursor reports true, which is what triggers a playlist refresh.
func (c *Cursor) IsLast() bool { return c.current == len(c.tracks)-1 }

// Next advances the index, saturating at the tail, and returns the selected
// track. Advancing from -1 selects the first track.
func (c *Cursor) Next() (song.Song, error) {
	if len(c.tracks) == 0 {
		return song.Song{}, ErrNotFound
	}
	if !c.IsLast() {
		c.current++
	}
	return c.tracks[c.current], nil
}

// Previous retreats the index, saturating at the head. The first call on a
// fresh cursor (index -1) moves forward to 0 instead of staying unselected.
func (c *Cursor) Previous() (song.Song, error) {
	if len(c.tracks) == 0 {
		return song.Song{}, ErrNotFound
	}
	if c.current == -1 {
		c.current++
	} else if !c.IsFirst() {
		c.current--
	}
	return c.tracks[c.current], nil
}

// PreviewNext peeks at the track that Next would select without mutating the
// index. At the tail it degrades to the current track rather than reporting
// nothing: prefetch callers depend on always getting some track back, and a
// cached current track makes the degenerate prefetch a no-op.
func (c *Cursor) PreviewNext() (song.Song, error) {
	if len(c.tracks) == 0 {
		return song.Song{}, ErrNotFound
	}
	idx := c.current
	if !c.IsLast() {
		idx++
	}
	if idx < 0 {
		idx = 0
	}
	return c.tracks[idx], nil
}

// SetCurrent selects the track with the given id. A missing track is a loud
// failure, never swallowed: it indicates the proxy and service cursors have
// diverged.
func (c *Cursor) SetCurrent(id int64) error {
	for i, t := range c.tracks {
		if t.ID == id {
			c.current = i
			return nil
		}
	}
	return fmt.Errorf("set current %d: %w", id, ErrNotFound)
}

// ByID returns the track with the given id, if present.
func (c *Cursor) ByID(id int64) mo.Option[song.Song] {
	for _, t := range c.tracks {
		if t.ID == id {
			return mo.Some(t)
		}
	}
	return mo.None[song.Song]()
}

// Update replaces the stored copy of a track matched by id, leaving the index
// untouched. Used to fold freshly downloaded cache paths back into the cursor.
func (c *Cursor) Update(s song.Song) {
	for i, t := range c.tracks {
		if t.ID == s.ID {
			c.tracks[i] = s
			return
		}
	}
}

// Append adds a track to the tail of the sequence.
func (c *Cursor) Append(s song.Song) {
	c.tracks = append(c.tracks, s)
}

// Remove deletes the track with the given id. Removing the currently selected
// track is rejected with ErrTrackActive; the index of a track before the
// current one is re-anchored so the selection is preserved.
func (c *Cursor) Remove(id int64) error {
	for i, t := range c.tracks {
		if t.ID != id {
			continue
		}
		if i == c.current {
			return ErrTrackActive
		}
		c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
		if i < c.current {
			c.current--
		}
		return nil
	}
	return fmt.Errorf("remove %d: %w", id, ErrNotFound)
}
