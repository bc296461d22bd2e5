// Package history provides the implementation for tracking and persisting the user's listening history.
package history

import (
	"strconv"
	"time"

	"github.com/metafates/gache"
	"golang.org/x/exp/slices"

	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/where"
)

// cacher provides an abstracted, disk-backed registry for playback records.
var cacher = gache.New[map[string]*SavedTrack](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of historical playback records from the persistent store.
func Get() (map[string]*SavedTrack, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedTrack), nil
	}
	return cached, nil
}

// Save records that the given track started playing, incrementing its play
// count and stamping the time.
func Save(track song.Song) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedTrack(track)
	if existing, exists := saved[record.encode()]; exists {
		record.PlayCount = existing.PlayCount
	}
	record.PlayCount++
	record.LastPlayedAt = time.Now()

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a specific playback record from the history registry.
func Remove(track *SavedTrack) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, track.encode())
	return cacher.Set(saved)
}

// Recent returns up to limit records, most recently played first.
func Recent(limit int) ([]*SavedTrack, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	records := make([]*SavedTrack, 0, len(saved))
	for _, record := range saved {
		records = append(records, record)
	}

	slices.SortStableFunc(records, func(a, b *SavedTrack) int {
		return b.LastPlayedAt.Compare(a.LastPlayedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// SavedTrack represents a single playback entry preserved in the user's history.
type SavedTrack struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Artist       string    `json:"artist"`
	PlayCount    int       `json:"play_count"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

func (s *SavedTrack) encode() string {
	return strconv.FormatInt(s.ID, 10)
}

func (s *SavedTrack) String() string {
	return s.Name + " by " + s.Artist
}

func newSavedTrack(track song.Song) *SavedTrack {
	return &SavedTrack{
		ID:     track.ID,
		Name:   track.Name,
		Artist: track.Artist,
	}
}
