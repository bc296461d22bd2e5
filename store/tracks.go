package store

import (
	"time"

	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// AddFavorite inserts the track into the favorites set, stamping the
// favorited time. Adding an already-favorited track is a no-op.
func AddFavorite(track song.Song) error {
	mu.Lock()
	defer mu.Unlock()

	tracks, err := favorites()
	if err != nil {
		return err
	}

	if lo.ContainsBy(tracks, track.Equal) {
		return nil
	}

	now := time.Now()
	track.DateFavorited = &now
	return favoritesCache.Set(append(tracks, track))
}

// RemoveFavorite drops the track with the given id from the favorites set.
func RemoveFavorite(id int64) error {
	mu.Lock()
	defer mu.Unlock()

	tracks, err := favorites()
	if err != nil {
		return err
	}

	kept := lo.Reject(tracks, func(t song.Song, _ int) bool {
		return t.ID == id
	})
	if len(kept) == len(tracks) {
		return nil
	}
	return favoritesCache.Set(kept)
}

// IsFavorite reports whether the track with the given id is favorited.
func IsFavorite(id int64) bool {
	mu.RLock()
	defer mu.RUnlock()

	tracks, err := favorites()
	if err != nil {
		return false
	}
	return lo.ContainsBy(tracks, func(t song.Song) bool {
		return t.ID == id
	})
}

// GetTrack looks a track up by id, preferring the playlist copy and falling
// back to favorites.
func GetTrack(id int64) mo.Option[song.Song] {
	mu.RLock()
	defer mu.RUnlock()

	if snapshot, _, err := playlistCache.Get(); err == nil && snapshot != nil {
		if track, ok := lo.Find(snapshot.Tracks, func(t song.Song) bool {
			return t.ID == id
		}); ok {
			return mo.Some(track)
		}
	}

	tracks, err := favorites()
	if err != nil {
		return mo.None[song.Song]()
	}
	if track, ok := lo.Find(tracks, func(t song.Song) bool {
		return t.ID == id
	}); ok {
		return mo.Some(track)
	}
	return mo.None[song.Song]()
}

// UpdateTrack applies the mutation to every stored copy of the track, in the
// playlist snapshot and the favorites set alike, so cache-path and metadata
// changes never desync between the two.
func UpdateTrack(id int64, mutate func(*song.Song)) error {
	mu.Lock()
	defer mu.Unlock()

	if snapshot, _, err := playlistCache.Get(); err == nil && snapshot != nil {
		touched := false
		for i := range snapshot.Tracks {
			if snapshot.Tracks[i].ID == id {
				mutate(&snapshot.Tracks[i])
				touched = true
			}
		}
		if touched {
			if err := playlistCache.Set(snapshot); err != nil {
				return err
			}
		}
	}

	tracks, err := favorites()
	if err != nil {
		return err
	}
	touched := false
	for i := range tracks {
		if tracks[i].ID == id {
			mutate(&tracks[i])
			touched = true
		}
	}
	if touched {
		return favoritesCache.Set(tracks)
	}
	return nil
}
