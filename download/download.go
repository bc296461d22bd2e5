// Package download fetches track audio and cover art, persists them to the
// local cache and keeps the store's cache-path fields truthful.
//
// The manager owns the only download path in the app: direct playback calls
// Ensure and blocks; the prefetch timer calls Prefetch and never blocks.
// Concurrent requests for the same track collapse into one network fetch.
package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gtplayer-cli/gtplayer/api"
	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/util"
	"github.com/gtplayer-cli/gtplayer/where"
	"golang.org/x/sync/singleflight"
)

// Manager deduplicates and tracks in-flight downloads.
type Manager struct {
	group    singleflight.Group
	inflight *util.Set[int64]
}

// NewManager creates a download manager.
func NewManager() *Manager {
	return &Manager{inflight: util.NewSet[int64]()}
}

// InFlight reports whether a download for the given track is running.
func (m *Manager) InFlight(id int64) bool {
	return m.inflight.Has(id)
}

// Ensure guarantees that after return the track's cache path for the given
// play mode is either a valid local file or explicitly absent. Concurrent
// calls for the same track share one fetch. On success the new path is
// persisted to the store immediately; on failure the path is reset to absent
// so a later attempt retries instead of wedging on a stale marker.
func (m *Manager) Ensure(track song.Song, mode string) (song.CachePath, error) {
	// The caller's copy may predate a finished download; trust the store.
	if fresh, ok := store.GetTrack(track.ID).Get(); ok {
		track = fresh
	}

	if path := track.File(mode); path.IsFile() {
		if exists, _ := filesystem.API().Exists(string(path)); exists {
			return path, nil
		}
		// The store points at a file that is gone. Refetch.
		log.Warnf("cached file %s missing for %s, refetching", path, track)
	}

	result, err, _ := m.group.Do(strconv.FormatInt(track.ID, 10)+":"+mode, func() (any, error) {
		m.inflight.Add(track.ID)
		defer m.inflight.Remove(track.ID)

		return m.fetch(track, mode)
	})
	if err != nil {
		return song.CacheAbsent, err
	}
	return result.(song.CachePath), nil
}

// Prefetch starts a background download for the track unless one is already
// running. It never blocks the caller; failures are logged and left for the
// next direct Ensure to retry.
func (m *Manager) Prefetch(track song.Song, mode string) {
	if m.inflight.Has(track.ID) {
		return
	}

	if fresh, ok := store.GetTrack(track.ID).Get(); ok {
		track = fresh
	}
	if path := track.File(mode); path.IsFile() {
		if exists, _ := filesystem.API().Exists(string(path)); exists {
			return
		}
	}

	log.Infof("Prefetching %s", track)
	go func() {
		if _, err := m.Ensure(track, mode); err != nil {
			log.Warnf("prefetch %s: %v", track, err)
		}
	}()
}

// fetch performs the actual download for the variant the mode selects,
// persisting the outcome either way.
func (m *Manager) fetch(track song.Song, mode string) (song.CachePath, error) {
	full := mode == store.PlayModeFull || (mode == store.PlayModeAny && track.ISRC != "")

	markDownloading(track.ID, full)

	var (
		path song.CachePath
		err  error
	)
	if full {
		path, err = m.fetchFull(track)
	} else {
		path, err = m.fetchPreview(track)
	}

	if err != nil {
		resetPath(track.ID, full)
		return song.CacheAbsent, err
	}

	persistPath(track.ID, full, path)
	return path, nil
}

// fetchPreview downloads the preview audio straight from its URL.
func (m *Manager) fetchPreview(track song.Song) (song.CachePath, error) {
	payload, err := api.DownloadPreview(track)
	if err != nil {
		return song.CacheAbsent, err
	}
	return writeAudio(track, "preview", payload)
}

// fetchFull resolves the licensed full track, downloads the encrypted
// payload and decrypts it before writing.
func (m *Manager) fetchFull(track song.Song) (song.CachePath, error) {
	resolved, err := api.DownloadFull(track.ISRC)
	if err != nil {
		return song.CacheAbsent, err
	}

	encrypted, err := api.Fetch(resolved.URL)
	if err != nil {
		return song.CacheAbsent, err
	}

	plaintext, err := Decrypt(encrypted, resolved.License)
	if err != nil {
		return song.CacheAbsent, err
	}

	path, err := writeAudio(track, "full", plaintext)
	if err != nil {
		return song.CacheAbsent, err
	}

	probeTags(track.ID, string(path))
	return path, nil
}

// writeAudio persists an audio payload under the songs directory.
func writeAudio(track song.Song, variant string, payload []byte) (song.CachePath, error) {
	name := fmt.Sprintf("%s_%s.mp3", util.SanitizeFilename(track.String()), variant)
	path := filepath.Join(where.Songs(), name)

	if err := filesystem.API().WriteFile(path, payload, os.ModePerm); err != nil {
		return song.CacheAbsent, err
	}

	log.Infof("Wrote %s (%s)", path, util.Quantify(len(payload), "byte", "bytes"))
	return song.CachePath(path), nil
}

// markDownloading publishes the in-flight marker so a concurrent reader can
// tell "absent" from "being fetched right now".
func markDownloading(id int64, full bool) {
	_ = store.UpdateTrack(id, func(s *song.Song) {
		if full {
			s.DownloadFile = song.CacheDownloading
		} else {
			s.PreviewFile = song.CacheDownloading
		}
	})
}

// resetPath clears the cache path after a failed download.
func resetPath(id int64, full bool) {
	_ = store.UpdateTrack(id, func(s *song.Song) {
		if full {
			s.DownloadFile = song.CacheAbsent
		} else {
			s.PreviewFile = song.CacheAbsent
		}
	})
}

// persistPath records a completed download.
func persistPath(id int64, full bool, path song.CachePath) {
	_ = store.UpdateTrack(id, func(s *song.Song) {
		if full {
			s.DownloadFile = path
		} else {
			s.PreviewFile = path
		}
	})
}
