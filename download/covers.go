package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gtplayer-cli/gtplayer/api"
	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/where"
)

// coverPath names a track's cover-art cache file. The id-based name is what
// the eviction sweep keys on.
func coverPath(id int64) string {
	return filepath.Join(where.Covers(), fmt.Sprintf("%d.jpg", id))
}

// EnsureCover fetches the track's cover art into the cache if it is not
// already there and returns its path. Tracks without art yield an empty path.
func (m *Manager) EnsureCover(track song.Song) (string, error) {
	if track.CoverArt == "" {
		return "", nil
	}

	path := coverPath(track.ID)
	if exists, _ := filesystem.API().Exists(path); exists {
		return path, nil
	}

	payload, err := api.Fetch(track.CoverArt)
	if err != nil {
		return "", err
	}

	if err := filesystem.API().WriteFile(path, payload, os.ModePerm); err != nil {
		return "", err
	}
	return path, nil
}

// EvictCovers scans the cover-art cache and deletes every file whose track
// id is not referenced by the current playlist or favorites set. A plain
// reachability sweep run on shutdown, not a generational collector.
func EvictCovers() error {
	reachable := make(map[int64]struct{})

	if snapshot, err := store.GetPlaylist(); err == nil {
		for _, track := range snapshot.Tracks {
			reachable[track.ID] = struct{}{}
		}
	}
	if favorites, err := store.Favorites(); err == nil {
		for _, track := range favorites {
			reachable[track.ID] = struct{}{}
		}
	}

	entries, err := filesystem.API().ReadDir(where.Covers())
	if err != nil {
		return err
	}

	evicted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		id, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			continue
		}

		if _, ok := reachable[id]; ok {
			continue
		}

		if err := filesystem.API().Remove(filepath.Join(where.Covers(), entry.Name())); err != nil {
			log.Warnf("evict cover %s: %v", entry.Name(), err)
			continue
		}
		evicted++
	}

	if evicted > 0 {
		log.Infof("Evicted %d unreachable covers", evicted)
	}
	return nil
}
