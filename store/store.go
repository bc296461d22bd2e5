// Package store is the durable local store for the user record, the playlist
// snapshot and the favorites set.
//
// Everything lives in small file-backed caches with no lifetime, so the store
// doubles as the app's restart state: both processes read the same files and
// the service signals the proxy over the control channel whenever a write
// invalidates what the proxy mirrors.
package store

import (
	"sync"

	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

// PlayMode selects which audio variant the download manager fetches.
const (
	PlayModeAny     = "any_file"
	PlayModePreview = "preview"
	PlayModeFull    = "full"
)

// User is the persisted user record: taste preferences captured during setup
// plus playback settings that survive restarts.
type User struct {
	Genres    []string `json:"genres"`
	Artists   []string `json:"artists"`
	PlayMode  string   `json:"play_mode"`
	SongsPath string   `json:"songs_path"`
	Volume    float64  `json:"volume"`
	LastPos   float64  `json:"last_pos"`
	DarkMode  bool     `json:"dark_mode"`
}

var (
	mu sync.RWMutex

	userCache = gache.New[*User](&gache.Options{
		Path:       where.User(),
		FileSystem: &filesystem.GacheFs{},
	})

	playlistCache = gache.New[*playlist.Snapshot](&gache.Options{
		Path:       where.Playlist(),
		FileSystem: &filesystem.GacheFs{},
	})

	favoritesCache = gache.New[[]song.Song](&gache.Options{
		Path:       where.Favorites(),
		FileSystem: &filesystem.GacheFs{},
	})
)

// GetUser returns the persisted user record, if setup has run.
func GetUser() mo.Option[User] {
	mu.RLock()
	defer mu.RUnlock()

	user, _, err := userCache.Get()
	if err != nil || user == nil {
		return mo.None[User]()
	}
	return mo.Some(*user)
}

// SaveUser persists the full user record.
func SaveUser(user User) error {
	mu.Lock()
	defer mu.Unlock()
	return userCache.Set(&user)
}

// UpdateVolume persists the volume preference, leaving the rest of the user
// record untouched.
func UpdateVolume(volume float64) error {
	return updateUser(func(user *User) {
		user.Volume = volume
	})
}

// UpdateLastPos persists the playback position for restart resume.
func UpdateLastPos(pos float64) error {
	return updateUser(func(user *User) {
		user.LastPos = pos
	})
}

func updateUser(mutate func(*User)) error {
	mu.Lock()
	defer mu.Unlock()

	user, _, err := userCache.Get()
	if err != nil {
		return err
	}
	if user == nil {
		user = &User{}
	}
	mutate(user)
	return userCache.Set(user)
}

// GetPlaylist returns the persisted playlist snapshot. A missing file yields
// an empty snapshot with nothing selected, not an error.
func GetPlaylist() (playlist.Snapshot, error) {
	mu.RLock()
	defer mu.RUnlock()

	snapshot, _, err := playlistCache.Get()
	if err != nil {
		return playlist.Snapshot{}, err
	}
	if snapshot == nil {
		return playlist.Snapshot{Current: -1}, nil
	}
	return *snapshot, nil
}

// UpdatePlaylist persists the playlist snapshot.
func UpdatePlaylist(snapshot playlist.Snapshot) error {
	mu.Lock()
	defer mu.Unlock()
	return playlistCache.Set(&snapshot)
}

// Favorites returns the favorites set in insertion order.
func Favorites() ([]song.Song, error) {
	mu.RLock()
	defer mu.RUnlock()
	return favorites()
}

func favorites() ([]song.Song, error) {
	tracks, _, err := favoritesCache.Get()
	if err != nil {
		return nil, err
	}
	return tracks, nil
}
