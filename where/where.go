// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "GTPLAYER_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
// Direct override: The path resolution can be explicitly specified via the GTPLAYER_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.GTPlayer))
}

// Cache resolves the absolute path to the application's persistent cache directory.
// Compliance: Adheres to the XDG_CACHE_HOME specification or platform-specific equivalent.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		// Fallback: Revert to a localized cache directory if the system-provided path is inaccessible.
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.GTPlayer))
}

// Logs resolves the absolute path to the directory used for application diagnostic and audit logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Songs resolves the absolute path to the directory holding downloaded track audio.
func Songs() string {
	if custom := viper.GetString(key.DownloadsDir); custom != "" {
		return ensureDir(custom)
	}
	return ensureDir(filepath.Join(Cache(), "songs"))
}

// Covers resolves the absolute path to the cover-art cache directory swept by eviction.
func Covers() string {
	return ensureDir(filepath.Join(Cache(), "covers"))
}

// User resolves the absolute path to the durable user preference record.
func User() string {
	return filepath.Join(Config(), "user.json")
}

// Playlist resolves the absolute path to the persisted playlist snapshot.
func Playlist() string {
	return filepath.Join(Config(), "playlist.json")
}

// Favorites resolves the absolute path to the persisted favorites registry.
func Favorites() string {
	return filepath.Join(Config(), "favorites.json")
}

// History resolves the absolute path to the persisted play-history registry.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Genres resolves the absolute path to the cached genre catalog.
func Genres() string {
	return filepath.Join(Cache(), "genres.json")
}

// Temp resolves a unique, volatile filesystem path for transient application artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.GTPlayer))
}
