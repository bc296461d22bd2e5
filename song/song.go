// Package song defines the track data model shared by the playback proxy, the player service, and the stores.
package song

import (
	"fmt"
	"time"
)

// CachePath is the three-state location of a track's downloaded audio:
// absent, download in flight, or a local filesystem path.
type CachePath string

const (
	// CacheAbsent means no local copy exists; a load must download first.
	CacheAbsent CachePath = ""

	// CacheDownloading marks an in-flight download. A second download request
	// for the same track observes this marker and backs off.
	CacheDownloading CachePath = "downloading"
)

// IsAbsent reports whether no local copy exists and no download is running.
func (p CachePath) IsAbsent() bool { return p == CacheAbsent }

// IsDownloading reports whether a download for this slot is in flight.
func (p CachePath) IsDownloading() bool { return p == CacheDownloading }

// IsFile reports whether the path points at completed local audio.
func (p CachePath) IsFile() bool { return p != CacheAbsent && p != CacheDownloading }

// Song represents one track. Identity and equality are defined by ID alone;
// every other field is display or retrieval metadata. A Song may be referenced
// by the playlist and the favorites set at the same time.
type Song struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`

	Genres    []string `json:"genres,omitempty"`
	SpotifyID string   `json:"id_spotify,omitempty"`
	ISRC      string   `json:"isrc,omitempty"`
	CoverArt  string   `json:"cover_art,omitempty"`

	PreviewURL  string `json:"preview_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`

	PreviewFile  CachePath `json:"preview_file,omitempty"`
	DownloadFile CachePath `json:"download_file,omitempty"`

	DateFavorited *time.Time `json:"date_favorited,omitempty"`
}

// Equal reports identity equality, which is by ID only.
func (s Song) Equal(other Song) bool {
	return s.ID == other.ID
}

// IsFavorite reports whether the track carries a favorited timestamp.
func (s Song) IsFavorite() bool {
	return s.DateFavorited != nil
}

// File returns the cached audio path matching the requested play mode,
// preferring the full download when mode is "any_file".
func (s Song) File(mode string) CachePath {
	switch mode {
	case "full":
		return s.DownloadFile
	case "preview":
		return s.PreviewFile
	default:
		if s.DownloadFile.IsFile() {
			return s.DownloadFile
		}
		return s.PreviewFile
	}
}

func (s Song) String() string {
	return fmt.Sprintf("%s - %s", s.Artist, s.Name)
}
