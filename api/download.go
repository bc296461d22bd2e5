package api

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/song"
)

// FullTrack is the licensing endpoint payload: where the encrypted full
// track lives and the license needed to decrypt it.
type FullTrack struct {
	URL     string `json:"url"`
	License string `json:"license"`
}

// DownloadPreview fetches the preview audio for a track. Preview URLs point
// outside the API root and the payload is raw audio, not JSON.
func DownloadPreview(s song.Song) ([]byte, error) {
	if s.PreviewURL == "" {
		return nil, fmt.Errorf("%s has no preview", s)
	}

	log.Infof("Downloading preview for %s", s)
	return fetch(s.PreviewURL)
}

// DownloadFull resolves the encrypted full-track location and license for
// the given recording code. The caller fetches and decrypts the payload.
func DownloadFull(isrc string) (FullTrack, error) {
	if isrc == "" {
		return FullTrack{}, fmt.Errorf("empty isrc")
	}

	params := url.Values{}
	params.Set("isrc", isrc)

	log.Infof("Resolving full track for isrc %s", isrc)
	raw, err := request("download", params)
	if err != nil {
		return FullTrack{}, err
	}

	var full FullTrack
	if err := json.Unmarshal(raw, &full); err != nil {
		log.Error(err)
		return FullTrack{}, err
	}

	if full.URL == "" {
		return FullTrack{}, fmt.Errorf("no full track available for isrc %s", isrc)
	}

	return full, nil
}

// Fetch downloads raw bytes from an arbitrary URL, such as cover art or the
// encrypted full-track payload resolved by DownloadFull.
func Fetch(rawURL string) ([]byte, error) {
	return fetch(rawURL)
}
