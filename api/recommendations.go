package api

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/song"
)

// recommendationsResponse defines the anticipated JSON payload for
// recommendation requests.
type recommendationsResponse struct {
	Tracks []*song.Song `json:"tracks"`
}

// GetRecommendations returns a fresh batch of tracks matched to the given
// genre and artist preferences. songType selects which audio variants the
// tracks must carry ("preview", "full" or "any_file").
func GetRecommendations(genres, artists []string, songType string) ([]*song.Song, error) {
	params := url.Values{}
	params.Set("genres", strings.Join(genres, ","))
	if len(artists) > 0 {
		params.Set("artists", strings.Join(artists, ","))
	}
	params.Set("song_type", songType)

	log.Infof("Requesting recommendations for genres %v", genres)
	raw, err := request("recommendations", params)
	if err != nil {
		return nil, err
	}

	var response recommendationsResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		log.Error(err)
		return nil, err
	}

	log.Infof("Got %d recommended tracks", len(response.Tracks))
	return response.Tracks, nil
}
