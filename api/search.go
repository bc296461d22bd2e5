package api

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gtplayer-cli/gtplayer/log"
)

// searchResponse defines the anticipated JSON payload for artist searches.
type searchResponse struct {
	Artists []string `json:"artists"`
}

// SearchArtists returns artist names matching the given query. Queries that
// recently failed are rejected immediately to avoid hammering the API from
// the interactive setup flow.
func SearchArtists(artist string) ([]string, error) {
	name := normalizedName(artist)

	if _, failed := failCacher.Get(name).Get(); failed {
		return nil, fmt.Errorf("failed to search for %s", artist)
	}

	params := url.Values{}
	params.Set("artist", artist)

	log.Infof("Searching the API for artist %s", artist)
	raw, err := request("search", params)
	if err != nil {
		_ = failCacher.Set(name, true)
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		log.Error(err)
		return nil, err
	}

	log.Infof("Got %d artist results", len(response.Artists))
	return response.Artists, nil
}
