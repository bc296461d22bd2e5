package api

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/samber/mo"
)

// GenresPage is the genres endpoint payload: the selectable genre names plus
// the artists suggested for them.
type GenresPage struct {
	Genres  []string `json:"genres"`
	Artists []string `json:"artists"`
}

// GetGenres returns the selectable genres, optionally narrowed to an age
// bracket. Results are cached per bracket; the full catalog is cached under
// a sentinel key.
func GetGenres(age mo.Option[int]) (GenresPage, error) {
	cacheKey := -1
	params := url.Values{}
	if a, ok := age.Get(); ok {
		cacheKey = a
		params.Set("age", strconv.Itoa(a))
	}

	if page, ok := genresCacher.Get(cacheKey).Get(); ok {
		return page, nil
	}

	log.Info("Fetching genres from the API")
	raw, err := request("genres", params)
	if err != nil {
		return GenresPage{}, err
	}

	var page GenresPage
	if err := json.Unmarshal(raw, &page); err != nil {
		log.Error(err)
		return GenresPage{}, err
	}

	log.Infof("Got %d genres", len(page.Genres))
	_ = genresCacher.Set(cacheKey, page)
	return page, nil
}
