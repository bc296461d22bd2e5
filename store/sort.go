package store

import (
	"strings"

	"github.com/gtplayer-cli/gtplayer/song"
	"golang.org/x/exp/slices"
)

// SortOrder names a favorites ordering.
type SortOrder string

const (
	SortByDate   SortOrder = "date"
	SortByTitle  SortOrder = "title"
	SortByArtist SortOrder = "artist"
)

// FavoritesSorted returns the favorites set in the given order. Date order is
// newest first; unknown orders fall back to date.
func FavoritesSorted(order SortOrder) ([]song.Song, error) {
	tracks, err := Favorites()
	if err != nil {
		return nil, err
	}

	switch order {
	case SortByTitle:
		slices.SortStableFunc(tracks, func(a, b song.Song) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case SortByArtist:
		slices.SortStableFunc(tracks, func(a, b song.Song) int {
			return strings.Compare(strings.ToLower(a.Artist), strings.ToLower(b.Artist))
		})
	default:
		slices.SortStableFunc(tracks, func(a, b song.Song) int {
			switch {
			case a.DateFavorited == nil && b.DateFavorited == nil:
				return 0
			case a.DateFavorited == nil:
				return 1
			case b.DateFavorited == nil:
				return -1
			}
			return b.DateFavorited.Compare(*a.DateFavorited)
		})
	}
	return tracks, nil
}
