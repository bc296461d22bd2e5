package download

import (
	"github.com/dhowden/tag"
	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
)

// probeTags reads the downloaded file's embedded metadata and backfills any
// track fields the API left empty. Best effort; a tagless file is fine.
func probeTags(id int64, path string) {
	file, err := filesystem.API().Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		log.Debugf("no tags in %s: %v", path, err)
		return
	}

	title, artist, genre := meta.Title(), meta.Artist(), meta.Genre()
	if title == "" && artist == "" && genre == "" {
		return
	}

	_ = store.UpdateTrack(id, func(s *song.Song) {
		if s.Name == "" {
			s.Name = title
		}
		if s.Artist == "" {
			s.Artist = artist
		}
		if genre != "" && len(s.Genres) == 0 {
			s.Genres = []string{genre}
		}
	})
}
