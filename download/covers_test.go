package download

import (
	"os"
	"testing"

	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/where"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvictCovers(t *testing.T) {
	Convey("EvictCovers", t, func() {
		fs := filesystem.API()
		So(fs.RemoveAll(where.Covers()), ShouldBeNil)

		write := func(id int64) {
			So(fs.WriteFile(coverPath(id), []byte("jpg"), os.ModePerm), ShouldBeNil)
		}
		write(1)
		write(2)
		write(3)

		So(store.UpdatePlaylist(playlist.Snapshot{
			Tracks:  []song.Song{{ID: 1, Name: "A", Artist: "X"}},
			Current: -1,
		}), ShouldBeNil)
		So(store.AddFavorite(song.Song{ID: 2, Name: "B", Artist: "Y"}), ShouldBeNil)

		So(EvictCovers(), ShouldBeNil)

		Convey("Keeps covers reachable from playlist or favorites", func() {
			for _, id := range []int64{1, 2} {
				exists, err := fs.Exists(coverPath(id))
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			}
		})

		Convey("Deletes unreachable covers", func() {
			exists, err := fs.Exists(coverPath(3))
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})
	})
}
