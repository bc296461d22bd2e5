package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/song"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Saving a track records it", t, func() {
		track := song.Song{ID: 42069, Name: "adwad", Artist: "dwaofa"}

		So(Save(track), ShouldBeNil)

		tracks, err := Get()
		So(err, ShouldBeNil)
		So(len(tracks), ShouldBeGreaterThan, 0)
		So(tracks["42069"].Name, ShouldEqual, track.Name)
	})

	Convey("Saving the same track again bumps the play count", t, func() {
		track := song.Song{ID: 777, Name: "replay", Artist: "looper"}

		So(Save(track), ShouldBeNil)
		So(Save(track), ShouldBeNil)

		tracks, err := Get()
		So(err, ShouldBeNil)
		So(tracks["777"].PlayCount, ShouldEqual, 2)
	})

	Convey("Recent returns the latest play first", t, func() {
		So(Save(song.Song{ID: 1, Name: "older"}), ShouldBeNil)
		So(Save(song.Song{ID: 2, Name: "newer"}), ShouldBeNil)

		recent, err := Recent(1)
		So(err, ShouldBeNil)
		So(recent, ShouldHaveLength, 1)
		So(recent[0].ID, ShouldEqual, 2)
	})

	Convey("Remove drops the record", t, func() {
		track := song.Song{ID: 9000, Name: "gone", Artist: "bye"}
		So(Save(track), ShouldBeNil)

		tracks, err := Get()
		So(err, ShouldBeNil)
		So(Remove(tracks["9000"]), ShouldBeNil)

		tracks, err = Get()
		So(err, ShouldBeNil)
		So(tracks["9000"], ShouldBeNil)
	})
}
