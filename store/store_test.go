package store

import (
	"testing"

	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/song"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func track(id int64, name, artist string) song.Song {
	return song.Song{ID: id, Name: name, Artist: artist}
}

func TestUser(t *testing.T) {
	Convey("User record", t, func() {
		So(SaveUser(User{
			Genres:   []string{"pop"},
			Artists:  []string{"Blur"},
			PlayMode: PlayModePreview,
			Volume:   0.5,
		}), ShouldBeNil)

		Convey("Round-trips through the store", func() {
			user, ok := GetUser().Get()
			So(ok, ShouldBeTrue)
			So(user.Genres, ShouldResemble, []string{"pop"})
			So(user.PlayMode, ShouldEqual, PlayModePreview)
		})

		Convey("UpdateVolume touches only the volume", func() {
			So(UpdateVolume(0.9), ShouldBeNil)
			user := GetUser().MustGet()
			So(user.Volume, ShouldEqual, 0.9)
			So(user.Artists, ShouldResemble, []string{"Blur"})
		})

		Convey("UpdateLastPos persists the resume position", func() {
			So(UpdateLastPos(42.5), ShouldBeNil)
			So(GetUser().MustGet().LastPos, ShouldEqual, 42.5)
		})
	})
}

func TestPlaylist(t *testing.T) {
	Convey("Playlist snapshot", t, func() {
		snapshot := playlist.Snapshot{
			Tracks:  []song.Song{track(1, "One", "A"), track(2, "Two", "B")},
			Current: 1,
		}
		So(UpdatePlaylist(snapshot), ShouldBeNil)

		Convey("Round-trips through the store", func() {
			got, err := GetPlaylist()
			So(err, ShouldBeNil)
			So(got.Current, ShouldEqual, 1)
			So(got.Tracks, ShouldHaveLength, 2)
			So(got.Tracks[0].Name, ShouldEqual, "One")
		})

		Convey("GetTrack finds playlist tracks by id", func() {
			found, ok := GetTrack(2).Get()
			So(ok, ShouldBeTrue)
			So(found.Artist, ShouldEqual, "B")

			So(GetTrack(99).IsAbsent(), ShouldBeTrue)
		})

		Convey("UpdateTrack rewrites the stored copy", func() {
			So(UpdateTrack(1, func(s *song.Song) {
				s.PreviewFile = "one.mp3"
			}), ShouldBeNil)

			got, err := GetPlaylist()
			So(err, ShouldBeNil)
			So(got.Tracks[0].PreviewFile, ShouldEqual, song.CachePath("one.mp3"))
		})
	})
}

func TestFavorites(t *testing.T) {
	Convey("Favorites", t, func() {
		for _, s := range []song.Song{
			track(10, "Zebra", "Beach House"),
			track(11, "Agoraphobia", "Deerhunter"),
		} {
			So(AddFavorite(s), ShouldBeNil)
		}

		Convey("Stamps the favorited time", func() {
			tracks, err := Favorites()
			So(err, ShouldBeNil)
			So(len(tracks), ShouldBeGreaterThanOrEqualTo, 2)
			for _, s := range tracks {
				So(s.DateFavorited, ShouldNotBeNil)
			}
		})

		Convey("Adding twice keeps one copy", func() {
			before, _ := Favorites()
			So(AddFavorite(track(10, "Zebra", "Beach House")), ShouldBeNil)
			after, _ := Favorites()
			So(after, ShouldHaveLength, len(before))
		})

		Convey("IsFavorite reflects membership", func() {
			So(IsFavorite(10), ShouldBeTrue)
			So(IsFavorite(12345), ShouldBeFalse)
		})

		Convey("RemoveFavorite drops the track", func() {
			So(RemoveFavorite(11), ShouldBeNil)
			So(IsFavorite(11), ShouldBeFalse)
		})

		Convey("Sorted views order without mutating the set", func() {
			So(AddFavorite(track(12, "Ashes", "Cocteau Twins")), ShouldBeNil)

			byTitle, err := FavoritesSorted(SortByTitle)
			So(err, ShouldBeNil)
			for i := 1; i < len(byTitle); i++ {
				So(byTitle[i-1].Name, ShouldBeLessThanOrEqualTo, byTitle[i].Name)
			}

			byArtist, err := FavoritesSorted(SortByArtist)
			So(err, ShouldBeNil)
			for i := 1; i < len(byArtist); i++ {
				So(byArtist[i-1].Artist, ShouldBeLessThanOrEqualTo, byArtist[i].Artist)
			}

			byDate, err := FavoritesSorted(SortByDate)
			So(err, ShouldBeNil)
			for i := 1; i < len(byDate); i++ {
				So(byDate[i-1].DateFavorited.Before(*byDate[i].DateFavorited), ShouldBeFalse)
			}
		})

		Convey("UpdateTrack also rewrites favorite copies", func() {
			So(UpdateTrack(10, func(s *song.Song) {
				s.DownloadFile = "zebra.mp3"
			}), ShouldBeNil)

			found := GetTrack(10).MustGet()
			So(found.DownloadFile, ShouldEqual, song.CachePath("zebra.mp3"))
		})
	})
}
