package playlist

import (
	"errors"
	"testing"

	"github.com/gtplayer-cli/gtplayer/song"
	. "github.com/smartystreets/goconvey/convey"
)

func threeTracks() []song.Song {
	return []song.Song{
		{ID: 1, Name: "Lane Boy", Artist: "Twenty One Pilots"},
		{ID: 2, Name: "Ride", Artist: "Twenty One Pilots"},
		{ID: 3, Name: "Stressed Out", Artist: "Twenty One Pilots"},
	}
}

func TestCursorBounds(t *testing.T) {
	Convey("Given a cursor with three tracks", t, func() {
		c := NewCursor(threeTracks())

		Convey("The index starts unselected", func() {
			So(c.Index(), ShouldEqual, -1)
			So(c.Current().IsAbsent(), ShouldBeTrue)
		})

		Convey("Next advances and saturates at the tail", func() {
			first, err := c.Next()
			So(err, ShouldBeNil)
			So(first.ID, ShouldEqual, 1)
			So(c.IsFirst(), ShouldBeTrue)

			second, _ := c.Next()
			So(second.ID, ShouldEqual, 2)

			third, _ := c.Next()
			So(third.ID, ShouldEqual, 3)
			So(c.IsLast(), ShouldBeTrue)

			again, _ := c.Next()
			So(again.ID, ShouldEqual, 3)
			So(c.Index(), ShouldEqual, 2)
		})

		Convey("Previous saturates at the head", func() {
			_, _ = c.Next()
			_, _ = c.Next()

			prev, err := c.Previous()
			So(err, ShouldBeNil)
			So(prev.ID, ShouldEqual, 1)
			So(c.IsFirst(), ShouldBeTrue)

			again, _ := c.Previous()
			So(again.ID, ShouldEqual, 1)
			So(c.Index(), ShouldEqual, 0)
		})

		Convey("The first Previous from -1 moves to the head, not out of range", func() {
			first, err := c.Previous()
			So(err, ShouldBeNil)
			So(first.ID, ShouldEqual, 1)
			So(c.Index(), ShouldEqual, 0)
		})

		Convey("Any walk keeps the index inside [-1, len-1]", func() {
			for i := 0; i < 10; i++ {
				_, _ = c.Next()
				So(c.Index(), ShouldBeBetweenOrEqual, -1, c.Len()-1)
			}
			for i := 0; i < 10; i++ {
				_, _ = c.Previous()
				So(c.Index(), ShouldBeBetweenOrEqual, -1, c.Len()-1)
			}
		})
	})

	Convey("Given an empty cursor", t, func() {
		c := NewCursor(nil)

		Convey("Next and Previous fail instead of selecting", func() {
			_, err := c.Next()
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			_, err = c.Previous()
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("IsLast holds so exhaustion handling kicks in", func() {
			So(c.IsLast(), ShouldBeTrue)
		})
	})
}

func TestPreviewNext(t *testing.T) {
	Convey("Given a cursor with three tracks", t, func() {
		c := NewCursor(threeTracks())
		_, _ = c.Next()

		Convey("PreviewNext peeks without mutating the index", func() {
			peeked, err := c.PreviewNext()
			So(err, ShouldBeNil)
			So(peeked.ID, ShouldEqual, 2)
			So(c.Index(), ShouldEqual, 0)

			// Repeated peeks stay pure.
			peeked, _ = c.PreviewNext()
			So(peeked.ID, ShouldEqual, 2)
			So(c.Index(), ShouldEqual, 0)
		})

		Convey("At the tail it degrades to the current track", func() {
			_, _ = c.Next()
			_, _ = c.Next()
			So(c.IsLast(), ShouldBeTrue)

			peeked, err := c.PreviewNext()
			So(err, ShouldBeNil)
			So(peeked.ID, ShouldEqual, 3)
			So(c.Index(), ShouldEqual, 2)
		})
	})
}

func TestSetCurrentAndRemove(t *testing.T) {
	Convey("Given a cursor with three tracks", t, func() {
		c := NewCursor(threeTracks())

		Convey("SetCurrent locates the track by id", func() {
			So(c.SetCurrent(2), ShouldBeNil)
			So(c.Index(), ShouldEqual, 1)
		})

		Convey("SetCurrent on an absent track fails loudly", func() {
			err := c.SetCurrent(99)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Removing the selected track is rejected", func() {
			So(c.SetCurrent(2), ShouldBeNil)
			So(errors.Is(c.Remove(2), ErrTrackActive), ShouldBeTrue)
			So(c.Len(), ShouldEqual, 3)
		})

		Convey("Removing a track before the selection re-anchors the index", func() {
			So(c.SetCurrent(3), ShouldBeNil)
			So(c.Remove(1), ShouldBeNil)
			So(c.Len(), ShouldEqual, 2)
			So(c.Current().MustGet().ID, ShouldEqual, 3)
		})

		Convey("Removing an absent track fails loudly", func() {
			So(errors.Is(c.Remove(42), ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	Convey("Given a cursor mid-walk", t, func() {
		c := NewCursor(threeTracks())
		_, _ = c.Next()
		_, _ = c.Next()

		Convey("Snapshot and FromSnapshot yield an equal cursor", func() {
			restored := FromSnapshot(c.Snapshot())
			So(restored.Index(), ShouldEqual, c.Index())
			So(restored.Len(), ShouldEqual, c.Len())
			for i, track := range restored.Tracks() {
				So(track.ID, ShouldEqual, c.Tracks()[i].ID)
			}
		})

		Convey("A corrupt index is re-anchored to unselected", func() {
			snap := c.Snapshot()
			snap.Current = 17
			So(FromSnapshot(snap).Index(), ShouldEqual, -1)
		})
	})
}

func TestView(t *testing.T) {
	Convey("Given a view backed by a loader", t, func() {
		stored := Snapshot{Tracks: threeTracks(), Current: 0}
		v, err := NewView(func() (Snapshot, error) { return stored, nil })
		So(err, ShouldBeNil)

		Convey("It mirrors the stored snapshot", func() {
			So(v.Index(), ShouldEqual, 0)
			So(v.Current().MustGet().ID, ShouldEqual, 1)
		})

		Convey("Optimistic moves mutate only the mirror", func() {
			next, err := v.Next()
			So(err, ShouldBeNil)
			So(next.ID, ShouldEqual, 2)
			So(stored.Current, ShouldEqual, 0)
		})

		Convey("Reload discards optimistic state", func() {
			_, _ = v.Next()
			stored = Snapshot{Tracks: threeTracks()[:2], Current: 1}
			So(v.Reload(), ShouldBeNil)
			So(v.Len(), ShouldEqual, 2)
			So(v.Index(), ShouldEqual, 1)
		})
	})
}
