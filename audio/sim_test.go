package audio

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSim(t *testing.T) {
	Convey("Sim backend", t, func() {
		sim := NewSim(100 * time.Millisecond)

		Convey("Rejects playback with nothing loaded", func() {
			So(sim.Play(0, 0.5), ShouldNotBeNil)
			_, err := sim.Position()
			So(err, ShouldNotBeNil)
		})

		Convey("Plays a loaded track to completion", func() {
			done := make(chan struct{})
			sim.OnComplete(func() { close(done) })

			So(sim.Load("/tmp/a.mp3"), ShouldBeNil)
			So(sim.Play(0, 0.5), ShouldBeNil)
			So(sim.Playing(), ShouldBeTrue)

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				So("track never completed", ShouldBeEmpty)
			}

			So(sim.Playing(), ShouldBeFalse)
			pos, err := sim.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 0.1)
		})

		Convey("Pause freezes the position without completing", func() {
			completed := false
			sim.OnComplete(func() { completed = true })

			So(sim.Load("/tmp/a.mp3"), ShouldBeNil)
			So(sim.Play(0, 0.5), ShouldBeNil)
			So(sim.Pause(), ShouldBeNil)

			pos, err := sim.Position()
			So(err, ShouldBeNil)

			time.Sleep(150 * time.Millisecond)
			again, err := sim.Position()
			So(err, ShouldBeNil)
			So(again, ShouldEqual, pos)
			So(completed, ShouldBeFalse)
		})

		Convey("Stop rewinds and suppresses completion", func() {
			completed := false
			sim.OnComplete(func() { completed = true })

			So(sim.Load("/tmp/a.mp3"), ShouldBeNil)
			So(sim.Play(0, 0.5), ShouldBeNil)
			So(sim.Stop(), ShouldBeNil)

			time.Sleep(150 * time.Millisecond)
			pos, err := sim.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 0)
			So(completed, ShouldBeFalse)
		})

		Convey("Seek clamps to the track bounds", func() {
			So(sim.Load("/tmp/a.mp3"), ShouldBeNil)
			So(sim.Seek(-5), ShouldBeNil)
			pos, _ := sim.Position()
			So(pos, ShouldEqual, 0)

			So(sim.Seek(999), ShouldBeNil)
			pos, _ = sim.Position()
			So(pos, ShouldEqual, 0.1)
		})

		Convey("Load resets position and stops the clock", func() {
			So(sim.Load("/tmp/a.mp3"), ShouldBeNil)
			So(sim.Play(0, 0.5), ShouldBeNil)
			So(sim.Load("/tmp/b.mp3"), ShouldBeNil)
			So(sim.Playing(), ShouldBeFalse)
			So(sim.Path(), ShouldEqual, "/tmp/b.mp3")
		})
	})
}
