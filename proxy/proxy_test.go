package proxy

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type harness struct {
	proxy    *Proxy
	service  *protocol.Transport
	commands chan protocol.Message
}

func fixtureTracks(ids ...int64) []song.Song {
	tracks := make([]song.Song, len(ids))
	for i, id := range ids {
		tracks[i] = song.Song{ID: id, Name: fmt.Sprintf("Track %d", id), Artist: "Fixture"}
	}
	return tracks
}

func newHarness(t *testing.T, tracks []song.Song, current int) *harness {
	t.Helper()

	proxySide, err := protocol.Listen(constant.LoopbackHost, 0)
	So(err, ShouldBeNil)
	serviceSide, err := protocol.Listen(constant.LoopbackHost, 0)
	So(err, ShouldBeNil)

	So(proxySide.SetPeer(constant.LoopbackHost, serviceSide.LocalPort()), ShouldBeNil)
	So(serviceSide.SetPeer(constant.LoopbackHost, proxySide.LocalPort()), ShouldBeNil)

	So(store.UpdatePlaylist(playlist.Snapshot{Tracks: tracks, Current: current}), ShouldBeNil)
	So(store.SaveUser(store.User{Volume: 0.5, PlayMode: store.PlayModePreview}), ShouldBeNil)

	view, err := playlist.NewView(store.GetPlaylist)
	So(err, ShouldBeNil)

	p := New(Options{Transport: proxySide, View: view})

	h := &harness{
		proxy:    p,
		service:  serviceSide,
		commands: make(chan protocol.Message, 64),
	}

	go p.Run()
	go serviceSide.Serve(func(msg protocol.Message, _ net.Addr) {
		h.commands <- msg
	})

	t.Cleanup(func() {
		_ = p.Close()
		_ = serviceSide.Close()
	})

	return h
}

// notify sends a notification the way the service would, then waits for the
// proxy to apply it.
func (h *harness) notify(op protocol.Opcode, args ...any) {
	h.service.Send(protocol.NewMessage(op, args...))
	time.Sleep(50 * time.Millisecond)
}

// command waits for the next outbound command.
func (h *harness) command() (protocol.Message, bool) {
	select {
	case msg := <-h.commands:
		return msg, true
	case <-time.After(2 * time.Second):
		return protocol.Message{}, false
	}
}

func TestNotifications(t *testing.T) {
	Convey("Notifications", t, func() {
		h := newHarness(t, fixtureTracks(1, 2, 3), 0)

		Convey("playing for a different track re-anchors the mirror", func() {
			h.notify(protocol.OpPlaying, float64(2), 0.0)

			current, ok := h.proxy.Current().Get()
			So(ok, ShouldBeTrue)
			So(current.ID, ShouldEqual, 2)

			Convey("and records the left track in history", func() {
				history := h.proxy.History()
				So(history, ShouldHaveLength, 1)
				So(history[0].ID, ShouldEqual, 1)
			})
		})

		Convey("set_state for the current track applies", func() {
			h.notify(protocol.OpSetState, string(protocol.StatePlaying), float64(1))
			So(h.proxy.State(), ShouldEqual, protocol.StatePlaying)
		})

		Convey("set_state for a track the mirror moved past is dropped", func() {
			h.notify(protocol.OpSetState, string(protocol.StatePlaying), float64(3))
			So(h.proxy.State(), ShouldEqual, protocol.StateStopped)
		})

		Convey("pos updates the position cache and persists it", func() {
			h.notify(protocol.OpPos, 73.5)
			So(h.proxy.LastPos(), ShouldEqual, 73.5)
			So(store.GetUser().MustGet().LastPos, ShouldEqual, 73.5)
		})

		Convey("set_complete raises the completion flag", func() {
			h.notify(protocol.OpSetComplete, true)
			So(h.proxy.Completed(), ShouldBeTrue)

			Convey("which the next playing clears", func() {
				h.notify(protocol.OpPlaying, float64(1), 0.0)
				So(h.proxy.Completed(), ShouldBeFalse)
			})
		})

		Convey("update_playlist refetches the snapshot", func() {
			So(store.UpdatePlaylist(playlist.Snapshot{
				Tracks:  fixtureTracks(7, 8),
				Current: -1,
			}), ShouldBeNil)

			h.notify(protocol.OpUpdatePlaylist)

			tracks, index := h.proxy.Playlist()
			So(tracks, ShouldHaveLength, 2)
			So(tracks[0].ID, ShouldEqual, 7)
			So(index, ShouldEqual, -1)
		})

		Convey("playing for a track only the fresh snapshot has reloads first", func() {
			So(store.UpdatePlaylist(playlist.Snapshot{
				Tracks:  fixtureTracks(7, 8),
				Current: -1,
			}), ShouldBeNil)

			h.notify(protocol.OpPlaying, float64(8), 0.0)

			current, ok := h.proxy.Current().Get()
			So(ok, ShouldBeTrue)
			So(current.ID, ShouldEqual, 8)
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Commands", t, func() {
		h := newHarness(t, fixtureTracks(1, 2, 3), 0)

		Convey("Control from stopped plays the current track", func() {
			h.proxy.Control()
			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpLoadPlay)
			id, _ := msg.Int64(0)
			So(id, ShouldEqual, 1)
		})

		Convey("Control from stopped with a saved position resumes there", func() {
			h.notify(protocol.OpPos, 12.0)

			h.proxy.Control()
			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpLoad)

			msg, ok = h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpPlay)
			seek, _ := msg.Float(0)
			So(seek, ShouldEqual, 12.0)
		})

		Convey("Control while playing pauses", func() {
			h.notify(protocol.OpSetState, string(protocol.StatePlaying), float64(1))
			h.proxy.Control()
			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpPause)
		})

		Convey("Control while paused resumes from the cached position", func() {
			h.notify(protocol.OpPos, 12.0)
			h.notify(protocol.OpSetState, string(protocol.StatePaused), float64(1))

			h.proxy.Control()
			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpPlay)
			seek, _ := msg.Float(0)
			So(seek, ShouldEqual, 12.0)
		})

		Convey("SkipNext mid-playlist advances optimistically", func() {
			h.proxy.SkipNext()

			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpLoadPlay)
			id, _ := msg.Int64(0)
			So(id, ShouldEqual, 2)

			current, _ := h.proxy.Current().Get()
			So(current.ID, ShouldEqual, 2)
		})

		Convey("SkipNext at the tail asks for a fresh playlist", func() {
			tail := newHarness(t, fixtureTracks(5), 0)
			tail.proxy.SkipNext()

			msg, ok := tail.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpPlayNewPlaylist)
		})

		Convey("PlayTrack jumps straight to the chosen entry", func() {
			h.proxy.PlayTrack(3)

			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpLoadPlay)
			id, _ := msg.Int64(0)
			So(id, ShouldEqual, 3)

			current, _ := h.proxy.Current().Get()
			So(current.ID, ShouldEqual, 3)
		})

		Convey("PlayTrack for an unknown id changes nothing", func() {
			h.proxy.PlayTrack(999)

			select {
			case msg := <-h.commands:
				So(msg.Op, ShouldBeEmpty)
			case <-time.After(100 * time.Millisecond):
			}

			current, _ := h.proxy.Current().Get()
			So(current.ID, ShouldEqual, 1)
		})

		Convey("SkipPrevious at the head restarts the track", func() {
			h.proxy.SkipPrevious()
			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpSeek)
			pos, _ := msg.Float(0)
			So(pos, ShouldEqual, 0)
		})

		Convey("SkipPrevious mid-playlist retreats", func() {
			h.notify(protocol.OpPlaying, float64(3), 0.0)

			h.proxy.SkipPrevious()
			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpLoadPlay)
			id, _ := msg.Int64(0)
			So(id, ShouldEqual, 2)
		})

		Convey("SetVolume clamps, sends and persists", func() {
			h.proxy.SetVolume(1.7)

			msg, ok := h.command()
			So(ok, ShouldBeTrue)
			So(msg.Op, ShouldEqual, protocol.OpSetVolume)
			volume, _ := msg.Float(0)
			So(volume, ShouldEqual, 1.0)
			So(store.GetUser().MustGet().Volume, ShouldEqual, 1.0)
		})

		Convey("ToggleFavorite flips membership for the current track", func() {
			So(h.proxy.ToggleFavorite(), ShouldBeNil)
			So(store.IsFavorite(1), ShouldBeTrue)

			So(h.proxy.ToggleFavorite(), ShouldBeNil)
			So(store.IsFavorite(1), ShouldBeFalse)
		})
	})
}
