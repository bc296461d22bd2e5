package service

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gtplayer-cli/gtplayer/audio"
	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/download"
	"github.com/gtplayer-cli/gtplayer/filesystem"
	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/playlist"
	"github.com/gtplayer-cli/gtplayer/protocol"
	"github.com/gtplayer-cli/gtplayer/song"
	"github.com/gtplayer-cli/gtplayer/store"
	"github.com/gtplayer-cli/gtplayer/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.PlayerVolume, 0.5)
	viper.Set(key.PlayerPosInterval, 20*time.Millisecond)
	viper.Set(key.PrefetchEnabled, true)
	viper.Set(key.PrefetchThreshold, 20*time.Second)
	viper.Set(key.APIRetries, 0)
	viper.Set(key.APIRetryDelay, time.Millisecond)
	viper.Set(key.APITimeout, 2*time.Second)
}

// harness wires a service to a sim backend and a fake proxy endpoint.
type harness struct {
	service  *Service
	sim      *audio.Sim
	proxy    *protocol.Transport
	received chan protocol.Message
}

func newHarness(t *testing.T, tracks []song.Song, current int, trackLength time.Duration, refresh Refresher) *harness {
	t.Helper()

	serviceSide, err := protocol.Listen(constant.LoopbackHost, 0)
	So(err, ShouldBeNil)
	proxySide, err := protocol.Listen(constant.LoopbackHost, 0)
	So(err, ShouldBeNil)

	So(serviceSide.SetPeer(constant.LoopbackHost, proxySide.LocalPort()), ShouldBeNil)
	So(proxySide.SetPeer(constant.LoopbackHost, serviceSide.LocalPort()), ShouldBeNil)

	snapshot := playlist.Snapshot{Tracks: tracks, Current: current}
	So(store.UpdatePlaylist(snapshot), ShouldBeNil)
	So(store.SaveUser(store.User{PlayMode: store.PlayModePreview, Volume: 0.5}), ShouldBeNil)

	sim := audio.NewSim(trackLength)
	svc := New(Options{
		Transport: serviceSide,
		Backend:   sim,
		Downloads: download.NewManager(),
		Cursor:    playlist.FromSnapshot(snapshot),
		Refresh:   refresh,
	})

	h := &harness{
		service:  svc,
		sim:      sim,
		proxy:    proxySide,
		received: make(chan protocol.Message, 64),
	}

	go svc.Run()
	go proxySide.Serve(func(msg protocol.Message, _ net.Addr) {
		h.received <- msg
	})

	t.Cleanup(func() {
		_ = svc.Close()
		_ = proxySide.Close()
	})

	return h
}

// send issues a command the way the proxy would.
func (h *harness) send(op protocol.Opcode, args ...any) {
	h.proxy.Send(protocol.NewMessage(op, args...))
}

// next waits for the next notification of the given opcode, failing the test
// after a timeout. Notifications of other opcodes arriving first are returned
// as-is so callers can assert ordering.
func (h *harness) next(timeout time.Duration) (protocol.Message, bool) {
	select {
	case msg := <-h.received:
		return msg, true
	case <-time.After(timeout):
		return protocol.Message{}, false
	}
}

// expect waits for a notification with the given opcode, skipping nothing.
func (h *harness) expect(op protocol.Opcode) protocol.Message {
	msg, ok := h.next(3 * time.Second)
	So(ok, ShouldBeTrue)
	So(msg.Op, ShouldEqual, op)
	return msg
}

// drainFor collects every notification arriving within the window.
func (h *harness) drainFor(window time.Duration) []protocol.Message {
	var out []protocol.Message
	deadline := time.After(window)
	for {
		select {
		case msg := <-h.received:
			out = append(out, msg)
		case <-deadline:
			return out
		}
	}
}

// previewServer serves fake preview audio and counts hits.
func previewServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "audio")
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func fixtureTracks(server *httptest.Server, ids ...int64) []song.Song {
	tracks := make([]song.Song, len(ids))
	for i, id := range ids {
		tracks[i] = song.Song{
			ID:         id,
			Name:       fmt.Sprintf("Track %d", id),
			Artist:     "Fixture",
			PreviewURL: fmt.Sprintf("%s/%d.mp3", server.URL, id),
		}
	}
	return tracks
}

func TestLoadPlay(t *testing.T) {
	Convey("load_play", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 1, 2, 3)
		h := newHarness(t, tracks, -1, time.Minute, nil)

		Convey("Plays a fresh track from the start", func() {
			h.send(protocol.OpLoadPlay, float64(1), 0.5)

			playing := h.expect(protocol.OpPlaying)
			id, _ := playing.Int64(0)
			So(id, ShouldEqual, 1)
			pos, _ := playing.Float(1)
			So(pos, ShouldEqual, 0)

			state := h.expect(protocol.OpSetState)
			name, _ := state.String(0)
			So(name, ShouldEqual, string(protocol.StatePlaying))

			So(h.sim.Playing(), ShouldBeTrue)
		})

		Convey("Over an active track emits stopped, playing, then playing state", func() {
			h.send(protocol.OpLoadPlay, float64(1), 0.5)
			h.expect(protocol.OpPlaying)
			h.expect(protocol.OpSetState)

			h.send(protocol.OpLoadPlay, float64(2), 0.5)

			state := h.expect(protocol.OpSetState)
			name, _ := state.String(0)
			So(name, ShouldEqual, string(protocol.StateStopped))

			playing := h.expect(protocol.OpPlaying)
			id, _ := playing.Int64(0)
			So(id, ShouldEqual, 2)

			state = h.expect(protocol.OpSetState)
			name, _ = state.String(0)
			So(name, ShouldEqual, string(protocol.StatePlaying))
		})
	})
}

func TestCoverCaching(t *testing.T) {
	Convey("loading a track caches its cover art for the eviction sweep", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 5)
		tracks[0].CoverArt = server.URL + "/cover.jpg"
		h := newHarness(t, tracks, -1, time.Minute, nil)

		h.send(protocol.OpLoadPlay, float64(5), 0.5)
		h.expect(protocol.OpPlaying)

		// The fetch runs off the playback path, so poll for the file.
		path := filepath.Join(where.Covers(), "5.jpg")
		cached := false
		for deadline := time.Now().Add(3 * time.Second); time.Now().Before(deadline); {
			if exists, _ := filesystem.API().Exists(path); exists {
				cached = true
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		So(cached, ShouldBeTrue)
	})
}

func TestPlaySelfHeal(t *testing.T) {
	Convey("play before any load self-heals with one playing notification", t, func() {
		server, hits := previewServer(t)
		tracks := fixtureTracks(server, 10, 11)
		h := newHarness(t, tracks, 0, time.Minute, nil)

		h.send(protocol.OpPlay, 0.0, 0.5)

		playing := h.expect(protocol.OpPlaying)
		id, _ := playing.Int64(0)
		So(id, ShouldEqual, 10)

		state := h.expect(protocol.OpSetState)
		name, _ := state.String(0)
		So(name, ShouldEqual, string(protocol.StatePlaying))

		So(hits.Load(), ShouldEqual, 1)
		So(h.sim.Playing(), ShouldBeTrue)

		Convey("With no current track it stays silent", func() {
			empty := newHarness(t, nil, -1, time.Minute, nil)
			empty.send(protocol.OpPlay, 0.0, 0.5)
			So(empty.drainFor(200*time.Millisecond), ShouldBeEmpty)
		})
	})
}

func TestPauseStop(t *testing.T) {
	Convey("pause and stop", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 20)
		h := newHarness(t, tracks, -1, time.Minute, nil)

		h.send(protocol.OpLoadPlay, float64(20), 0.5)
		h.expect(protocol.OpPlaying)
		h.expect(protocol.OpSetState)

		Convey("pause keeps the position and notifies once", func() {
			h.send(protocol.OpPause)

			state := h.expect(protocol.OpSetState)
			name, _ := state.String(0)
			So(name, ShouldEqual, string(protocol.StatePaused))
			So(h.sim.Playing(), ShouldBeFalse)

			Convey("a second pause changes nothing", func() {
				h.send(protocol.OpPause)
				So(h.drainFor(200*time.Millisecond), ShouldBeEmpty)
			})
		})

		Convey("stop rewinds and notifies once", func() {
			h.send(protocol.OpStop)

			state := h.expect(protocol.OpSetState)
			name, _ := state.String(0)
			So(name, ShouldEqual, string(protocol.StateStopped))

			pos, err := h.sim.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 0)

			Convey("a second stop changes nothing", func() {
				h.send(protocol.OpStop)
				So(h.drainFor(200*time.Millisecond), ShouldBeEmpty)
			})
		})
	})
}

func TestVolumeAndPos(t *testing.T) {
	Convey("set_volume and get_pos", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 30)
		h := newHarness(t, tracks, -1, time.Minute, nil)

		Convey("volume set while stopped applies to the next play", func() {
			h.send(protocol.OpSetVolume, 0.8)
			time.Sleep(100 * time.Millisecond)

			h.send(protocol.OpLoadPlay, float64(30), 0.8)
			h.expect(protocol.OpPlaying)
			h.expect(protocol.OpSetState)

			So(h.sim.Volume(), ShouldEqual, 0.8)
		})

		Convey("get_pos replies to the sender", func() {
			h.send(protocol.OpLoadPlay, float64(30), 0.5)
			h.expect(protocol.OpPlaying)
			h.expect(protocol.OpSetState)

			h.send(protocol.OpGetPos)
			reply := h.expect(protocol.OpPos)
			pos, err := reply.Float(0)
			So(err, ShouldBeNil)
			So(pos, ShouldBeGreaterThanOrEqualTo, 0)
		})
	})
}

func TestCompletionAdvances(t *testing.T) {
	Convey("a completed track advances to the next one", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 40, 41)
		h := newHarness(t, tracks, -1, 300*time.Millisecond, nil)

		h.send(protocol.OpLoadPlay, float64(40), 0.5)
		h.expect(protocol.OpPlaying)
		h.expect(protocol.OpSetState)

		complete := h.expect(protocol.OpSetComplete)
		done, _ := complete.Bool(0)
		So(done, ShouldBeTrue)

		state := h.expect(protocol.OpSetState)
		name, _ := state.String(0)
		So(name, ShouldEqual, string(protocol.StateStopped))

		playing := h.expect(protocol.OpPlaying)
		id, _ := playing.Int64(0)
		So(id, ShouldEqual, 41)

		state = h.expect(protocol.OpSetState)
		name, _ = state.String(0)
		So(name, ShouldEqual, string(protocol.StatePlaying))
	})
}

func TestPlaylistExhaustion(t *testing.T) {
	Convey("completing the last track fetches a fresh playlist", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 50)
		fresh := fixtureTracks(server, 60, 61)

		refreshed := 0
		h := newHarness(t, tracks, -1, 300*time.Millisecond, func() ([]song.Song, error) {
			refreshed++
			return fresh, nil
		})

		h.send(protocol.OpLoadPlay, float64(50), 0.5)
		h.expect(protocol.OpPlaying)
		h.expect(protocol.OpSetState)

		h.expect(protocol.OpSetComplete)

		state := h.expect(protocol.OpSetState)
		name, _ := state.String(0)
		So(name, ShouldEqual, string(protocol.StateStopped))

		h.expect(protocol.OpUpdatePlaylist)

		playing := h.expect(protocol.OpPlaying)
		id, _ := playing.Int64(0)
		So(id, ShouldEqual, 60)
		So(refreshed, ShouldEqual, 1)

		snapshot, err := store.GetPlaylist()
		So(err, ShouldBeNil)
		So(snapshot.Tracks, ShouldHaveLength, 2)
		So(snapshot.Current, ShouldEqual, 0)
	})
}

func TestPlayNewPlaylist(t *testing.T) {
	Convey("play_new_playlist forces a refresh mid-playlist", t, func() {
		server, _ := previewServer(t)
		tracks := fixtureTracks(server, 70, 71)
		fresh := fixtureTracks(server, 80, 81)

		h := newHarness(t, tracks, -1, time.Minute, func() ([]song.Song, error) {
			return fresh, nil
		})

		h.send(protocol.OpLoadPlay, float64(70), 0.5)
		h.expect(protocol.OpPlaying)
		h.expect(protocol.OpSetState)

		h.send(protocol.OpPlayNewPlaylist)

		state := h.expect(protocol.OpSetState)
		name, _ := state.String(0)
		So(name, ShouldEqual, string(protocol.StateStopped))

		h.expect(protocol.OpUpdatePlaylist)

		playing := h.expect(protocol.OpPlaying)
		id, _ := playing.Int64(0)
		So(id, ShouldEqual, 80)
	})
}

func TestPrefetch(t *testing.T) {
	Convey("the position timer prefetches the upcoming track near the end", t, func() {
		server, hits := previewServer(t)
		tracks := fixtureTracks(server, 90, 91)
		// Track length far below the threshold, so every tick is "near the end".
		h := newHarness(t, tracks, -1, 10*time.Second, nil)

		h.send(protocol.OpLoadPlay, float64(90), 0.5)
		h.expect(protocol.OpPlaying)
		h.expect(protocol.OpSetState)

		// One hit for the playing track, one for the prefetched next.
		deadline := time.Now().Add(3 * time.Second)
		for hits.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(20 * time.Millisecond)
		}
		So(hits.Load(), ShouldEqual, 2)

		Convey("and never refetches it once cached", func() {
			time.Sleep(200 * time.Millisecond)
			So(hits.Load(), ShouldEqual, 2)
		})
	})
}
