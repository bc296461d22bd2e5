package audio

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gtplayer-cli/gtplayer/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements the Backend interface using mpv's JSON-IPC protocol. One
// idle mpv process is spawned on first Load and reused for every track.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits

	listener   *eventListener
	onComplete func()

	mu sync.Mutex // protects socket writes
}

// NewMPV creates a new mpv backend (does not spawn the process).
func NewMPV() *MPV {
	return &MPV{
		exited: make(chan struct{}),
	}
}

// Load prepares the given local file for playback. The first call spawns the
// mpv process; later calls reuse it via loadfile, replacing whatever was
// loaded. The file is left paused at position zero.
func (m *MPV) Load(path string) error {
	path, err := sanitizePath(path)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if !m.running() {
		if err := m.spawn(); err != nil {
			return err
		}
	}

	if _, err := m.sendCommand([]interface{}{"loadfile", path, "replace"}); err != nil {
		return err
	}
	return m.set("pause", true)
}

// spawn starts the idle mpv process and waits for its IPC socket.
func (m *MPV) spawn() error {
	// Random socket path under os.TempDir() for cross-platform support
	// (macOS $TMPDIR is /var/folders/... not /tmp/).
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("gtplayer-%x.sock", randomBytes))

	m.cmd = exec.Command("mpv",
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--idle=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
	)

	// Detach from the parent process group so killing the shell doesn't
	// take the player down with it.
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Reap the process to prevent zombies.
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		if m.cmd.Process != nil {
			select {
			case <-m.exited:
			default:
				log.Warnf("killing mpv: socket never became ready")
				_ = m.cmd.Process.Kill()
			}
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newEventListener(m.socketPath, m.handleEvent)
	if err := m.listener.Start(); err != nil {
		log.Warnf("mpv event listener: %v", err)
	}

	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Play starts or resumes playback at the given position and gain.
func (m *MPV) Play(seek, volume float64) error {
	if err := m.SetVolume(volume); err != nil {
		return err
	}
	if err := m.Seek(seek); err != nil {
		return err
	}
	return m.set("pause", false)
}

// Pause suspends playback, keeping the position.
func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// Stop ends playback and discards the prepared position. The process stays
// idle and ready for the next Load.
func (m *MPV) Stop() error {
	_, err := m.sendCommand([]interface{}{"stop"})
	return err
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute"})
	return err
}

// SetVolume adjusts the output gain. mpv volume is 0-100.
func (m *MPV) SetVolume(volume float64) error {
	return m.set("volume", volume*100)
}

// Position returns the current playback position in seconds.
func (m *MPV) Position() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Duration returns the total duration of the loaded file in seconds.
func (m *MPV) Duration() (float64, error) {
	return m.getFloatProperty("duration")
}

// OnComplete registers the end-of-file callback.
func (m *MPV) OnComplete(fn func()) {
	m.mu.Lock()
	m.onComplete = fn
	m.mu.Unlock()
}

// handleEvent receives observed property changes from the event listener.
// eof-reached flips to true exactly once per natural track end; an explicit
// stop ends the file without raising it.
func (m *MPV) handleEvent(property string, data interface{}) {
	if property != "eof-reached" {
		return
	}
	reached, ok := data.(bool)
	if !ok || !reached {
		return
	}

	m.mu.Lock()
	fn := m.onComplete
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// running reports whether the mpv process is alive and answering IPC.
func (m *MPV) running() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
	}

	_, err := m.sendCommand([]interface{}{"get_property", "pid"})
	return err == nil
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.Stop()
	}

	if m.socketPath == "" {
		return nil
	}

	// Try graceful quit via IPC.
	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// set writes an mpv property.
func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizePath validates a local file path before handing it to mpv.
func sanitizePath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.ContainsAny(p, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in path")
	}

	// Paths must not look like flags.
	if strings.HasPrefix(p, "-") {
		return "", fmt.Errorf("path must not start with '-'")
	}

	return filepath.Clean(p), nil
}
