package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/PizzaHomicide/reel/internal/config"
	"github.com/PizzaHomicide/reel/internal/log"
)

const (
	connectTimeout = 10 * time.Second
	playTimeout    = 5 * time.Second
	quitTimeout    = 2 * time.Second

	// seekTolerance is how close a reported position must be to a requested seek for the seek to count as landed
	seekTolerance = 1.0
)

// ErrMediaClosed is returned by Start when the media element is closed before MPV is ready
var ErrMediaClosed = errors.New("media closed")

// Observer IDs used when subscribing to MPV properties
const (
	observeTimePos = iota + 1
	observeDuration
	observePause
	observeEOF
)

// MPVMedia implements MediaBackend on top of an MPV process controlled over JSON IPC.  MPV keeps running idle
// between sources so quality switches reuse the same window.
type MPVMedia struct {
	config     *config.Config
	ipcClient  *MPVIPCClient
	socketPath string

	mu            sync.Mutex
	cmd           *exec.Cmd
	src           string
	timePos       float64
	duration      float64
	paused        bool
	awaitingStart bool // The next playback-restart is the first one for the loaded source
	seekTarget    float64
	seeking       bool // Positions far from seekTarget were reported before the seek landed and are ignored

	signals   chan Signal
	done      chan struct{}
	closeOnce sync.Once
}

// NewMPVMedia creates a new MPV backed media element.  MPV is not started until Start.
func NewMPVMedia(cfg *config.Config) *MPVMedia {
	socketPath := GetMPVSocketPath()
	return &MPVMedia{
		config:     cfg,
		socketPath: socketPath,
		ipcClient:  NewMPVIPCClient(socketPath),
		paused:     true,
		signals:    make(chan Signal, 64),
		done:       make(chan struct{}),
	}
}

// Start launches MPV idle with an IPC server, connects to it and begins translating its events into signals
func (p *MPVMedia) Start(ctx context.Context) error {
	if p.isClosed() {
		return ErrMediaClosed
	}

	mpvPath := p.config.Player.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	args := []string{
		"--no-terminal",                      // Disable terminal control, the TUI owns the terminal
		"--idle=yes",                         // Stay alive without a file so sources can be swapped
		"--force-window=yes",                 // Open the video window straight away
		"--keep-open=yes",                    // Hold the last frame at the end instead of unloading
		"--pause",                            // Nothing plays until the controller asks
		"--input-ipc-server=" + p.socketPath, // Set IPC socket path
	}

	if p.config.Player.Args != "" {
		args = append(args, ParseArgs(p.config.Player.Args)...)
	}

	log.Info("Starting MPV", "path", mpvPath, "socket", p.socketPath)
	cmd := exec.Command(mpvPath, args...)
	setupPlayerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start MPV: %w", err)
	}

	p.mu.Lock()
	if p.isClosed() {
		p.mu.Unlock()
		log.Info("Media closed while MPV was starting")
		_ = terminatePlayerProcess(cmd)
		_ = cmd.Wait()
		return ErrMediaClosed
	}
	p.cmd = cmd
	p.mu.Unlock()

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	go func() {
		select {
		case <-p.done:
			cancel()
		case <-connCtx.Done():
		}
	}()

	if err := p.ipcClient.WaitForConnection(connCtx, 20, 500*time.Millisecond); err != nil {
		p.abandonStart(cmd)
		if p.isClosed() {
			return ErrMediaClosed
		}
		return fmt.Errorf("failed to connect to MPV: %w", err)
	}

	go p.pump()
	if p.isClosed() {
		return ErrMediaClosed
	}

	for id, name := range map[int]string{
		observeTimePos:  "time-pos",
		observeDuration: "duration",
		observePause:    "pause",
		observeEOF:      "eof-reached",
	} {
		if err := p.ipcClient.ObserveProperty(id, name); err != nil {
			log.Warn("Failed to observe MPV property", "property", name, "error", err)
		}
	}
	return nil
}

func (p *MPVMedia) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// abandonStart stops an MPV process that never became reachable.  Once the element is closed, Close owns reaping it.
func (p *MPVMedia) abandonStart(cmd *exec.Cmd) {
	p.mu.Lock()
	closed := p.isClosed()
	if !closed {
		p.cmd = nil
	}
	p.mu.Unlock()

	_ = terminatePlayerProcess(cmd)
	if !closed {
		_ = cmd.Wait()
	}
}

// pump translates MPV events into media signals until the IPC connection closes
func (p *MPVMedia) pump() {
	defer close(p.signals)

	for event := range p.ipcClient.Events() {
		switch event.Event {
		case "property-change":
			p.handlePropertyChange(event)
		case "file-loaded":
			log.Debug("MPV file loaded")
			p.emit(Signal{Type: SignalLoadedData})
		case "playback-restart":
			p.mu.Lock()
			first := p.awaitingStart
			p.awaitingStart = false
			p.mu.Unlock()
			if first {
				p.emit(Signal{Type: SignalCanPlay})
			}
		case "end-file":
			if event.Reason == "error" {
				log.Warn("MPV failed to load file", "error", event.FileError)
				p.emit(Signal{Type: SignalError, Error: errors.New(event.FileError)})
			}
		}
	}
	log.Debug("MPV event channel closed")
}

func (p *MPVMedia) handlePropertyChange(event MPVEvent) {
	if len(event.Data) == 0 || string(event.Data) == "null" {
		return
	}

	switch event.Name {
	case "time-pos":
		var v float64
		if err := json.Unmarshal(event.Data, &v); err != nil {
			log.Warn("Failed to unmarshal event data", "name", event.Name, "data", string(event.Data))
			return
		}
		p.mu.Lock()
		if p.seeking && math.Abs(v-p.seekTarget) > seekTolerance {
			// Still reporting the position from before the seek
			p.mu.Unlock()
			return
		}
		p.seeking = false
		p.timePos = v
		p.mu.Unlock()
		p.emit(Signal{Type: SignalTimeUpdate})
	case "duration":
		var v float64
		if err := json.Unmarshal(event.Data, &v); err != nil {
			log.Warn("Failed to unmarshal event data", "name", event.Name, "data", string(event.Data))
			return
		}
		log.Trace("Setting video duration", "duration", v)
		p.mu.Lock()
		p.duration = v
		p.mu.Unlock()
		p.emit(Signal{Type: SignalLoadedMetadata})
	case "pause":
		var v bool
		if err := json.Unmarshal(event.Data, &v); err == nil {
			p.mu.Lock()
			p.paused = v
			p.mu.Unlock()
		}
	case "eof-reached":
		var v bool
		if err := json.Unmarshal(event.Data, &v); err == nil && v {
			p.emit(Signal{Type: SignalEnded})
		}
	}
}

func (p *MPVMedia) emit(s Signal) {
	select {
	case p.signals <- s:
	case <-p.done:
	}
}

func (p *MPVMedia) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timePos
}

func (p *MPVMedia) SetCurrentTime(seconds float64) {
	p.mu.Lock()
	p.timePos = seconds
	p.seekTarget = seconds
	p.seeking = true
	p.mu.Unlock()
	p.command("seek", seconds, "absolute")
}

func (p *MPVMedia) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *MPVMedia) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetVolume maps a [0,1] volume onto MPV's 0-100 scale
func (p *MPVMedia) SetVolume(volume float64) {
	p.command("set_property", "volume", volume*100)
}

func (p *MPVMedia) SetMuted(muted bool) {
	p.command("set_property", "mute", muted)
}

func (p *MPVMedia) SetPlaybackRate(rate float64) {
	p.command("set_property", "speed", rate)
}

func (p *MPVMedia) SetSource(src string) {
	p.mu.Lock()
	p.src = src
	p.mu.Unlock()
}

func (p *MPVMedia) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// Load pauses MPV and replaces the current file with the configured source
func (p *MPVMedia) Load() {
	p.mu.Lock()
	src := p.src
	p.paused = true
	p.timePos = 0
	p.seeking = false
	p.awaitingStart = true
	p.mu.Unlock()

	log.Info("Loading source in MPV", "url", src)
	p.command("set_property", "pause", true)
	p.command("loadfile", src, "replace")
}

// Play unpauses MPV.  The request is rejected if MPV refuses the property change or does not answer in time.
func (p *MPVMedia) Play() <-chan error {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()

	result := make(chan error, 1)
	go func() {
		defer close(result)
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if _, err := p.ipcClient.Command(ctx, "set_property", "pause", false); err != nil {
			result <- fmt.Errorf("play: %w", err)
		}
	}()
	return result
}

func (p *MPVMedia) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.command("set_property", "pause", true)
}

func (p *MPVMedia) Signals() <-chan Signal {
	return p.signals
}

// command sends a fire-and-forget command, logging rather than returning failures
func (p *MPVMedia) command(args ...interface{}) {
	if err := p.ipcClient.SendCommand(args...); err != nil {
		log.Warn("Failed to send MPV command", "command", args[0], "error", err)
	}
}

// Close asks MPV to quit, then makes sure the process is gone and the socket removed
func (p *MPVMedia) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		log.Info("Stopping MPV playback")

		_ = p.ipcClient.SendCommand("quit")
		_ = p.ipcClient.Close()

		// A Start still in flight either stored its process before done closed or terminates it itself
		p.mu.Lock()
		cmd := p.cmd
		p.mu.Unlock()

		if cmd != nil && cmd.Process != nil {
			exited := make(chan struct{})
			go func() {
				_ = cmd.Wait()
				close(exited)
			}()
			select {
			case <-exited:
			case <-time.After(quitTimeout):
				err = terminatePlayerProcess(cmd)
				<-exited
			}
		}

		// Remove socket file if it exists (Unix only)
		if _, statErr := os.Stat(p.socketPath); statErr == nil {
			if rmErr := os.Remove(p.socketPath); rmErr != nil {
				log.Warn("Failed to remove MPV socket file", "path", p.socketPath, "error", rmErr)
			}
		}
	})
	return err
}
