package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/PizzaHomicide/reel/internal/log"
	"github.com/google/uuid"
)

var (
	// ErrNotConnected is returned when a command is sent before the IPC connection is up, or after it dropped
	ErrNotConnected = errors.New("not connected to MPV")
	// ErrClientClosed is returned when connecting a client that has already been closed
	ErrClientClosed = errors.New("MPV IPC client closed")
)

// MPVIPCClient provides communication with a running MPV instance over its JSON IPC protocol
type MPVIPCClient struct {
	socketPath string
	conn       net.Conn
	events     chan MPVEvent
	closed     chan struct{}

	writeMu  sync.Mutex
	mu       sync.Mutex // Guards conn, shutdown and the pending commands
	shutdown bool
	nextID   int
	pending  map[int]pendingCommand
}

// pendingCommand is a command awaiting its reply.  Fire-and-forget commands have no reply channel.
type pendingCommand struct {
	name  string
	reply chan MPVEvent
}

// MPVEvent represents a single line sent by MPV.  Replies to commands carry a request ID and no event name.
type MPVEvent struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        int             `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
		closed:     make(chan struct{}),
		pending:    make(map[int]pendingCommand),
	}
}

// GetMPVSocketPath returns a socket path for MPV IPC communication that is unique to this session
func GetMPVSocketPath() string {
	// Use environment variable if set
	if path := os.Getenv("REEL_MPV_IPC_SOCKET"); path != "" {
		return path
	}

	name := "reel-mpv-" + uuid.NewString()

	switch runtime.GOOS {
	case "windows":
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\` + name
	default:
		runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
		if runtimeDir == "" {
			runtimeDir = os.TempDir()
		}
		return filepath.Join(runtimeDir, name+".sock")
	}
}

// attach adopts an established connection and starts reading from it.  A connection that arrives after Close is
// dropped.
func (c *MPVIPCClient) attach(conn net.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		_ = conn.Close()
		return ErrClientClosed
	}
	c.conn = conn
	go c.readEvents(conn)
	return nil
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check if socket file exists for unix sockets
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				log.Debug("MPV socket does not exist yet", "attempt", attempt, "path", c.socketPath)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(retryDelay):
					continue
				}
			}
		}

		err := c.Connect(ctx)
		if err == nil {
			log.Info("Successfully connected to MPV", "attempt", attempt)
			return nil
		}
		if errors.Is(err, ErrClientClosed) {
			return err
		}

		log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// Close closes the connection to MPV.  The client cannot be connected again afterwards.
func (c *MPVIPCClient) Close() error {
	c.mu.Lock()
	c.shutdown = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// readEvents continuously reads lines from MPV, routing replies to their waiting command and everything else to the
// events channel
func (c *MPVIPCClient) readEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Error("Failed to unmarshal MPV event", "error", err)
			continue
		}

		if event.Event == "" && event.RequestID != 0 {
			c.deliverReply(event)
			continue
		}

		log.Trace("Received MPV event", "event", event.Event, "name", event.Name)
		c.events <- event
	}

	if err := scanner.Err(); err != nil {
		log.Error("Error reading from MPV socket", "error", err)
	}

	log.Debug("MPV event reader stopped")
	close(c.closed)
	close(c.events)
}

func (c *MPVIPCClient) deliverReply(reply MPVEvent) {
	c.mu.Lock()
	cmd, ok := c.pending[reply.RequestID]
	delete(c.pending, reply.RequestID)
	c.mu.Unlock()

	if !ok {
		log.Debug("Reply for unknown MPV request", "request_id", reply.RequestID)
		return
	}
	if cmd.reply != nil {
		cmd.reply <- reply
		return
	}
	if reply.Error != "" && reply.Error != "success" {
		log.Warn("MPV command failed", "command", cmd.name, "error", reply.Error)
	}
}

// Events returns the channel for MPV events
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

// send writes a command, registering it under a fresh request ID
func (c *MPVIPCClient) send(reply chan MPVEvent, args []interface{}) (int, error) {
	name, _ := args[0].(string)

	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return 0, ErrNotConnected
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = pendingCommand{name: name, reply: reply}
	c.mu.Unlock()

	data, err := json.Marshal(map[string]interface{}{
		"command":    args,
		"request_id": id,
	})
	if err != nil {
		c.forget(id)
		return 0, fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	_, err = conn.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return 0, fmt.Errorf("failed to send command: %w", err)
	}
	return id, nil
}

func (c *MPVIPCClient) forget(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// SendCommand sends a command to MPV without waiting for the reply.  A failure reply is logged.
func (c *MPVIPCClient) SendCommand(args ...interface{}) error {
	_, err := c.send(nil, args)
	return err
}

// Command sends a command to MPV and waits for its reply, returning the reply's data
func (c *MPVIPCClient) Command(ctx context.Context, args ...interface{}) (json.RawMessage, error) {
	reply := make(chan MPVEvent, 1)
	id, err := c.send(reply, args)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case <-c.closed:
		return nil, ErrNotConnected
	case r := <-reply:
		if r.Error != "" && r.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], r.Error)
		}
		return r.Data, nil
	}
}

// ObserveProperty starts observing an MPV property.  Changes arrive as property-change events tagged with id.
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand("observe_property", id, name)
}
