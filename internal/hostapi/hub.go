// Package hostapi bridges the viewer to the external rating form over a
// websocket. The form sends commands (load_case, next, prev, resize,
// snapshot) and receives loading and case_loaded events.
package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/iqhfm-eval/internal/logger"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
)

const (
	sendBuffer   = 32
	writeTimeout = 2 * time.Second
	readLimit    = 4096
)

// Submitter queues commands for the render loop.
type Submitter interface {
	Submit(cmd viewer.Command) error
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and fans events out to them.
type Hub struct {
	submit   Submitter
	upgrader websocket.Upgrader

	mu         sync.Mutex
	clients    map[*client]bool
	caseLoaded []byte // last case_loaded event, replayed on connect
}

// NewHub creates a hub that forwards commands to s.
func NewHub(s Submitter) *Hub {
	return &Hub{
		submit: s,
		upgrader: websocket.Upgrader{
			// The rating form is served from its own origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]bool),
	}
}

// Handler returns the HTTP routes: /ws for the socket and /status for a
// JSON summary.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/status", h.handleStatus)
	return mux
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends an event to every client. It never blocks: a client whose
// buffer is full is disconnected. Safe for concurrent use.
func (h *Hub) Publish(e viewer.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Error("marshaling event", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if e.Type == viewer.EventCaseLoaded {
		h.caseLoaded = data
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logger.Warn("dropping slow websocket client", zap.String("remote", c.conn.RemoteAddr().String()))
			h.removeLocked(c)
		}
	}
}

func (h *Hub) removeLocked(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	if h.caseLoaded != nil {
		c.send <- h.caseLoaded
	}
	h.mu.Unlock()
	logger.Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()
			// Drain so Publish never sees a full buffer from a dead client.
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
		logger.Info("websocket client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(readLimit)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.handleCommand(data); err != nil {
			logger.Warn("rejected host command", zap.ByteString("message", data), zap.Error(err))
			h.reply(c, viewer.Event{Type: viewer.EventError, Error: err.Error()})
		}
	}
}

// ErrBadCommand is returned for a message that is not a valid command.
var ErrBadCommand = errors.New("bad command")

func (h *Hub) handleCommand(data []byte) error {
	var cmd viewer.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return errors.Join(ErrBadCommand, err)
	}
	switch cmd.Type {
	case viewer.CommandLoadCase, viewer.CommandNext, viewer.CommandPrev, viewer.CommandSnapshot:
	case viewer.CommandResize:
		if cmd.Width <= 0 || cmd.Height <= 0 {
			return errors.Join(ErrBadCommand, errors.New("resize needs positive width and height"))
		}
	default:
		return errors.Join(ErrBadCommand, errors.New("unknown type "+string(cmd.Type)))
	}
	return h.submit.Submit(cmd)
}

func (h *Hub) reply(c *client, e viewer.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

type status struct {
	Clients    int             `json:"clients"`
	CaseLoaded json.RawMessage `json:"case_loaded,omitempty"`
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	st := status{Clients: len(h.clients), CaseLoaded: h.caseLoaded}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// ListenAndServe serves the hub on addr until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("host bridge listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	h.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
