// Package stream pushes board updates to API clients over websockets.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/draftboard/internal/api/response"
	"github.com/mcoot/draftboard/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32

	// MessageTypeBoard is the first message on every stream: the board as it is now
	MessageTypeBoard = "board"
)

// BoardFunc returns a session's current board
type BoardFunc func() (*model.Board, error)

// Streamer tracks websocket clients per session and fans events out to them.
// It implements draft.Publisher.
type Streamer struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	conns map[model.SessionCode]map[*conn]struct{}
}

// New creates a new Streamer
func New(logger *slog.Logger) *Streamer {
	return &Streamer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws-stream")),
		now:    time.Now,
		conns:  make(map[model.SessionCode]map[*conn]struct{}),
	}
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *conn) finish() {
	c.once.Do(func() { close(c.done) })
}

// ClientCount returns the number of clients streaming a session
func (s *Streamer) ClientCount(code model.SessionCode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns[code])
}

// Publish queues event for every client of its session. Slow clients miss
// messages rather than block the poller.
func (s *Streamer) Publish(ctx context.Context, event model.Event) {
	data, err := json.Marshal(response.StreamMessageFromEvent(event))
	if err != nil {
		s.logger.Error("failed to encode stream message",
			slog.String("session", string(event.SessionCode)),
			slog.Any("error", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.conns[event.SessionCode]
	for c := range clients {
		select {
		case c.send <- data:
		default:
			s.logger.Warn("stream client too slow, dropping message",
				slog.String("session", string(event.SessionCode)),
				slog.String("event", string(event.Type)))
		}
	}

	if event.Type == model.EventSessionDeleted {
		for c := range clients {
			c.finish()
		}
		delete(s.conns, event.SessionCode)
	}
}

// add registers c and queues the current board as its first message.
// Holding mu orders the first message before any later event.
func (s *Streamer) add(code model.SessionCode, c *conn, current BoardFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := current()
	if err != nil {
		return err
	}
	b := response.BoardFromModel(board)
	data, err := json.Marshal(response.StreamMessage{
		Type:        MessageTypeBoard,
		SessionCode: string(code),
		Timestamp:   s.now(),
		Board:       &b,
	})
	if err != nil {
		return err
	}
	c.send <- data

	if s.conns[code] == nil {
		s.conns[code] = make(map[*conn]struct{})
	}
	s.conns[code][c] = struct{}{}
	return nil
}

func (s *Streamer) remove(code model.SessionCode, c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clients, ok := s.conns[code]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(s.conns, code)
		}
	}
}

// Serve upgrades the request and streams code's board until the client goes
// away or the session is deleted. The caller should check the session exists
// first so a missing session still gets a plain HTTP error.
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, code model.SessionCode, current BoardFunc) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		s.logger.Warn("websocket upgrade failed",
			slog.String("session", string(code)),
			slog.Any("error", err))
		return
	}

	c := &conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	if err := s.add(code, c, current); err != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	defer s.remove(code, c)

	s.logger.Debug("stream client connected",
		slog.String("session", string(code)),
		slog.String("remote_addr", r.RemoteAddr))

	go s.readLoop(c)
	s.writeLoop(c)

	s.logger.Debug("stream client disconnected", slog.String("session", string(code)))
}

// readLoop discards client messages and notices when the client goes away
func (s *Streamer) readLoop(c *conn) {
	defer c.finish()

	c.ws.SetReadLimit(512)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Streamer) writeLoop(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := s.write(c, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// Flush what was queued before the session went away
			for {
				select {
				case data := <-c.send:
					if err := s.write(c, data); err != nil {
						return
					}
				default:
					_ = c.ws.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

func (s *Streamer) write(c *conn, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}
