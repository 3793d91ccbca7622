// Package spectate streams judgements of a run to WebSocket viewers.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	"git.lost.host/meutraa/cadence/internal/score"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server is a judge listener that forwards events to every connected
// viewer. Viewers cannot send anything back.
type Server struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader
	addr     string

	mu      sync.Mutex
	clients map[*client]bool
	last    []byte // Latest status, sent to viewers as they connect
	running bool
	server  *http.Server
	ln      net.Listener
}

type client struct {
	conn   *websocket.Conn
	server *Server
	send   chan []byte
	logger *logrus.Entry
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

func NewServer(logger *logrus.Logger, addr string) *Server {
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Overlays are served from anywhere
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		addr:    addr,
		clients: make(map[*client]bool),
	}
}

// Start listens on the configured address and serves viewers until Stop
// is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("spectate server is already running")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if nil != err {
		return fmt.Errorf("unable to listen on %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebSocket)
	s.server = &http.Server{Handler: mux}
	s.ln = ln
	s.running = true

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Spectate server error")
		}
	}()

	s.logger.WithField("addr", ln.Addr().String()).Info("Spectate server started")
	return nil
}

// Addr is the address being listened on, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	for c := range s.clients {
		c.conn.Close()
	}

	s.running = false
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Error shutting down spectate server")
		return err
	}
	s.logger.Info("Spectate server stopped")
	return nil
}

// ClientCount is the number of connected viewers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upgrade spectator connection")
		return
	}

	c := &client{
		conn:   conn,
		server: s,
		send:   make(chan []byte, sendBuffer),
		logger: s.logger.WithField("client", conn.RemoteAddr().String()),
	}
	s.register(c)

	go c.writePump()
	go c.readPump()
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c] = true
	if s.last != nil {
		c.send <- s.last
	}
	c.logger.Info("Spectator connected")
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
		c.logger.Info("Spectator disconnected")
	}
}

// broadcast never blocks the caller, viewers that fall behind are
// dropped. The caller holds mu.
func (s *Server) broadcast(message []byte) {
	for c := range s.clients {
		select {
		case c.send <- message:
		default:
			delete(s.clients, c)
			close(c.send)
			c.logger.Warn("Dropped slow spectator")
		}
	}
}

func (s *Server) marshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal spectate message")
		return nil
	}
	return data
}

func (s *Server) Flash(column int, j game.Judgement) {
	data := s.marshal(FlashMessage{
		Type:      "flash",
		Column:    column,
		Judgement: j.Tier.String(),
		Tag:       j.Tier.Tag(),
		Score:     j.Score,
	})
	if data == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcast(data)
}

func (s *Server) Status(st score.Snapshot) {
	data := s.marshal(StatusMessage{
		Type:     "status",
		Status:   st,
		Accuracy: st.Accuracy(),
		Rank:     st.Rank().Name,
	})
	if data == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = data
	s.broadcast(data)
}

// readPump only exists to notice the viewer leaving and to answer pings.
func (c *client) readPump() {
	defer func() {
		c.server.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Debug("Spectator read error")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WithError(err).Debug("Spectator write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
