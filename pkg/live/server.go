// Package live pushes newly inserted style rules to connected browsers
// over WebSocket so open pages pick up rules registered after load.
package live

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/recera/rulesheet/pkg/styling"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256

	// DefaultPingInterval must stay below the read deadline clients use
	DefaultPingInterval = 54 * time.Second
)

// Server fans rule insertions out to WebSocket sessions, one sheet per
// session
type Server struct {
	reg          *styling.Registry
	upgrader     websocket.Upgrader
	log          zerolog.Logger
	pingInterval time.Duration
	unsubscribe  func()

	mu       sync.RWMutex
	sessions map[*Session]struct{}
	nextID   atomic.Int64
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithAllowedOrigins restricts which Origin headers may connect. "*"
// allows any origin. With no origins only same-host requests connect.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = originChecker(origins) }
}

// WithPingInterval sets how often idle sessions are pinged
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) { s.pingInterval = d }
}

// NewServer creates a live server subscribed to reg
func NewServer(reg *styling.Registry, opts ...Option) *Server {
	s := &Server{
		reg: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log:          zerolog.Nop(),
		pingInterval: DefaultPingInterval,
		sessions:     make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = reg.Subscribe(s.broadcast)
	return s
}

// Session is one connected client following one sheet
type Session struct {
	ID    string
	Sheet string

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// floor is the first rule index not covered by the snapshot
	floor int
}

// Serve upgrades the request and streams the named sheet until the
// client disconnects. The caller's goroutine runs the read loop. Unknown
// sheets get a 404 without an upgrade.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, sheetName string) {
	sheet, ok := s.reg.Lookup(sheetName)
	if !ok {
		http.Error(w, fmt.Sprintf("no sheet %q", sheetName), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("websocket upgrade failed")
		return
	}

	sess := &Session{
		ID:    fmt.Sprintf("s%d", s.nextID.Add(1)),
		Sheet: sheet.Name(),
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
	}

	// Snapshot and registration happen together so every later insertion
	// is either in the snapshot or broadcast to this session
	s.mu.Lock()
	rules := sheet.Rules()
	sess.floor = len(rules)
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	log := s.log.With().Str("session", sess.ID).Str("sheet", sess.Sheet).Logger()
	log.Info().Int("rules", len(rules)).Msg("live session opened")

	defer func() {
		s.remove(sess)
		log.Info().Msg("live session closed")
	}()

	if err := sess.writeSnapshot(rules); err != nil {
		log.Debug().Err(err).Msg("snapshot write failed")
		return
	}

	go sess.writer(s.pingInterval, log)
	sess.reader(log)
}

// ServeHTTP serves the sheet named by the last path element
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	s.Serve(w, r, name)
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close unsubscribes from the registry and disconnects every session
func (s *Server) Close() error {
	s.unsubscribe()

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
	return nil
}

func (s *Server) broadcast(ins styling.Insertion) {
	frame := EncodeRule(Rule{Index: ins.Index, Sheet: ins.Sheet, CSS: ins.CSS})

	var slow []*Session
	s.mu.RLock()
	for sess := range s.sessions {
		if sess.Sheet != ins.Sheet || ins.Index < sess.floor {
			continue
		}
		select {
		case sess.send <- frame:
		default:
			slow = append(slow, sess)
		}
	}
	s.mu.RUnlock()

	// A client that cannot keep up would miss rules, so drop it
	for _, sess := range slow {
		s.log.Warn().Str("session", sess.ID).Msg("send buffer full, closing session")
		sess.close()
	}
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	sess.close()
}

func (sess *Session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		sess.conn.Close()
	})
}

func (sess *Session) writeSnapshot(rules []string) error {
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	hello := EncodeControl(Control{Name: ControlHello, Index: len(rules)})
	if err := sess.conn.WriteMessage(websocket.BinaryMessage, hello); err != nil {
		return err
	}
	for i, css := range rules {
		frame := EncodeRule(Rule{Index: i, Sheet: sess.Sheet, CSS: css})
		if err := sess.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return err
		}
	}
	return nil
}

func (sess *Session) writer(pingInterval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer sess.close()

	for {
		select {
		case frame := <-sess.send:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-sess.done:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			sess.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (sess *Session) reader(log zerolog.Logger) {
	sess.conn.SetReadLimit(maxMessageSize)
	readWait := 2 * DefaultPingInterval
	sess.conn.SetReadDeadline(time.Now().Add(readWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		kind, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		c, err := DecodeControl(data)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring client frame")
			continue
		}
		if c.Name == ControlPing {
			select {
			case sess.send <- EncodeControl(Control{Name: ControlPong}):
			case <-sess.done:
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimSuffix(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return set[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}
