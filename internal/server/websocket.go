package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message types sent to websocket sessions.
const (
	MessageState = "state"
	MessageAck   = "ack"
	MessageError = "error"
	MessageEvent = "event"
)

// Message is the envelope of everything written to a session.
type Message struct {
	Type    string       `json:"type"`
	Session string       `json:"session,omitempty"`
	State   *world.State `json:"state,omitempty"`
	Command *Command     `json:"command,omitempty"`
	Event   string       `json:"event,omitempty"`
	Robot   string       `json:"robot,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *session) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// enqueue drops the frame when the session is not keeping up.
func (c *session) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// handleWebSocket upgrades the request into a session. The session first
// receives the current state, then a state message per tick. Each text
// frame it sends is a Command answered by an ack or an error message.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if int(atomic.LoadInt64(&s.sessionCount)) >= s.config.MaxSessions {
		s.logger.Warn("Maximum sessions reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		s.writeError(w, http.StatusServiceUnavailable, ErrMaxSessionsReached)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.config.SendBuffer),
		done: make(chan struct{}),
	}
	s.sessions.Store(c.id, c)
	atomic.AddInt64(&s.sessionCount, 1)

	sessionLogger := s.logger.With(log.String("session_id", c.id))
	sessionLogger.Info("Session connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_sessions", atomic.LoadInt64(&s.sessionCount)))

	defer func() {
		s.sessions.Delete(c.id)
		atomic.AddInt64(&s.sessionCount, -1)
		c.close()
		sessionLogger.Info("Session disconnected",
			log.Int64("total_sessions", atomic.LoadInt64(&s.sessionCount)))
	}()

	go s.writeLoop(c, sessionLogger)

	st := s.State()
	s.sendTo(c, Message{Type: MessageState, Session: c.id, State: &st})

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sessionLogger.Warn("Failed to read command", log.Error(err))
			}
			return
		}
		if err := s.Apply(cmd); err != nil {
			s.sendTo(c, Message{Type: MessageError, Command: &cmd, Error: err.Error()})
			continue
		}
		s.sendTo(c, Message{Type: MessageAck, Command: &cmd})
	}
}

func (s *Server) writeLoop(c *session, logger log.Log) {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("Failed to write frame", log.Error(err))
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) sendTo(c *session, msg Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to encode message", log.Error(err))
		return
	}
	if !c.enqueue(frame) {
		s.logger.Debug("Dropped frame", log.String("session_id", c.id), log.String("type", msg.Type))
	}
}

// broadcast encodes msg once and queues it on every session.
func (s *Server) broadcast(msg Message) {
	if atomic.LoadInt64(&s.sessionCount) == 0 {
		return
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to encode message", log.Error(err))
		return
	}
	s.sessions.Range(func(key, value any) bool {
		c := value.(*session)
		if !c.enqueue(frame) {
			s.logger.Debug("Dropped frame", log.String("session_id", c.id), log.String("type", msg.Type))
		}
		return true
	})
}

func (s *Server) closeSessions() {
	s.sessions.Range(func(key, value any) bool {
		value.(*session).close()
		return true
	})
}
