//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pgEdge/northwind-bi/internal/engine"
	"github.com/pgEdge/northwind-bi/internal/logging"
	"github.com/pgEdge/northwind-bi/internal/views"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 8
)

// Message types exchanged over a session.
const (
	MessageSelect = "select"
	MessageResult = "result"
	MessageError  = "error"
	MessageHello  = "hello"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// ResultMessage answers the most recent selection of a session.
type ResultMessage struct {
	Type    string         `json:"type"`
	Session string         `json:"session"`
	Seq     uint64         `json:"seq"`
	View    *views.Output  `json:"view,omitempty"`
	Result  *engine.Result `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
}

type pendingSelection struct {
	seq uint64
	msg SelectionMessage
}

// session is one websocket client. Selections are queued in a single
// slot: one that arrives while another is still pending replaces it, so
// only the latest choice is ever computed.
type session struct {
	id     uuid.UUID
	engine *engine.Engine
	conn   *websocket.Conn
	log    zerolog.Logger

	mu      sync.Mutex
	pending *pendingSelection
	seq     uint64

	notify chan struct{}
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSession(e *engine.Engine, conn *websocket.Conn) *session {
	id := uuid.New()
	return &session{
		id:     id,
		engine: e,
		conn:   conn,
		log:    logging.Component("session").With().Str("session", id.String()).Logger(),
		notify: make(chan struct{}, 1),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	sess := newSession(s.engine, conn)
	sess.log.Info().Str("remote", r.RemoteAddr).Msg("Session opened")

	go sess.writePump()
	go sess.computeLoop()
	sess.queue(ResultMessage{Type: MessageHello, Session: sess.id.String()})
	sess.readPump()
}

// submit places msg in the pending slot, replacing any selection not yet
// picked up, and returns its sequence number.
func (s *session) submit(msg SelectionMessage) uint64 {
	s.mu.Lock()
	s.seq++
	if s.pending != nil {
		s.log.Debug().Uint64("seq", s.pending.seq).Msg("Selection superseded")
	}
	s.pending = &pendingSelection{seq: s.seq, msg: msg}
	seq := s.seq
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return seq
}

// take empties the pending slot.
func (s *session) take() *pendingSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *session) readPump() {
	defer func() {
		s.close()
		s.log.Info().Msg("Session closed")
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("Session read failed")
			}
			return
		}

		var msg SelectionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.queue(s.errorMessage(0, CodeBadRequest, err))
			continue
		}
		if msg.Type != MessageSelect {
			s.queue(s.errorMessage(0, CodeBadRequest, errors.New("unknown message type: "+msg.Type)))
			continue
		}
		s.submit(msg)
	}
}

func (s *session) computeLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}

		p := s.take()
		if p == nil {
			continue
		}
		s.queue(s.evaluate(p))
	}
}

// evaluate answers one selection, with either the named view or the full
// aggregation bundle.
func (s *session) evaluate(p *pendingSelection) ResultMessage {
	req, err := p.msg.Request()
	if err != nil {
		return s.errorMessage(p.seq, CodeBadRequest, err)
	}
	sel := s.engine.Select(req)

	msg := ResultMessage{Type: MessageResult, Session: s.id.String(), Seq: p.seq}
	if p.msg.View == "" {
		res := s.engine.Run(sel)
		msg.Result = &res
		return msg
	}

	v, err := views.Get(p.msg.View)
	if err != nil {
		return s.errorMessage(p.seq, CodeNotFound, err)
	}
	out, err := views.Evaluate(s.engine, v, sel)
	if err != nil {
		code := CodeInternal
		if errors.Is(err, engine.ErrChurnCardinality) {
			code = CodeDataIntegrity
		}
		return s.errorMessage(p.seq, code, err)
	}
	msg.View = out
	return msg
}

func (s *session) errorMessage(seq uint64, code string, err error) ResultMessage {
	return ResultMessage{
		Type:    MessageError,
		Session: s.id.String(),
		Seq:     seq,
		Error:   err.Error(),
		Code:    code,
	}
}

func (s *session) queue(msg ResultMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode session message")
		return
	}
	select {
	case s.send <- data:
	case <-s.done:
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn().Err(err).Msg("Session write failed")
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
