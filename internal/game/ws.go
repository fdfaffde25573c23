package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // the page is served from the same host
}

const pingInterval = 25 * time.Second

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, subscriberBuffer),
		done: make(chan struct{}),
	}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// Send queues env; if the client can't keep up the message is dropped.
func (c *ClientConn) Send(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- b:
	default:
	}
}

// Finish sends env as the last message and closes the connection once it
// is written.
func (c *ClientConn) Finish(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		c.Close()
		return
	}
	for _, msg := range [][]byte{b, nil} {
		select {
		case <-c.done:
			return
		case c.send <- msg:
		}
	}
}

func (c *ClientConn) SendError(err error) {
	code, msg := ErrorCode(err)
	c.Send(newEnvelope(TypeError, ErrorPayload{Code: code, Message: msg}))
}

func (c *ClientConn) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if msg == nil {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session expired"),
					time.Now().Add(time.Second))
				c.Close()
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// handleWS streams one session: initial state, then every bus event.
// /ws/{id}, token checked by middleware.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.sessions.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// an open connection keeps the session from being evicted
	release := s.sessions.Watch(sess)
	defer release()

	events, unsubscribe, err := s.sessions.Subscribe(r.Context(), id)
	if err != nil {
		s.log.Error("subscribe failed", "session", id, "err", err)
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	cc := newClientConn(ws)
	defer cc.Close()

	ws.SetPongHandler(func(string) error {
		s.sessions.Touch(sess)
		return nil
	})

	go cc.writeLoop()

	// events -> client
	go func() {
		for {
			select {
			case <-cc.done:
				return
			case env, ok := <-events:
				if !ok {
					return
				}
				if env.Type == TypeSessionExpired {
					cc.Finish(env)
					return
				}
				cc.Send(env)
			}
		}
	}()

	cc.Send(newEnvelope(TypeState, sess.State()))

	// reader loop
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		s.sessions.Touch(sess)

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			cc.Send(newEnvelope(TypeError, ErrorPayload{Code: "bad_json", Message: "invalid json"}))
			continue
		}

		switch env.Type {
		case TypeSubmitGuess:
			var p SubmitGuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				cc.Send(newEnvelope(TypeError, ErrorPayload{Code: "bad_input", Message: "invalid payload"}))
				continue
			}
			// the result itself comes back through the bus
			if _, err := s.sessions.Submit(r.Context(), id, p.Guess); err != nil {
				cc.SendError(err)
			}

		case TypeState:
			cc.Send(newEnvelope(TypeState, sess.State()))

		default:
			cc.Send(newEnvelope(TypeError, ErrorPayload{Code: "unknown_type", Message: "unknown message type"}))
		}
	}
}
