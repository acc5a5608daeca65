package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/aretw0/pagecraft/pkg/registry"
)

// command is a client message on the websocket. Op names a registry command.
type command struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

type reply struct {
	Type   string `json:"type"`
	Op     string `json:"op"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
		},
	}
}

// Socket handles GET /projects/{projectID}/ws. The server pushes the same
// events as the SSE stream and answers client commands with a reply message.
func (s *Server) Socket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ws.Open(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	events, cancel := s.streams.Subscribe(sess.ProjectID())
	defer cancel()

	replies := make(chan reply, 4)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	send := func(rep reply) bool {
		select {
		case replies <- rep:
			return true
		case <-quit:
			return false
		}
	}

	// Reader: the only goroutine calling ReadMessage.
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warn("websocket read failed", "err", err)
				}
				return
			}
			var cmd command
			if err := json.Unmarshal(raw, &cmd); err != nil {
				if !send(reply{Type: "reply", Error: "invalid command"}) {
					return
				}
				continue
			}
			rep := reply{Type: "reply", Op: cmd.Op}
			res, err := s.commands.Execute(r.Context(), cmd.Op, sess, cmd.Args)
			switch {
			case errors.Is(err, registry.ErrUnknownCommand):
				rep.Error = "unknown op"
			case err != nil:
				rep.Error = err.Error()
			default:
				rep.Result = res
			}
			if !send(rep) {
				return
			}
		}
	}()

	// Writer: the only goroutine writing to conn.
	for {
		select {
		case <-done:
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case rep := <-replies:
			if err := conn.WriteJSON(rep); err != nil {
				return
			}
		}
	}
}
