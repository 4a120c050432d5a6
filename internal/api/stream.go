package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/venturemind/venturemind-backend/internal/venture"
)

const (
	streamWriteWait = 10 * time.Second
	streamReadWait  = 30 * time.Second
	streamReadLimit = 64 << 10
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type streamEvent struct {
	Type   string        `json:"type"`
	Stage  string        `json:"stage,omitempty"`
	Task   string        `json:"task,omitempty"`
	OK     *bool         `json:"ok,omitempty"`
	Result *chatResponse `json:"result,omitempty"`
	Detail string        `json:"detail,omitempty"`
}

func eventFor(ev venture.Event) streamEvent {
	if ev.Kind == venture.EventTask {
		ok := ev.OK
		return streamEvent{Type: "task", Task: ev.Task, OK: &ok}
	}
	return streamEvent{Type: "stage", Stage: string(ev.Stage)}
}

// handleStream runs one generation over a websocket, pushing progress
// events as the orchestrator advances.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamReadWait))

	var req chatRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeAndClose(conn, streamEvent{Type: "error", Detail: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The orchestrator emits task events from several goroutines; a single
	// writer owns the connection.
	out := make(chan streamEvent, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		broken := false
		for ev := range out {
			if broken {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Warn("websocket write failed", "error", err)
				broken = true
				cancel()
			}
		}
	}()

	result, err := s.gen.Run(ctx, req.Message, func(ev venture.Event) {
		out <- eventFor(ev)
	})
	if err != nil {
		_, detail := statusFor(err)
		out <- streamEvent{Type: "error", Detail: detail}
	} else {
		if u := currentUser(c); u != nil {
			s.saveHistory(ctx, u, req.Message, result.StartupPack)
		}
		resp := newChatResponse(result)
		out <- streamEvent{Type: "result", Result: &resp}
	}
	close(out)
	<-writerDone

	closeStream(conn)
}

func (s *Server) writeAndClose(conn *websocket.Conn, ev streamEvent) {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(ev); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
	closeStream(conn)
}

func closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(streamWriteWait))
}
