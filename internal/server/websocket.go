package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
	CheckOrigin:       func(r *http.Request) bool { return true },
}

// Message is the JSON payload sent to websocket subscribers for each entry.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Source    string          `json:"source"`
	Tag       string          `json:"tag"`
	Level     string          `json:"level,omitempty"`
	Device    string          `json:"device"`
	Message   string          `json:"message"`
	Context   json.RawMessage `json:"context,omitempty"`
}

func newMessage(e model.Entry) Message {
	msg := Message{
		Type:      "log",
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
		Source:    e.Source,
		Tag:       e.Tag,
		Level:     e.Level,
		Device:    e.Device,
		Message:   e.Message,
	}
	if e.Context != "" {
		msg.Context = json.RawMessage(e.Context)
	}
	return msg
}

// handleWebSocket upgrades to WebSocket and streams entries to the client.
// Slow clients miss entries; they never hold up the pipeline.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	entries := s.hub.Subscribe()
	defer s.hub.Unsubscribe(entries)

	s.logger.Debug("subscriber connected", "remote", c.Request.RemoteAddr)

	// Read pump: detect client disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read failed", "err", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			s.logger.Debug("subscriber disconnected", "remote", c.Request.RemoteAddr)
			return
		case entry, ok := <-entries:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "input ended"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newMessage(entry)); err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}
