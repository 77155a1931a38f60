package webui

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kodahr27/ollama-chat-app/pkg/llm"
	"github.com/kodahr27/ollama-chat-app/pkg/parser"
)

// safeConn wraps a WebSocket connection with a write mutex so the streaming
// goroutine and control frames never interleave writes.
type safeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

func newSafeConn(conn *websocket.Conn) *safeConn {
	return &safeConn{conn: conn}
}

func (sc *safeConn) WriteJSON(v any) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	if sc.closed {
		return nil
	}
	return sc.conn.WriteJSON(v)
}

func (sc *safeConn) Close() error {
	sc.writeMu.Lock()
	sc.closed = true
	sc.writeMu.Unlock()
	return sc.conn.Close()
}

// clientFrame is a message from the browser.
type clientFrame struct {
	Type    string `json:"type"` // "chat"
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// handleWebSocket runs the chat loop for one browser connection: relay the
// user message to Ollama, stream chunks back, then parse the complete reply
// once and send the structured result.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Logf("websocket upgrade error: %v", err)
		return
	}
	sc := newSafeConn(conn)
	defer sc.Close()

	s.connections.Store(conn, time.Now())
	defer s.connections.Delete(conn)

	conv, err := s.convs.CreateConversation(r.Context(), "web session", s.client.Model())
	if err != nil {
		s.logger.Logf("failed to create conversation: %v", err)
		sc.WriteJSON(map[string]any{"type": "error", "error": "history unavailable"})
		return
	}
	sc.WriteJSON(map[string]any{"type": "ready", "conversation_id": conv.ID, "model": s.client.Model()})

	var messages []llm.Message
	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		if frame.Type != "chat" || frame.Content == "" {
			continue
		}
		if frame.Model != "" {
			s.client.SetModel(frame.Model)
		}

		messages = append(messages, llm.Message{Role: "user", Content: frame.Content})
		if _, err := s.convs.AppendMessage(r.Context(), conv.ID, "user", frame.Content); err != nil {
			s.logger.LogError(err)
		}

		full, err := s.client.Stream(r.Context(), messages, func(chunk string) {
			sc.WriteJSON(map[string]any{"type": "chunk", "content": chunk})
		})
		if err != nil {
			s.logger.Logf("stream error: %v", err)
			sc.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
			continue
		}

		messages = append(messages, llm.Message{Role: "assistant", Content: full})
		if _, err := s.convs.AppendMessage(r.Context(), conv.ID, "assistant", full); err != nil {
			s.logger.LogError(err)
		}

		// Parse runs exactly once, on the complete message.
		resp := parser.Parse(full)
		added := 0
		if len(resp.Artifacts) > 0 {
			added, err = s.store.AddParsed(r.Context(), s.projectID, resp.Artifacts)
			if err != nil {
				s.logger.LogError(err)
			}
		}

		sc.WriteJSON(map[string]any{
			"type":            "complete",
			"response":        resp,
			"artifacts_added": added,
		})
	}
}
