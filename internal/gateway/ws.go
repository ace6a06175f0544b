package gateway

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zz6zz666/filerag/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string         `json:"type"` // "request" or "clear"
	SessionID string         `json:"session_id"`
	Prompt    string         `json:"prompt,omitempty"`
	Contexts  []chat.Message `json:"contexts,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string         `json:"type"` // "request", "cleared" or "error"
	SessionID string         `json:"session_id"`
	Prompt    string         `json:"prompt,omitempty"`
	Contexts  []chat.Message `json:"contexts,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// handleWebSocket runs the mutation hook over a persistent connection so
// interactive clients avoid per-request HTTP overhead.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("gateway: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			g.sendWS(conn, wsResponse{Type: "error", Message: "invalid message format"})
			continue
		}
		if req.SessionID == "" {
			g.sendWS(conn, wsResponse{Type: "error", Message: "session_id is required"})
			continue
		}

		switch req.Type {
		case "request":
			hook := &chat.Request{SessionID: req.SessionID, Prompt: req.Prompt, Contexts: req.Contexts}
			g.manager.OnRequest(r.Context(), hook)
			g.sendWS(conn, wsResponse{
				Type:      "request",
				SessionID: req.SessionID,
				Prompt:    hook.Prompt,
				Contexts:  hook.Contexts,
			})
		case "clear":
			message := g.manager.ClearSession(r.Context(), req.SessionID)
			g.sendWS(conn, wsResponse{Type: "cleared", SessionID: req.SessionID, Message: message})
		default:
			g.sendWS(conn, wsResponse{Type: "error", SessionID: req.SessionID, Message: "unknown message type: " + req.Type})
		}
	}
}

func (g *Gateway) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("gateway: websocket write: %v", err)
	}
}
