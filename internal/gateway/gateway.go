// Package gateway exposes the engine over HTTP: file upload, the request
// mutation hook, session clearing, and a WebSocket chat surface.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/config"
	"github.com/zz6zz666/filerag/internal/session"
	"github.com/zz6zz666/filerag/internal/slot"
)

// Gateway is the HTTP surface over a session manager.
type Gateway struct {
	cfg        config.GatewayConfig
	manager    *session.Manager
	router     chi.Router
	httpServer *http.Server
}

// New creates the gateway and builds its router.
func New(cfg config.GatewayConfig, manager *session.Manager) *Gateway {
	g := &Gateway{cfg: cfg, manager: manager}
	g.router = g.buildRouter()
	return g
}

func (g *Gateway) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if g.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", g.handleUpload)
		r.Post("/request", g.handleRequest)
		r.Post("/clear", g.handleClear)
		r.Get("/slots", g.handleSlots)
	})
	r.Get("/ws", g.handleWebSocket)

	return r
}

// Router returns the chi router, handy for tests and embedding.
func (g *Gateway) Router() chi.Router { return g.router }

// Start begins listening on the configured port.
func (g *Gateway) Start() error {
	addr := fmt.Sprintf(":%d", g.cfg.Port)
	g.httpServer = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Printf("gateway: listening on %s", addr)
	return g.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.httpServer != nil {
		return g.httpServer.Shutdown(ctx)
	}
	return nil
}

// uploadResponse reports the per-file ingestion outcome.
type uploadResponse struct {
	SessionID string   `json:"session_id"`
	Messages  []string `json:"messages"`
}

// handleUpload ingests multipart files into the session given by the
// session_id form field. Replies the engine would send to a chat surface
// come back as the messages array.
func (g *Gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file part is required")
		return
	}

	var messages []string
	ev := &chat.Event{
		SessionID: sessionID,
		Type:      chat.DirectMessage,
		Reply: func(_ context.Context, text string) error {
			messages = append(messages, text)
			return nil
		},
	}
	for _, fh := range r.MultipartForm.File["file"] {
		ev.Attachments = append(ev.Attachments, &formAttachment{header: fh})
	}

	g.manager.HandleFiles(r.Context(), ev)
	writeJSON(w, http.StatusOK, uploadResponse{SessionID: sessionID, Messages: messages})
}

// requestPayload mirrors chat.Request on the wire.
type requestPayload struct {
	SessionID string         `json:"session_id"`
	Prompt    string         `json:"prompt"`
	Contexts  []chat.Message `json:"contexts"`
}

// handleRequest runs the pre-dispatch hook and returns the mutated
// prompt and contexts. The caller forwards them to its own LLM.
func (g *Gateway) handleRequest(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if payload.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	req := &chat.Request{SessionID: payload.SessionID, Prompt: payload.Prompt, Contexts: payload.Contexts}
	g.manager.OnRequest(r.Context(), req)

	writeJSON(w, http.StatusOK, requestPayload{
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		Contexts:  req.Contexts,
	})
}

type clearPayload struct {
	SessionID string `json:"session_id"`
	// ConversationID narrows the clear to one conversation; empty clears
	// the whole session.
	ConversationID string `json:"conversation_id,omitempty"`
}

func (g *Gateway) handleClear(w http.ResponseWriter, r *http.Request) {
	var payload clearPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if payload.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if payload.ConversationID != "" {
		g.manager.ClearConversation(r.Context(), payload.SessionID, payload.ConversationID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Cleared uploaded file data for the conversation."})
		return
	}
	msg := g.manager.ClearSession(r.Context(), payload.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// slotInfo describes one live file index.
type slotInfo struct {
	FileName   string `json:"file_name"`
	Slot       string `json:"slot"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// handleSlots lists the live file indexes of the session's active
// conversation.
func (g *Gateway) handleSlots(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	conversationID := g.manager.Conversations().Current(sessionID)

	infos := []slotInfo{}
	for _, key := range g.manager.Registry().KeysFor(sessionID, conversationID) {
		info := slotInfo{Slot: key.Slot}
		if name, uploadedAt, ok := slot.Parse(key.Slot); ok {
			info.FileName = name
			info.UploadedAt = uploadedAt.UTC().Format(time.RFC3339)
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "slots": infos})
}

// formAttachment stages a multipart file part, preserving the uploaded
// file name as the base name.
type formAttachment struct {
	header *multipart.FileHeader
}

func (a *formAttachment) Name() string { return filepath.Base(a.header.Filename) }

func (a *formAttachment) GetFile(context.Context) (string, error) {
	src, err := a.header.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", a.Name(), err)
	}
	defer src.Close()

	dir, err := os.MkdirTemp("", "filerag-upload-*")
	if err != nil {
		return "", fmt.Errorf("staging upload: %w", err)
	}
	path := filepath.Join(dir, a.Name())
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("staging upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("writing upload %s: %w", a.Name(), err)
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("gateway: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "status": strconv.Itoa(status)})
}
