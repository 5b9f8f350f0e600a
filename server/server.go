// Package server exposes the question-answering pipeline over
// WebSockets. Every connection gets its own session, so one client's
// knowledge base is invisible to every other client.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"websage/internal/models"
	"websage/internal/types"
	"websage/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the wire format in both directions. Client types: "ingest"
// (content holds whitespace-separated URLs) and "question". Server
// types: "status", "ingested", "answer" and "error".
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

// IngestResult is the Data payload of an "ingested" message.
type IngestResult struct {
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Failed    []string `json:"failed,omitempty"`
}

// SessionFactory builds a fresh session per connection.
type SessionFactory func() *session.Session

// WSServer serves the ingest/ask protocol over WebSocket connections.
type WSServer struct {
	newSession SessionFactory
	method     types.Method
}

func NewWSServer(factory SessionFactory, method types.Method) *WSServer {
	return &WSServer{newSession: factory, method: method}
}

// Handler returns the HTTP handler with the WebSocket and health
// endpoints mounted.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Serve blocks, listening on addr.
func (s *WSServer) Serve(addr string) error {
	log.Printf("Starting WebSocket server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// One session per connection. Messages are handled sequentially so
	// an ingest finishes before the questions that follow it.
	sess := s.newSession()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendMessage(conn, Message{Type: "error", Content: "malformed message"})
			continue
		}

		s.handleMessage(r.Context(), conn, sess, msg)
	}
}

func (s *WSServer) handleMessage(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg Message) {
	switch msg.Type {
	case "ingest":
		s.handleIngest(ctx, conn, sess, msg)
	case "question":
		s.handleQuestion(ctx, conn, sess, msg.Content)
	default:
		s.sendMessage(conn, Message{
			Type:    "error",
			Content: fmt.Sprintf("unknown message type %q", msg.Type),
		})
	}
}

func (s *WSServer) handleIngest(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg Message) {
	urls := strings.Fields(msg.Content)
	if len(urls) == 0 {
		s.sendMessage(conn, Message{Type: "error", Content: "no URLs provided"})
		return
	}

	// Data may carry a per-request extraction method override.
	method := s.method
	if raw, ok := msg.Data.(string); ok && raw != "" {
		parsed, err := types.ParseMethod(raw)
		if err != nil {
			s.sendMessage(conn, Message{Type: "error", Content: err.Error()})
			return
		}
		method = parsed
	}

	s.sendMessage(conn, Message{
		Type:    "status",
		Content: fmt.Sprintf("Loading %d page(s)", len(urls)),
	})

	stats, failures, err := sess.Ingest(ctx, urls, method)
	if err != nil {
		s.sendMessage(conn, Message{
			Type:    "error",
			Content: fmt.Sprintf("Failed to build knowledge base: %v", err),
		})
		return
	}

	result := IngestResult{Documents: stats.Documents, Chunks: stats.Chunks}
	for _, failure := range failures {
		result.Failed = append(result.Failed, failure.URL)
	}

	s.sendMessage(conn, Message{
		Type:    "ingested",
		Content: fmt.Sprintf("Loaded %d page(s) into %d chunks", stats.Documents, stats.Chunks),
		Data:    result,
	})
}

func (s *WSServer) handleQuestion(ctx context.Context, conn *websocket.Conn, sess *session.Session, question string) {
	result, err := sess.Ask(ctx, question)
	if err != nil {
		s.sendMessage(conn, Message{Type: "error", Content: err.Error()})
		return
	}

	s.sendMessage(conn, Message{
		Type:    "answer",
		Content: result.AnswerText,
		Data:    citationData(result.Citations),
	})
}

func citationData(citations []models.Citation) []map[string]string {
	out := make([]map[string]string, 0, len(citations))
	for _, c := range citations {
		out = append(out, map[string]string{
			"source_url": c.SourceURL,
			"excerpt":    c.Excerpt,
		})
	}
	return out
}

func (s *WSServer) sendMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
