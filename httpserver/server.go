// Package httpserver exposes the travel planner over HTTP: a JSON query
// endpoint and a minimal web form.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/effective-security/xlog"
	"github.com/globalguide/travelagent/chatmodel"
)

var logger = xlog.NewPackageLogger("github.com/globalguide/travelagent", "httpserver")

// DefaultRequestTimeout bounds one planning request end to end; a single
// request may run several LLM rounds and tool calls.
const DefaultRequestTimeout = 3 * time.Minute

// Planner answers a travel question with a markdown plan.
type Planner interface {
	Plan(ctx context.Context, question string) (string, error)
}

// QueryRequest is the POST /query body.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the successful POST /query reply.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the reply body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves the query endpoint and the web form.
type Server struct {
	planner Planner
	addr    string
	timeout time.Duration

	server *http.Server
}

func New(p Planner) *Server {
	return &Server{
		planner: p,
		addr:    ":8080",
		timeout: DefaultRequestTimeout,
	}
}

// WithAddr sets the address to listen on.
func (s *Server) WithAddr(addr string) *Server {
	s.addr = addr
	return s
}

// WithRequestTimeout sets the per-request deadline.
func (s *Server) WithRequestTimeout(timeout time.Duration) *Server {
	s.timeout = timeout
	return s
}

// Handler returns the route table, usable directly in tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

// Start runs the server until Close or a listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	logger.KV(xlog.INFO, "status", "listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Close shuts the server down.
func (s *Server) Close() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST method is supported", http.StatusMethodNotAllowed)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body, expected {\"question\": string}"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "question must not be empty"})
		return
	}

	// Each request gets its own chat ID; conversations do not persist
	// across requests unless the assistant is configured with a store.
	chatCtx := chatmodel.NewChatContext(chatmodel.NewChatID(), nil)
	ctx := chatmodel.WithChatContext(r.Context(), chatCtx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.planner.Plan(ctx, question)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"chat_id", chatCtx.GetChatID(),
			"err", err.Error(),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to generate a travel plan, please try again"})
		return
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"chat_id", chatCtx.GetChatID(),
		"answer_len", len(answer),
	)
	writeJSON(w, http.StatusOK, QueryResponse{Answer: answer})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Only GET method is supported", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
