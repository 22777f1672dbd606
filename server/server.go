package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
	"github.com/shoptalk-ai/shoptalk/catalog"
	"github.com/shoptalk-ai/shoptalk/chat"
)

// Responder is the assistant boundary: one reply per user turn.
type Responder interface {
	Converse(ctx context.Context, message string, history []contractx.Turn) (string, error)
}

// ConversationStore is the durable turn log the API reads and appends.
type ConversationStore interface {
	CreateUser(ctx context.Context, username, email string) (*chat.User, error)
	GetUser(ctx context.Context, id int64) (*chat.User, error)
	CreateSession(ctx context.Context, userID int64, name string) (*chat.Session, error)
	GetSession(ctx context.Context, id int64) (*chat.Session, error)
	SessionsForUser(ctx context.Context, userID int64) ([]chat.Session, error)
	AppendMessage(ctx context.Context, sessionID int64, role contractx.Role, content string) (*chat.Message, error)
	MessagesForSession(ctx context.Context, sessionID int64) ([]chat.Message, error)
	History(ctx context.Context, sessionID int64) ([]contractx.Turn, error)
}

// OrderReader serves the order-detail join.
type OrderReader interface {
	OrderDetails(ctx context.Context, orderID int64) ([]catalog.OrderLine, error)
}

type Config struct {
	Addr         string        `envconfig:"ADDR" split_words:"true" default:":8000"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
}

type Server struct {
	store     ConversationStore
	responder Responder
	orders    OrderReader

	httpServer *http.Server
}

func New(cfg Config, store ConversationStore, responder Responder, orders OrderReader) (*Server, error) {
	if store == nil {
		return nil, errors.New("conversation store is required")
	}
	if responder == nil {
		return nil, errors.New("responder is required")
	}
	if orders == nil {
		return nil, errors.New("order reader is required")
	}

	s := &Server{
		store:     store,
		responder: responder,
		orders:    orders,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      requestLog(s.routes()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /users/{id}/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /users/{id}/sessions", s.handleListSessions)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/messages", s.handleCreateMessage)
	mux.HandleFunc("GET /sessions/{id}/messages", s.handleListMessages)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /orders/{id}", s.handleGetOrder)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("chat api listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
