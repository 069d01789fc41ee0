// Package server builds the HTTP surface of the chat API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	chathandler "gochat/internal/chat/handler"
	"gochat/internal/common"
	"gochat/internal/user"
)

const banner = "chat backend is running"

// HealthChecker reports whether the backing store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a plain function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HTTPServer struct {
	handler http.Handler
	health  HealthChecker
	log     *zap.Logger
}

func NewHTTPServer(
	users *user.Handler,
	chats *chathandler.ChatHandler,
	tokens common.TokenVerifier,
	health HealthChecker,
	log *zap.Logger,
) *HTTPServer {
	s := &HTTPServer{health: health, log: log}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/", s.root).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	api.HandleFunc("/register", users.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", users.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(common.AuthMiddleware(tokens, log))
	protected.HandleFunc("/profile", users.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/chats", chats.ListChats).Methods(http.MethodGet)
	protected.HandleFunc("/chats", chats.CreateChat).Methods(http.MethodPost)
	protected.HandleFunc("/chats/{chatId}/messages", chats.GetMessages).Methods(http.MethodGet)
	protected.HandleFunc("/chats/{chatId}/messages", chats.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/chats/{chatId}/messages/{messageId}", chats.DeleteMessage).Methods(http.MethodDelete)

	s.handler = CORS(RequestLogger(log)(router))
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *HTTPServer) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(banner))
}

func (s *HTTPServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		common.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusNotFound, common.MessageResponse{Msg: "route not found"})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusMethodNotAllowed, common.MessageResponse{Msg: "method not allowed"})
}
