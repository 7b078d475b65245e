package rest

import (
	"bufio"
	"errors"
	"log/slog"
	"maturitymap/internal/config"
	"maturitymap/internal/logging"
	"maturitymap/internal/metrics"
	"maturitymap/internal/service"
	"maturitymap/internal/transport/rest/handler"
	"maturitymap/internal/transport/rest/middleware"
	"maturitymap/internal/transport/ws"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Container holds all dependencies for the router
type Container struct {
	Server        config.ServerConfig
	AuthService   *service.AuthService
	Sessions      *service.SessionService
	ReportService *service.ReportService
	ChatService   *service.ChatService
	WSHub         *ws.Hub
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	logger := logging.OrDiscard(c.Logger)

	catalogHandler := handler.NewCatalogHandler()
	clientHandler := handler.NewClientHandler(c.Sessions, c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.Sessions, c.ReportService, c.ChatService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Sessions, logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware(c.Server))
	r.Use(requestLogger(logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/catalog", catalogHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/clients", clientHandler.Open).Methods("POST", "OPTIONS")
	v1.HandleFunc("/clients/{clientId}/state", clientHandler.State).Methods("GET", "OPTIONS")
	v1.HandleFunc("/clients/{clientId}/login", clientHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket (token in query param)
	v1.HandleFunc("/ws/clients/{clientId}", wsHandler.ClientWS).Methods("GET")

	// Session routes (require session token)
	sessionRoutes := v1.PathPrefix("/session").Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("/answers/{questionId:[0-9]+}", sessionHandler.Answer).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/previous", sessionHandler.Previous).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/report", sessionHandler.Report).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/chat", sessionHandler.ChatIntro).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/chat", sessionHandler.Chat).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/start-over", sessionHandler.StartOver).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/history", sessionHandler.History).Methods("GET", "OPTIONS")

	return otelhttp.NewHandler(r, "maturitymap")
}

func corsMiddleware(cfg config.ServerConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes WebSocket upgrades through to the underlying writer
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func requestLogger(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
