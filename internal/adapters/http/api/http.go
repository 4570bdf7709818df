// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/nbapicks/internal/adapters/http/swagger"
	"github.com/okian/nbapicks/internal/adapters/repository"
	service "github.com/okian/nbapicks/internal/app"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/pkg/logger"
)

// UserHeader carries the caller identity set by the authenticating edge.
const UserHeader = "X-User-ID"

const (
	defaultRequestTimeout = 60 * time.Second
	maxBodyBytes          = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Recommendations(ctx context.Context, date string) (model.Recommendations, error)
	AnalyzeGame(ctx context.Context, gameID, date string) (model.AnalysisResult, error)
	Games(ctx context.Context, date string) (service.GamesResult, error)
	Odds(ctx context.Context) service.OddsResult
	RecentForm(ctx context.Context, teamID string) (service.RecentFormResult, error)

	Authorize(ctx context.Context, userID string, f service.Feature) error
	SubscriptionStatus(ctx context.Context, userID string) (service.SubscriptionStatus, error)
	ActivateSubscription(ctx context.Context, userID string) (service.SubscriptionStatus, error)

	ListHistory(ctx context.Context, userID string, limit int) ([]repository.HistoryEntry, error)
	SaveHistory(ctx context.Context, userID, date string, payload json.RawMessage) (repository.HistoryEntry, error)
	DeleteHistory(ctx context.Context, userID, id string) error
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAdmin exposes the subscription activation route.
func WithAdmin(enabled bool) Option {
	return func(s *Server) { s.admin = enabled }
}

// WithCORSOrigins sets allowed browser origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets a custom logger for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	picksHandler   *PicksHandler
	boardHandler   *BoardHandler
	accountHandler *AccountHandler

	admin   bool
	origins []string
	timeout time.Duration
	logger  logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		picksHandler:   NewPicksHandler(deps),
		boardHandler:   NewBoardHandler(deps),
		accountHandler: NewAccountHandler(deps),
		origins:        []string{"*"},
		timeout:        defaultRequestTimeout,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler with middleware and all routes attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", UserHeader},
		AllowCredentials: !containsWildcard(s.origins),
		MaxAge:           300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleHealth)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	swagger.Register(r)

	r.Route("/api", func(r chi.Router) {
		r.Get("/games", MetricsMiddleware(s.boardHandler.HandleGames, "games"))
		r.Get("/odds", MetricsMiddleware(s.boardHandler.HandleOdds, "odds"))
		r.Get("/last10", MetricsMiddleware(s.boardHandler.HandleRecentForm, "last10"))

		r.Get("/recommendations", MetricsMiddleware(s.picksHandler.HandleRecommendations, "recommendations"))
		r.Get("/top3", MetricsMiddleware(s.picksHandler.HandleRecommendations, "recommendations"))
		r.Get("/pick", MetricsMiddleware(s.picksHandler.HandlePick, "pick"))
		r.Post("/pick", MetricsMiddleware(s.picksHandler.HandlePick, "pick"))

		r.Get("/subscription/status", MetricsMiddleware(s.accountHandler.HandleSubscriptionStatus, "subscription"))
		if s.admin {
			r.Post("/admin/subscription/activate", MetricsMiddleware(s.accountHandler.HandleActivate, "activate"))
		}

		r.Get("/history", MetricsMiddleware(s.accountHandler.HandleListHistory, "history"))
		r.Post("/history", MetricsMiddleware(s.accountHandler.HandleSaveHistory, "history"))
		r.Delete("/history", MetricsMiddleware(s.accountHandler.HandleDeleteHistory, "history"))
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "request",
			logger.String("requestId", chimiddleware.GetReqID(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("took", time.Since(start)),
		)
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

type envelope struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Result: result})
}

func writeError(w http.ResponseWriter, err error) {
	status, code, msg := classify(err)
	writeJSON(w, status, envelope{OK: false, Error: msg, Code: code})
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
