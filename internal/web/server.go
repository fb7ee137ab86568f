package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/usecase"
	"go.uber.org/zap"
)

// FeedControl is the part of a poll feed the server exposes.
type FeedControl interface {
	Name() string
	Refresh() bool
	State() usecase.FeedState
	Retries() int
	Initializing() bool
}

type Server struct {
	router       *http.ServeMux
	server       *http.Server
	hub          *Hub
	backend      domain.Backend
	journal      domain.GapJournal
	feeds        map[string]FeedControl
	feedOrder    []string
	historyLimit int
	started      time.Time
	logger       *zap.Logger
}

// NewServer builds the dashboard server. journal may be nil when the gap
// journal is disabled.
func NewServer(
	port int,
	hub *Hub,
	backend domain.Backend,
	journal domain.GapJournal,
	feeds []FeedControl,
	historyLimit int,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = 100
	}
	s := &Server{
		router:       http.NewServeMux(),
		hub:          hub,
		backend:      backend,
		journal:      journal,
		feeds:        make(map[string]FeedControl, len(feeds)),
		historyLimit: historyLimit,
		started:      time.Now(),
		logger:       logger,
	}
	for _, f := range feeds {
		s.feeds[f.Name()] = f
		s.feedOrder = append(s.feedOrder, f.Name())
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Dashboard
	s.router.HandleFunc("GET /{$}", s.handleDashboard)
	s.router.HandleFunc("GET /ws", s.hub.ServeWS)

	// Board
	s.router.HandleFunc("GET /api/board/{region}", s.handleBoard)
	s.router.HandleFunc("POST /api/refresh/{feed}", s.handleRefresh)

	// Journal
	s.router.HandleFunc("GET /api/gaps/history", s.handleGapHistory)

	// Trading passthrough
	s.router.HandleFunc("POST /trading/start", s.handleStartTrading)
	s.router.HandleFunc("POST /trading/stop", s.handleStopTrading)
	s.router.HandleFunc("GET /trading/status", s.handleTradingStatus)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.server.Shutdown(ctx)
}
