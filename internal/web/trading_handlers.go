package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"go.uber.org/zap"
)

// Trading commands are passed through to the backend unchanged.

func (s *Server) handleStartTrading(w http.ResponseWriter, r *http.Request) {
	s.proxyTrading(w, r, "start", s.backend.StartTrading)
}

func (s *Server) handleStopTrading(w http.ResponseWriter, r *http.Request) {
	s.proxyTrading(w, r, "stop", s.backend.StopTrading)
}

func (s *Server) handleTradingStatus(w http.ResponseWriter, r *http.Request) {
	s.proxyTrading(w, r, "status", s.backend.TradingStatus)
}

func (s *Server) proxyTrading(w http.ResponseWriter, r *http.Request, command string, call func(context.Context) (*domain.TradingStatus, error)) {
	status, err := call(r.Context())
	if err != nil {
		s.logger.Error("Trading command failed", zap.String("command", command), zap.Error(err))
		code := http.StatusBadGateway
		if errors.Is(err, domain.ErrNotInitialized) {
			code = http.StatusServiceUnavailable
		}
		s.writeJSON(w, code, domain.TradingStatus{Status: "error", Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}
