package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vitos/crypto_gap_board/internal/render"
	"go.uber.org/zap"
)

const maxHistoryLimit = 1000

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	region := render.Region(r.PathValue("region"))
	frame, ok := s.hub.Last(region)
	if !ok {
		http.Error(w, "no frame for region "+string(region), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("feed")
	feed, ok := s.feeds[name]
	if !ok {
		http.Error(w, "unknown feed "+name, http.StatusNotFound)
		return
	}
	if !feed.Refresh() {
		http.Error(w, "refresh already in flight", http.StatusConflict)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"feed": name, "status": "started"})
}

func (s *Server) handleGapHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "gap journal disabled", http.StatusServiceUnavailable)
		return
	}

	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	rows, err := s.journal.ListGaps(r.Context(), r.URL.Query().Get("symbol"), limit)
	if err != nil {
		s.logger.Error("Failed to list gaps", zap.Error(err))
		http.Error(w, "Failed to list gaps", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}
