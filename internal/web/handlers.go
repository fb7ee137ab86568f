package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/vitos/crypto_gap_board/internal/render"
	"github.com/vitos/crypto_gap_board/internal/version"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type feedStatus struct {
	Name         string `json:"name"`
	State        string `json:"state"`
	Retries      int    `json:"retries"`
	Initializing bool   `json:"initializing"`
}

type statusResponse struct {
	Version   string       `json:"version"`
	Commit    string       `json:"commit"`
	BuildTime string       `json:"build_time"`
	Uptime    string       `json:"uptime"`
	Clients   int          `json:"clients"`
	Feeds     []feedStatus `json:"feeds"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Version": version.Version,
		"Regions": []render.Region{
			render.RegionClock,
			render.RegionOrderbook,
			render.RegionSummary,
			render.RegionPrices,
			render.RegionBalances,
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildTime: version.BuildTime,
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
		Clients:   s.hub.Clients(),
		Feeds:     make([]feedStatus, 0, len(s.feedOrder)),
	}
	for _, name := range s.feedOrder {
		f := s.feeds[name]
		resp.Feeds = append(resp.Feeds, feedStatus{
			Name:         name,
			State:        f.State().String(),
			Retries:      f.Retries(),
			Initializing: f.Initializing(),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}
