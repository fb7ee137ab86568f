package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/render"
	"github.com/vitos/crypto_gap_board/internal/usecase"
)

type stubBackend struct {
	domain.Backend
	startErr error
	calls    []string
}

func (b *stubBackend) StartTrading(ctx context.Context) (*domain.TradingStatus, error) {
	b.calls = append(b.calls, "start")
	if b.startErr != nil {
		return nil, b.startErr
	}
	return &domain.TradingStatus{Status: "success", Message: "started"}, nil
}

func (b *stubBackend) StopTrading(ctx context.Context) (*domain.TradingStatus, error) {
	b.calls = append(b.calls, "stop")
	return &domain.TradingStatus{Status: "success", Message: "stopped"}, nil
}

func (b *stubBackend) TradingStatus(ctx context.Context) (*domain.TradingStatus, error) {
	b.calls = append(b.calls, "status")
	return &domain.TradingStatus{Status: "running"}, nil
}

type stubFeed struct {
	name    string
	busy    bool
	refresh int
}

func (f *stubFeed) Name() string             { return f.name }
func (f *stubFeed) State() usecase.FeedState { return usecase.FeedIdle }
func (f *stubFeed) Retries() int             { return 0 }
func (f *stubFeed) Initializing() bool       { return false }

func (f *stubFeed) Refresh() bool {
	if f.busy {
		return false
	}
	f.refresh++
	return true
}

type stubJournal struct {
	rows      []*domain.GapObservation
	err       error
	gotSymbol string
	gotLimit  int
}

func (j *stubJournal) SaveGap(ctx context.Context, obs *domain.GapObservation) error { return nil }

func (j *stubJournal) ListGaps(ctx context.Context, symbol string, limit int) ([]*domain.GapObservation, error) {
	j.gotSymbol, j.gotLimit = symbol, limit
	return j.rows, j.err
}

func (j *stubJournal) PruneGaps(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

type testEnv struct {
	server  *Server
	hub     *Hub
	backend *stubBackend
	feed    *stubFeed
	journal *stubJournal
}

func newTestEnv(t *testing.T, withJournal bool) *testEnv {
	t.Helper()
	env := &testEnv{
		hub:     NewHub(nil),
		backend: &stubBackend{},
		feed:    &stubFeed{name: "orderbook"},
		journal: &stubJournal{},
	}
	var journal domain.GapJournal
	if withJournal {
		journal = env.journal
	}
	env.server = NewServer(0, env.hub, env.backend, journal, []FeedControl{env.feed}, 50, nil)
	return env
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Dashboard(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="region-orderbook"`)
	assert.Contains(t, rec.Body.String(), "/ws")
}

func TestServer_Board(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodGet, "/api/board/orderbook")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, env.hub.Draw(render.ErrorFrame(render.RegionOrderbook, render.MsgOrderbookFailed)))
	rec = env.do(http.MethodGet, "/api/board/orderbook")
	require.Equal(t, http.StatusOK, rec.Code)

	var frame render.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frame))
	assert.Equal(t, render.KindError, frame.Kind)
	assert.Equal(t, render.MsgOrderbookFailed, frame.Error.Message)
}

func TestServer_Refresh(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/refresh/orderbook")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, env.feed.refresh)

	env.feed.busy = true
	rec = env.do(http.MethodPost, "/api/refresh/orderbook")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/api/refresh/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/refresh/orderbook")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_GapHistory(t *testing.T) {
	env := newTestEnv(t, true)
	env.journal.rows = []*domain.GapObservation{{ID: "a", Pair: "MEXC-Bitget", Symbol: "XRP/USDT", PercentGap: 0.12}}

	rec := env.do(http.MethodGet, "/api/gaps/history?symbol=XRP/USDT&limit=5000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "XRP/USDT", env.journal.gotSymbol)
	assert.Equal(t, maxHistoryLimit, env.journal.gotLimit)

	var rows []domain.GapObservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 0.12, rows[0].PercentGap)

	rec = env.do(http.MethodGet, "/api/gaps/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, env.journal.gotLimit)
	assert.Empty(t, env.journal.gotSymbol)

	rec = env.do(http.MethodGet, "/api/gaps/history?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.journal.err = errors.New("db locked")
	rec = env.do(http.MethodGet, "/api/gaps/history")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_GapHistoryDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodGet, "/api/gaps/history")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_TradingPassthrough(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/trading/start")
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.TradingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "started", status.Message)

	rec = env.do(http.MethodPost, "/trading/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/trading/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"start", "stop", "status"}, env.backend.calls)

	env.backend.startErr = domain.ErrNotInitialized
	rec = env.do(http.MethodPost, "/trading/start")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env.backend.startErr = errors.New("connection refused")
	rec = env.do(http.MethodPost, "/trading/start")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "error", status.Status)
}

func TestServer_Status(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dev", resp.Version)
	require.Len(t, resp.Feeds, 1)
	assert.Equal(t, "orderbook", resp.Feeds[0].Name)
	assert.Equal(t, usecase.FeedIdle.String(), resp.Feeds[0].State)
}
