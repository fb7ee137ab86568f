package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/render"
)

// MockBackend implements domain.Backend
type MockBackend struct {
	mu sync.Mutex

	Orderbook    []*domain.TickRecord
	OrderbookErr error
	Balances     map[string]domain.Balance
	BalancesErr  error
	Prices       map[string]map[string]domain.PriceQuote
	PricesErr    error
	Time         *domain.ServerTime
	TimeErr      error
	Status       *domain.SystemStatus
	StatusErr    error

	OrderbookCalls int
}

func (m *MockBackend) SetOrderbook(records []*domain.TickRecord, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orderbook = records
	m.OrderbookErr = err
}

func (m *MockBackend) FetchOrderbook(ctx context.Context) ([]*domain.TickRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderbookCalls++
	return m.Orderbook, m.OrderbookErr
}

func (m *MockBackend) FetchBalances(ctx context.Context) (map[string]domain.Balance, error) {
	return m.Balances, m.BalancesErr
}

func (m *MockBackend) FetchPrices(ctx context.Context) (map[string]map[string]domain.PriceQuote, error) {
	return m.Prices, m.PricesErr
}

func (m *MockBackend) FetchTime(ctx context.Context) (*domain.ServerTime, error) {
	return m.Time, m.TimeErr
}

func (m *MockBackend) FetchStatus(ctx context.Context) (*domain.SystemStatus, error) {
	return m.Status, m.StatusErr
}

func (m *MockBackend) StartTrading(ctx context.Context) (*domain.TradingStatus, error) {
	return &domain.TradingStatus{Status: "success"}, nil
}

func (m *MockBackend) StopTrading(ctx context.Context) (*domain.TradingStatus, error) {
	return &domain.TradingStatus{Status: "success"}, nil
}

func (m *MockBackend) TradingStatus(ctx context.Context) (*domain.TradingStatus, error) {
	return &domain.TradingStatus{Status: "running"}, nil
}

// RecordingSink collects scheduled frames.
type RecordingSink struct {
	mu     sync.Mutex
	Frames []render.Frame
}

func (s *RecordingSink) Schedule(frame render.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Frames = append(s.Frames, frame)
}

func (s *RecordingSink) Last() render.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Frames) == 0 {
		return render.Frame{}
	}
	return s.Frames[len(s.Frames)-1]
}

func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Frames)
}

// MockNotifier implements domain.Notifier
type MockNotifier struct {
	mu       sync.Mutex
	Disabled bool
	Err      error
	Messages []string
}

func (m *MockNotifier) Enabled() bool { return !m.Disabled }

func (m *MockNotifier) Send(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, message)
	return nil
}

func (m *MockNotifier) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages...)
}

// MockJournal implements domain.GapJournal
type MockJournal struct {
	mu      sync.Mutex
	Rows    []*domain.GapObservation
	SaveErr error
	Cutoff  time.Time
}

func (m *MockJournal) SaveGap(ctx context.Context, obs *domain.GapObservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Rows = append(m.Rows, obs)
	return nil
}

func (m *MockJournal) ListGaps(ctx context.Context, symbol string, limit int) ([]*domain.GapObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rows, nil
}

func (m *MockJournal) PruneGaps(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cutoff = olderThan
	var kept []*domain.GapObservation
	var removed int64
	for _, r := range m.Rows {
		if r.ObservedAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.Rows = kept
	return removed, nil
}
