package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"go.uber.org/zap"
)

const DefaultBaseURL = "http://localhost:5000"

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether a later attempt could succeed.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client talks to the trading backend's JSON API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) sendRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			Body:       body,
		}
	}
	return body, nil
}

// errorMessage prefers the backend's {"error": "..."} text over the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return http.StatusText(status)
}

// firstByte returns the first non-space byte of a JSON document.
func firstByte(body []byte) byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func (c *Client) getObject(ctx context.Context, path string, out interface{}) error {
	body, err := c.sendRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	if firstByte(body) != '{' {
		return fmt.Errorf("%s: %w: want object", path, domain.ErrPayloadShape)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", path, domain.ErrPayloadShape, err)
	}
	return nil
}

// FetchOrderbook returns the raw tick list. A non-array body is a payload
// shape error. Elements that cannot be decoded come back as nil so the
// normalizer can drop and log them without failing the whole cycle.
func (c *Client) FetchOrderbook(ctx context.Context) ([]*domain.TickRecord, error) {
	body, err := c.sendRequest(ctx, http.MethodGet, "/api/orderbook")
	if err != nil {
		return nil, err
	}
	if firstByte(body) != '[' {
		return nil, fmt.Errorf("/api/orderbook: %w: want array", domain.ErrPayloadShape)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("/api/orderbook: %w: %v", domain.ErrPayloadShape, err)
	}

	records := make([]*domain.TickRecord, len(raw))
	for i, item := range raw {
		if firstByte(item) != '{' {
			continue
		}
		var rec domain.TickRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Debug("Undecodable orderbook record", zap.Int("index", i), zap.Error(err))
			continue
		}
		records[i] = &rec
	}
	return records, nil
}

func (c *Client) FetchBalances(ctx context.Context) (map[string]domain.Balance, error) {
	var out map[string]domain.Balance
	if err := c.getObject(ctx, "/api/balance", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchPrices(ctx context.Context) (map[string]map[string]domain.PriceQuote, error) {
	var out map[string]map[string]domain.PriceQuote
	if err := c.getObject(ctx, "/api/prices", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchTime(ctx context.Context) (*domain.ServerTime, error) {
	var out domain.ServerTime
	if err := c.getObject(ctx, "/api/current_time", &out); err != nil {
		return nil, err
	}
	if out.FormattedTime == "" {
		return nil, fmt.Errorf("/api/current_time: %w: formatted_time missing", domain.ErrPayloadShape)
	}
	return &out, nil
}

func (c *Client) FetchStatus(ctx context.Context) (*domain.SystemStatus, error) {
	var out domain.SystemStatus
	if err := c.getObject(ctx, "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) tradingCommand(ctx context.Context, method, path string) (*domain.TradingStatus, error) {
	body, err := c.sendRequest(ctx, method, path)
	if err != nil {
		return nil, err
	}
	var out domain.TradingStatus
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrPayloadShape, err)
	}
	if out.Status == "not_initialized" {
		return &out, domain.ErrNotInitialized
	}
	return &out, nil
}

func (c *Client) StartTrading(ctx context.Context) (*domain.TradingStatus, error) {
	return c.tradingCommand(ctx, http.MethodPost, "/api/trading/start")
}

func (c *Client) StopTrading(ctx context.Context) (*domain.TradingStatus, error) {
	return c.tradingCommand(ctx, http.MethodPost, "/api/trading/stop")
}

func (c *Client) TradingStatus(ctx context.Context) (*domain.TradingStatus, error) {
	return c.tradingCommand(ctx, http.MethodGet, "/api/trading/status")
}
