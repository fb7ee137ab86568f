package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a lenient numeric field. The backend sends balances as JSON
// numbers, numeric strings or null depending on the exchange.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

func (a Amount) Float() float64 { return float64(a) }

// Balance is one exchange account summary.
type Balance struct {
	USDT       Amount `json:"USDT"`
	Free       Amount `json:"free"`
	Used       Amount `json:"used"`
	DailyPnL   Amount `json:"dailyPnL"`
	MonthlyPnL Amount `json:"monthlyPnL"`
}

// PriceQuote is a single last price.
type PriceQuote struct {
	Price float64 `json:"price"`
}

// SystemStatus reports whether the backend finished its start-up sequence.
type SystemStatus struct {
	Initialized bool     `json:"initialized"`
	Status      string   `json:"status"`
	Details     []string `json:"details"`
}

type ServerTime struct {
	FormattedTime string `json:"formatted_time"`
	Timestamp     int64  `json:"timestamp"`
	Timezone      string `json:"timezone"`
}

// TradingStatus is the reply of the trading command endpoints.
type TradingStatus struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
