package render

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
)

// Highlighter reports the price change class for a rendered price.
type Highlighter interface {
	Observe(exchange, symbol string, price float64) string
}

// DepthRow is one orderbook level in local currency.
type DepthRow struct {
	Amount     string `json:"amount"`
	LocalPrice string `json:"local_price"`
	LocalTotal string `json:"local_total"`
}

// ExchangeCard is one exchange's book for one symbol.
type ExchangeCard struct {
	Exchange     string     `json:"exchange"`
	Symbol       string     `json:"symbol"`
	BaseCurrency string     `json:"base_currency"`
	Icon         string     `json:"icon"`
	Asks         []DepthRow `json:"asks"` // highest price first
	Bids         []DepthRow `json:"bids"`
	CurrentPrice string     `json:"current_price,omitempty"`
	Highlight    string     `json:"highlight,omitempty"`
	GapText      string     `json:"gap_text"`
	GapClass     string     `json:"gap_class,omitempty"`
}

// CardPair is the reference and comparison card of a pair for one symbol.
type CardPair struct {
	Pair       string       `json:"pair"`
	Symbol     string       `json:"symbol"`
	Reference  ExchangeCard `json:"reference"`
	Comparison ExchangeCard `json:"comparison"`
}

// GapRow is one line of the spread summary above the cards.
type GapRow struct {
	Pair            string `json:"pair"`
	Symbol          string `json:"symbol"`
	Percent         string `json:"percent"`
	Absolute        string `json:"absolute"`
	Class           string `json:"class"`
	ReferenceDepth  string `json:"reference_depth,omitempty"`
	ComparisonDepth string `json:"comparison_depth,omitempty"`
}

type OrderbookView struct {
	Gaps  []GapRow   `json:"gaps"`
	Cards []CardPair `json:"cards"`
}

type SummaryRow struct {
	Label           string `json:"label"`
	Badge           string `json:"badge"`
	BadgeClass      string `json:"badge_class"`
	ComparisonPrice string `json:"comparison_price"`
	Percent         string `json:"percent"`
	Class           string `json:"class"`
	ComparisonLocal string `json:"comparison_local"`
	Status          string `json:"status"`
}

type SummaryView struct {
	Rows []SummaryRow `json:"rows"`
}

type BalanceRow struct {
	Exchange     string `json:"exchange"`
	USDT         string `json:"usdt"`
	Local        string `json:"local"`
	Free         string `json:"free"`
	Used         string `json:"used"`
	DailyPnL     string `json:"daily_pnl"`
	DailyClass   string `json:"daily_class"`
	MonthlyPnL   string `json:"monthly_pnl"`
	MonthlyClass string `json:"monthly_class"`
}

type BalanceView struct {
	Rows []BalanceRow `json:"rows"`
}

type PriceRow struct {
	Symbol     string  `json:"symbol"`
	Reference  string  `json:"reference"`
	Comparison string  `json:"comparison"`
	Gap        float64 `json:"gap"`
	Badge      string  `json:"badge"`
	BadgeClass string  `json:"badge_class"`
}

type PriceView struct {
	Rows []PriceRow `json:"rows"`
}

type ClockView struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback,omitempty"`
}

type StatusDetail struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type StatusView struct {
	Title   string         `json:"title"`
	Status  string         `json:"status"`
	Details []StatusDetail `json:"details,omitempty"`
	Icon    string         `json:"icon"`
}

type ErrorView struct {
	Message string `json:"message"`
	Icon    string `json:"icon"`
}

// WideSpread is the |gap| from which badges switch to the info colour.
const WideSpread = 0.5

func BadgeClass(gap float64) string {
	if math.Abs(gap) >= WideSpread {
		return "bg-info"
	}
	return "bg-success"
}

// BaseCurrency returns "XRP" for "XRP/USDT".
func BaseCurrency(symbol string) string {
	base, _, _ := strings.Cut(symbol, "/")
	return base
}

// AmountDecimals is 4 for XRP books and 5 for everything else.
func AmountDecimals(symbol string) int {
	if BaseCurrency(symbol) == "XRP" {
		return 4
	}
	return 5
}

func exchangeIcon(exchange string) string {
	switch exchange {
	case "MEXC Futures":
		return "chart-line"
	case "Bitget Futures":
		return "chart-bar"
	case "Gate.io Futures":
		return "chart-pie"
	default:
		return "exchange-alt"
	}
}

func (f *Formatter) depthRows(levels []domain.DepthLevel, decimals int, reverse bool) []DepthRow {
	rows := make([]DepthRow, 0, len(levels))
	for _, lvl := range levels {
		local := lvl.LocalPrice
		if local == 0 {
			local = f.ToLocal(lvl.Price)
		}
		rows = append(rows, DepthRow{
			Amount:     f.Number(lvl.Amount, decimals),
			LocalPrice: f.Number(local, 0) + MsgWon,
			LocalTotal: f.Number(local*lvl.Amount, 0) + MsgWon,
		})
	}
	if reverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows
}

func (f *Formatter) card(rec domain.TickRecord, highlight string) ExchangeCard {
	decimals := AmountDecimals(rec.Symbol)
	card := ExchangeCard{
		Exchange:     rec.Exchange,
		Symbol:       rec.Symbol,
		BaseCurrency: BaseCurrency(rec.Symbol),
		Icon:         exchangeIcon(rec.Exchange),
		Asks:         f.depthRows(rec.Asks, decimals, true),
		Bids:         f.depthRows(rec.Bids, decimals, false),
		Highlight:    highlight,
	}
	if rec.HasPrice() {
		local := f.ToLocal(rec.Price())
		if rec.LastPriceLocal != nil {
			local = *rec.LastPriceLocal
		}
		card.CurrentPrice = MsgCurrentPrice + ": " + f.Number(local, 0) + MsgWon
	}
	return card
}

func (f *Formatter) gapRow(gap domain.GapResult) GapRow {
	row := GapRow{
		Pair:     gap.Pair,
		Symbol:   gap.Symbol,
		Percent:  f.Percent(gap.PercentGap),
		Absolute: f.Signed(gap.AbsoluteGap, 6),
		Class:    GainClass(gap.PercentGap),
	}
	if gap.Notional != nil {
		row.ReferenceDepth = f.Local(gap.Notional.Reference) + MsgWon
		row.ComparisonDepth = f.Local(gap.Notional.Comparison) + MsgWon
	}
	return row
}

// BuildOrderbookView lays out the gap summary and one card pair per
// computed gap. Each (exchange, symbol) price is observed by hl exactly once
// per build so an exchange shared by two pairs highlights consistently.
func BuildOrderbookView(snapshot domain.SymbolSnapshot, gaps []domain.GapResult, hl Highlighter, f *Formatter) *OrderbookView {
	highlights := make(map[string]string)
	highlightFor := func(rec domain.TickRecord) string {
		key := rec.Exchange + "|" + rec.Symbol
		if h, ok := highlights[key]; ok {
			return h
		}
		h := ""
		if hl != nil && rec.HasPrice() {
			h = hl.Observe(rec.Exchange, rec.Symbol, rec.Price())
		}
		highlights[key] = h
		return h
	}

	view := &OrderbookView{
		Gaps:  make([]GapRow, 0, len(gaps)),
		Cards: make([]CardPair, 0, len(gaps)),
	}
	for _, gap := range gaps {
		view.Gaps = append(view.Gaps, f.gapRow(gap))

		ref, okRef := snapshot[gap.Symbol][gap.Reference]
		cmp, okCmp := snapshot[gap.Symbol][gap.Comparison]
		if !okRef || !okCmp {
			continue
		}

		refCard := f.card(ref, highlightFor(ref))
		refCard.GapText = f.Percent(gap.PercentGap) + " (" + f.Signed(gap.AbsoluteGap, 6) + ")"
		refCard.GapClass = GainClass(gap.PercentGap)

		cmpCard := f.card(cmp, highlightFor(cmp))
		cmpCard.GapText = MsgBaseline

		view.Cards = append(view.Cards, CardPair{
			Pair:       gap.Pair,
			Symbol:     gap.Symbol,
			Reference:  refCard,
			Comparison: cmpCard,
		})
	}
	return view
}

// BuildSummaryView renders the compact price table. Rows of the first pair
// are labelled by base currency only; later pairs add the reference
// exchange's short name.
func BuildSummaryView(gaps []domain.GapResult, pairs []domain.ExchangePair, f *Formatter) *SummaryView {
	first := ""
	if len(pairs) > 0 {
		first = pairs[0].Name
	}
	view := &SummaryView{Rows: make([]SummaryRow, 0, len(gaps))}
	for _, gap := range gaps {
		label := BaseCurrency(gap.Symbol)
		if gap.Pair != first {
			short, _, _ := strings.Cut(gap.Pair, "-")
			label += " (" + short + ")"
		}
		view.Rows = append(view.Rows, SummaryRow{
			Label:           label,
			Badge:           f.SpreadBadge(gap.PercentGap),
			BadgeClass:      BadgeClass(gap.PercentGap),
			ComparisonPrice: f.Number(gap.ComparisonPrice, 4) + " USDT",
			Percent:         f.Percent(gap.PercentGap),
			Class:           GainClass(gap.PercentGap),
			ComparisonLocal: f.Local(gap.ComparisonPrice) + " KRW",
			Status:          MsgActive,
		})
	}
	return view
}

// BuildBalanceView renders one row per exchange, sorted by exchange name.
func BuildBalanceView(balances map[string]domain.Balance, f *Formatter) *BalanceView {
	names := make([]string, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	sort.Strings(names)

	view := &BalanceView{Rows: make([]BalanceRow, 0, len(names))}
	for _, name := range names {
		b := balances[name]
		view.Rows = append(view.Rows, BalanceRow{
			Exchange:     name,
			USDT:         f.Number(b.USDT.Float(), 2) + " USDT",
			Local:        f.Local(b.USDT.Float()) + MsgWon,
			Free:         f.Number(b.Free.Float(), 2) + " USDT",
			Used:         f.Number(b.Used.Float(), 2) + " USDT",
			DailyPnL:     f.Percent(b.DailyPnL.Float()),
			DailyClass:   GainClass(b.DailyPnL.Float()),
			MonthlyPnL:   f.Percent(b.MonthlyPnL.Float()),
			MonthlyClass: GainClass(b.MonthlyPnL.Float()),
		})
	}
	return view
}

// BuildPriceView compares reference and comparison quotes for each
// watchlist symbol quoted on both. Order follows the watchlist.
func BuildPriceView(prices map[string]map[string]domain.PriceQuote, watchlist []string, reference, comparison string, f *Formatter) *PriceView {
	view := &PriceView{Rows: make([]PriceRow, 0, len(watchlist))}
	for _, symbol := range watchlist {
		quotes, ok := prices[symbol]
		if !ok {
			continue
		}
		ref, okRef := quotes[reference]
		cmp, okCmp := quotes[comparison]
		if !okRef || !okCmp || ref.Price == 0 || cmp.Price == 0 {
			continue
		}
		gap := (ref.Price - cmp.Price) / cmp.Price * 100
		view.Rows = append(view.Rows, PriceRow{
			Symbol:     symbol,
			Reference:  f.Number(ref.Price, 2),
			Comparison: f.Number(cmp.Price, 2),
			Gap:        gap,
			Badge:      f.SpreadBadge(gap),
			BadgeClass: BadgeClass(gap),
		})
	}
	return view
}

// BuildClockView renders "현재 시간: 15:04:05".
func BuildClockView(formatted string, fallback bool) *ClockView {
	return &ClockView{Text: MsgCurrentTime + ": " + formatted, Fallback: fallback}
}

// LocalClock formats now in loc, used when the backend clock is unreachable.
func LocalClock(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format("15:04:05")
}

func BuildStatusView(status *domain.SystemStatus) *StatusView {
	view := &StatusView{Title: MsgInitializing, Icon: IconSpin}
	if status == nil {
		return view
	}
	view.Status = status.Status
	for _, d := range status.Details {
		view.Details = append(view.Details, StatusDetail{Text: d, Done: strings.Contains(d, "✅")})
	}
	return view
}
