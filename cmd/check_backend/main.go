package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/vitos/crypto_gap_board/internal/config"
	"github.com/vitos/crypto_gap_board/internal/infrastructure/backend"
	"github.com/vitos/crypto_gap_board/internal/render"
	"github.com/vitos/crypto_gap_board/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	baseURL := flag.String("url", "", "backend base URL, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Config not loaded (%v), using defaults\n", err)
		cfg = config.Default()
	}
	if *baseURL != "" {
		cfg.Backend.BaseURL = *baseURL
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil)
	formatter := render.NewFormatter(cfg.Display.Locale, cfg.Display.LocalRate)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Checking backend %s...\n", cfg.Backend.BaseURL)
	status, err := client.FetchStatus(ctx)
	if err != nil {
		fmt.Printf("Status: error: %v\n", err)
	} else {
		fmt.Printf("Status: initialized=%v %s\n", status.Initialized, status.Status)
		for _, d := range status.Details {
			fmt.Printf("  %s\n", d)
		}
	}

	if trading, err := client.TradingStatus(ctx); err != nil {
		fmt.Printf("Trading: error: %v\n", err)
	} else {
		fmt.Printf("Trading: %s %s\n", trading.Status, trading.Message)
	}

	fmt.Println("\nFetching orderbook snapshot...")
	records, err := client.FetchOrderbook(ctx)
	if err != nil {
		log.Fatalf("Error fetching orderbook: %v", err)
	}

	snapshot := usecase.NewNormalizer(nil).Normalize(records)
	fmt.Printf("Records: %d received, %d symbols\n", len(records), len(snapshot))
	for _, symbol := range snapshot.Symbols() {
		for _, exchange := range snapshot.Exchanges(symbol) {
			rec := snapshot[symbol][exchange]
			last := "null"
			if rec.HasPrice() {
				last = formatter.Number(rec.Price(), 6)
			}
			fmt.Printf("  %-10s %-16s last=%s asks=%d bids=%d\n", symbol, exchange, last, len(rec.Asks), len(rec.Bids))
		}
	}

	gaps := usecase.ComputePairs(snapshot, cfg.Pairs)
	if len(gaps) == 0 {
		log.Fatalf("No gaps computed for %d configured pairs", len(cfg.Pairs))
	}

	fmt.Println("\nGaps:")
	for _, gap := range gaps {
		fmt.Printf("  %-12s %-10s %s (%s)", gap.Pair, gap.Symbol,
			formatter.Percent(gap.PercentGap), formatter.Signed(gap.AbsoluteGap, 6))
		ref := snapshot[gap.Symbol][gap.Reference]
		cmp := snapshot[gap.Symbol][gap.Comparison]
		if amount, ok := usecase.TradableAmount(ref, cmp); ok {
			fmt.Printf(" tradable=%s USDT (%s%s)", formatter.Number(amount, 2), formatter.Local(amount), render.MsgWon)
		}
		fmt.Println()
	}
}
