package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mum4k/termdash"
	"github.com/mum4k/termdash/cell"
	"github.com/mum4k/termdash/container"
	"github.com/mum4k/termdash/container/grid"
	"github.com/mum4k/termdash/keyboard"
	"github.com/mum4k/termdash/linestyle"
	"github.com/mum4k/termdash/terminal/tcell"
	"github.com/mum4k/termdash/terminal/terminalapi"
	"github.com/mum4k/termdash/widgets/text"
	"github.com/vitos/crypto_gap_board/internal/render"
	"github.com/vitos/crypto_gap_board/internal/usecase"
)

const redrawInterval = 100 * time.Millisecond

type Color int

const (
	ColorNone Color = iota
	ColorGreen
	ColorRed
	ColorYellow
	ColorCyan
)

// Line is one row of a terminal region. Flash marks price highlights that
// fade back to the plain colour.
type Line struct {
	Text  string
	Color Color
	Flash bool
}

var regionOrder = []render.Region{
	render.RegionClock,
	render.RegionOrderbook,
	render.RegionSummary,
	render.RegionPrices,
	render.RegionBalances,
}

var regionTitles = map[render.Region]string{
	render.RegionClock:     " 시간 ",
	render.RegionOrderbook: " 호가 ",
	render.RegionSummary:   " 가격차이 ",
	render.RegionPrices:    " 시세 ",
	render.RegionBalances:  " 잔고 ",
}

// TerminalBoard draws frames into termdash text widgets, one per region.
type TerminalBoard struct {
	flash   time.Duration
	widgets map[render.Region]*text.Text

	mu         sync.Mutex
	lines      map[render.Region][]Line
	generation map[render.Region]uint64
}

func NewTerminalBoard(flash time.Duration) (*TerminalBoard, error) {
	b := &TerminalBoard{
		flash:      flash,
		widgets:    make(map[render.Region]*text.Text, len(regionOrder)),
		lines:      make(map[render.Region][]Line),
		generation: make(map[render.Region]uint64),
	}
	for _, region := range regionOrder {
		w, err := text.New(text.WrapAtWords())
		if err != nil {
			return nil, fmt.Errorf("create text widget for %s: %w", region, err)
		}
		b.widgets[region] = w
	}
	return b, nil
}

// Draw replaces the region's widget content with the frame.
func (b *TerminalBoard) Draw(frame render.Frame) error {
	w, ok := b.widgets[frame.Region]
	if !ok {
		return fmt.Errorf("unknown region %q", frame.Region)
	}
	lines := FormatFrame(frame)

	b.mu.Lock()
	b.generation[frame.Region]++
	gen := b.generation[frame.Region]
	b.lines[frame.Region] = lines
	b.mu.Unlock()

	if err := writeLines(w, lines, true); err != nil {
		return err
	}

	if b.flash > 0 && hasFlash(lines) {
		time.AfterFunc(b.flash, func() { b.fade(frame.Region, gen) })
	}
	return nil
}

// fade redraws the region without highlight colours unless a newer frame
// replaced it in the meantime.
func (b *TerminalBoard) fade(region render.Region, gen uint64) {
	b.mu.Lock()
	if b.generation[region] != gen {
		b.mu.Unlock()
		return
	}
	lines := b.lines[region]
	b.mu.Unlock()
	_ = writeLines(b.widgets[region], lines, false)
}

// Lines returns what was last drawn for region.
func (b *TerminalBoard) Lines(region render.Region) []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Line(nil), b.lines[region]...)
}

func hasFlash(lines []Line) bool {
	for _, l := range lines {
		if l.Flash {
			return true
		}
	}
	return false
}

func writeLines(w *text.Text, lines []Line, withFlash bool) error {
	w.Reset()
	for _, l := range lines {
		color := l.Color
		if l.Flash && !withFlash {
			color = ColorNone
		}
		var opts []text.WriteOption
		if c, ok := cellColor(color); ok {
			opts = append(opts, text.WriteCellOpts(cell.FgColor(c)))
		}
		if err := w.Write(l.Text+"\n", opts...); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	return nil
}

func cellColor(c Color) (cell.Color, bool) {
	switch c {
	case ColorGreen:
		return cell.ColorGreen, true
	case ColorRed:
		return cell.ColorRed, true
	case ColorYellow:
		return cell.ColorYellow, true
	case ColorCyan:
		return cell.ColorCyan, true
	default:
		return cell.ColorDefault, false
	}
}

func classColor(class string) Color {
	switch {
	case strings.Contains(class, "success"):
		return ColorGreen
	case strings.Contains(class, "danger"):
		return ColorRed
	case strings.Contains(class, "info"):
		return ColorCyan
	default:
		return ColorNone
	}
}

// glyph maps web icon names to terminal symbols.
func glyph(icon string) string {
	switch icon {
	case render.IconError:
		return "⚠"
	case render.IconSpin:
		return "…"
	default:
		return icon
	}
}

func highlightColor(highlight string) Color {
	switch highlight {
	case usecase.HighlightUp:
		return ColorGreen
	case usecase.HighlightDown:
		return ColorRed
	default:
		return ColorNone
	}
}

// FormatFrame turns a frame into terminal lines.
func FormatFrame(frame render.Frame) []Line {
	var lines []Line
	if frame.Stale && frame.Notice != "" {
		lines = append(lines, Line{Text: frame.Notice, Color: ColorYellow})
	}

	switch frame.Kind {
	case render.KindOrderbook:
		if frame.Orderbook == nil {
			break
		}
		for _, g := range frame.Orderbook.Gaps {
			lines = append(lines, Line{
				Text:  fmt.Sprintf("%s %s %s (%s)", g.Pair, g.Symbol, g.Percent, g.Absolute),
				Color: classColor(g.Class),
			})
		}
		for _, p := range frame.Orderbook.Cards {
			lines = append(lines, Line{Text: ""})
			lines = append(lines, cardLines(p.Reference)...)
			lines = append(lines, cardLines(p.Comparison)...)
		}
	case render.KindSummary:
		if frame.Summary == nil {
			break
		}
		for _, r := range frame.Summary.Rows {
			lines = append(lines, Line{
				Text:  fmt.Sprintf("%-14s %8s  %s  %s  %s", r.Label, r.Badge, r.ComparisonPrice, r.Percent, r.ComparisonLocal),
				Color: classColor(r.Class),
			})
		}
	case render.KindBalances:
		if frame.Balances == nil {
			break
		}
		for _, r := range frame.Balances.Rows {
			lines = append(lines, Line{
				Text:  fmt.Sprintf("%-16s %s USDT  %s  %s: %s", r.Exchange, r.USDT, r.Local, render.MsgDailyPnL, r.DailyPnL),
				Color: classColor(r.DailyClass),
			})
		}
	case render.KindPrices:
		if frame.Prices == nil {
			break
		}
		for _, r := range frame.Prices.Rows {
			lines = append(lines, Line{
				Text:  fmt.Sprintf("%-10s %s / %s  %s", r.Symbol, r.Reference, r.Comparison, r.Badge),
				Color: classColor(r.BadgeClass),
			})
		}
	case render.KindClock:
		if frame.Clock == nil {
			break
		}
		l := Line{Text: frame.Clock.Text}
		if frame.Clock.Fallback {
			l.Color = ColorYellow
		}
		lines = append(lines, l)
	case render.KindInitializing:
		if frame.Initializing == nil {
			break
		}
		s := frame.Initializing
		lines = append(lines, Line{Text: fmt.Sprintf("%s %s: %s", glyph(s.Icon), s.Title, s.Status), Color: ColorYellow})
		for _, d := range s.Details {
			c := ColorNone
			if d.Done {
				c = ColorGreen
			}
			lines = append(lines, Line{Text: "  " + d.Text, Color: c})
		}
	case render.KindError:
		if frame.Error == nil {
			break
		}
		lines = append(lines, Line{Text: glyph(frame.Error.Icon) + " " + frame.Error.Message, Color: ColorRed})
	}
	return lines
}

func cardLines(c render.ExchangeCard) []Line {
	lines := []Line{{Text: c.Exchange + " " + c.Symbol}}
	for _, r := range c.Asks {
		lines = append(lines, Line{Text: fmt.Sprintf("  %s  %s  %s", r.Amount, r.LocalPrice, r.LocalTotal), Color: ColorRed})
	}
	if c.CurrentPrice != "" {
		lines = append(lines, Line{
			Text:  fmt.Sprintf("  %s: %s", render.MsgCurrentPrice, c.CurrentPrice),
			Color: highlightColor(c.Highlight),
			Flash: c.Highlight != "",
		})
	}
	for _, r := range c.Bids {
		lines = append(lines, Line{Text: fmt.Sprintf("  %s  %s  %s", r.Amount, r.LocalPrice, r.LocalTotal), Color: ColorGreen})
	}
	lines = append(lines, Line{Text: "  " + c.GapText, Color: classColor(c.GapClass)})
	return lines
}

func (b *TerminalBoard) layout() ([]container.Option, error) {
	widget := func(region render.Region) grid.Element {
		return grid.Widget(b.widgets[region],
			container.Border(linestyle.Light),
			container.BorderTitle(regionTitles[region]),
		)
	}

	builder := grid.New()
	builder.Add(
		grid.RowHeightPerc(10, widget(render.RegionClock)),
		grid.RowHeightPerc(60,
			grid.ColWidthPerc(60, widget(render.RegionOrderbook)),
			grid.ColWidthPerc(40, widget(render.RegionSummary)),
		),
		grid.RowHeightPerc(30,
			grid.ColWidthPerc(50, widget(render.RegionPrices)),
			grid.ColWidthPerc(50, widget(render.RegionBalances)),
		),
	)
	return builder.Build()
}

// Run takes over the terminal until ctx is done or q/Esc is pressed.
func (b *TerminalBoard) Run(ctx context.Context) error {
	t, err := tcell.New(tcell.ColorMode(terminalapi.ColorMode256))
	if err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	defer t.Close()

	gridOpts, err := b.layout()
	if err != nil {
		return fmt.Errorf("build grid layout: %w", err)
	}
	c, err := container.New(t, gridOpts...)
	if err != nil {
		return fmt.Errorf("create root container: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	quit := func(k *terminalapi.Keyboard) {
		if k.Key == 'q' || k.Key == 'Q' || k.Key == keyboard.KeyEsc {
			cancel()
		}
	}
	return termdash.Run(ctx, t, c, termdash.KeyboardSubscriber(quit), termdash.RedrawInterval(redrawInterval))
}
