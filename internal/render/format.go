package render

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultLocale = "ko-KR"

// Formatter turns numbers into display strings with a fixed number of
// decimals and locale grouping.
type Formatter struct {
	printer   *message.Printer
	localRate float64
}

func NewFormatter(locale string, localRate float64) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Korean
	}
	return &Formatter{
		printer:   message.NewPrinter(tag),
		localRate: localRate,
	}
}

func (f *Formatter) LocalRate() float64 { return f.localRate }

// Number formats v with exactly decimals fraction digits and grouping.
func (f *Formatter) Number(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	rounded, _ := decimal.NewFromFloat(v).Round(int32(decimals)).Float64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(decimals)))
}

// Percent renders a 2dp percentage with an explicit sign: "+5.26%", "-0.40%".
func (f *Formatter) Percent(v float64) string {
	return sign(v) + f.Number(math.Abs(v), 2) + "%"
}

// SpreadBadge renders the unsigned 3dp magnitude used in badges.
func (f *Formatter) SpreadBadge(v float64) string {
	return f.Number(math.Abs(v), 3) + "%"
}

// Signed renders v with an explicit sign and grouped magnitude.
func (f *Formatter) Signed(v float64, decimals int) string {
	return sign(v) + f.Number(math.Abs(v), decimals)
}

// ToLocal converts a quote currency amount to the local currency.
func (f *Formatter) ToLocal(quote float64) float64 {
	return quote * f.localRate
}

// Local renders a quote currency amount in local currency at 0dp.
func (f *Formatter) Local(quote float64) string {
	return f.Number(f.ToLocal(quote), 0)
}

func sign(v float64) string {
	if v < 0 {
		return "-"
	}
	return "+"
}

// GainClass is the bootstrap text class for a signed value.
func GainClass(v float64) string {
	if v >= 0 {
		return "text-success"
	}
	return "text-danger"
}
