package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"CryptoPulse/internal/model"
)

var signalIcon = map[model.Signal]string{
	model.SignalBuy:  "🟢",
	model.SignalSell: "🔴",
	model.SignalHold: "⚪",
}

// Price formats a close with thousands separators.
func Price(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.Abs(v) < 1 {
		return fmt.Sprintf("%.6f", v)
	}
	return humanize.CommafWithDigits(v, 2)
}

func value(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatAlert formats one new alert for a watched ticker.
func FormatAlert(in model.Instrument, e model.AlertEntry) string {
	return fmt.Sprintf("%s <b>%s</b> %s\nPrice: %s\nTime: %s",
		signalIcon[e.Signal], html.EscapeString(in.Name), e.Signal,
		Price(e.Price), e.Time.UTC().Format("2006-01-02 15:04 MST"))
}

// FormatSignal formats the latest evaluated row of a report.
func FormatSignal(r *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s</b> | %s | %s\n\n", html.EscapeString(r.Instrument.Name), r.Config.Interval, r.Config.Rule)

	row, ok := r.LastSignal()
	if !ok {
		b.WriteString("Not enough history for a signal yet.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s <b>%s</b> at %s (%s)\n", signalIcon[row.Signal], row.Signal,
		Price(row.Close), row.Time.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "RSI: %s\n", value(row.RSI))
	fmt.Fprintf(&b, "MACD: %s / signal %s\n", value(row.MACD), value(row.MACDSignal))
	fmt.Fprintf(&b, "EMA: %s / %s\n", value(row.EMAFast), value(row.EMASlow))
	fmt.Fprintf(&b, "BB: %s / %s\n", value(row.BBLower), value(row.BBUpper))
	if row.Err != nil {
		fmt.Fprintf(&b, "\n⚠️ rule skipped: %s\n", html.EscapeString(row.Err.Error()))
	}
	return b.String()
}

// FormatSummary formats the trade summary of a report.
func FormatSummary(r *model.Report) string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "💰 <b>%s</b> trade summary (%s)\n", html.EscapeString(r.Instrument.Name), s.Policy)
	fmt.Fprintf(&b, "%s → %s\n\n", r.Config.Start.Format("2006-01-02"), r.Config.End.Format("2006-01-02"))
	if s.Insufficient {
		b.WriteString("Insufficient signals: no Buy/Sell pair was formed.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Trades: %d (%d won, %d lost, %.0f%%)\n", s.Count, s.Wins, s.Losses, s.WinRate*100)
	fmt.Fprintf(&b, "Total P/L: %s\n", Price(s.TotalProfit))
	fmt.Fprintf(&b, "Average P/L: %s\n", Price(s.AverageProfit))
	fmt.Fprintf(&b, "Best: %s | Worst: %s\n", Price(s.Best), Price(s.Worst))
	fmt.Fprintf(&b, "Alerts: %s\n", humanize.Comma(int64(len(r.Alerts))))
	return b.String()
}

// FormatCatalog lists the supported instruments.
func FormatCatalog() string {
	var b strings.Builder
	b.WriteString("📋 <b>Supported instruments</b>\n\n")
	for _, in := range model.Catalog {
		fmt.Fprintf(&b, "%s  <code>%s</code>\n", html.EscapeString(in.Name), in.Ticker)
	}
	return b.String()
}
