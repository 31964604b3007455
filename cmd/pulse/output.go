package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"CryptoPulse/internal/alertlog"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/notifier"
)

func cell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func printReport(w io.Writer, r *model.Report, rows int) {
	fmt.Fprintf(w, "%s (%s)  %s -> %s  interval=%s rule=%s run=%s\n\n",
		r.Instrument.Name, r.Instrument.Ticker,
		r.Config.Start.Format("2006-01-02"), r.Config.End.Format("2006-01-02"),
		r.Config.Interval, r.Config.Rule, r.RunID)

	signals := r.Signals
	if rows > 0 && len(signals) > rows {
		signals = signals[len(signals)-rows:]
	}
	fmt.Fprintf(w, "Signals (%s, %d of %d rows)\n", r.Config.SignalFilter, len(signals), len(r.Signals))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "time\tclose\trsi\tmacd\tmacd_sig\tema_fast\tema_slow\tbb_low\tbb_up\tsignal\t")
	for _, row := range signals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Time.UTC().Format("2006-01-02 15:04"), notifier.Price(row.Close),
			cell(row.RSI), cell(row.MACD), cell(row.MACDSignal),
			cell(row.EMAFast), cell(row.EMASlow), cell(row.BBLower), cell(row.BBUpper), row.Signal)
	}
	tw.Flush()
	if r.Downgrades > 0 {
		fmt.Fprintf(w, "%d rows held because an indicator was invalid\n", r.Downgrades)
	}

	fmt.Fprintf(w, "\nAlerts (%d, newest first)\n", len(r.Alerts))
	for _, a := range alertlog.Newest(r.Alerts) {
		fmt.Fprintf(w, "  %s  %-4s  %s\n", a.Time.UTC().Format("2006-01-02 15:04"), a.Signal, notifier.Price(a.Price))
	}

	s := r.Summary
	fmt.Fprintf(w, "\nTrade summary (%s pairing)\n", s.Policy)
	if s.Insufficient {
		fmt.Fprintln(w, "  insufficient signals: no Buy/Sell pair")
		return
	}
	for _, p := range s.Pairs {
		fmt.Fprintf(w, "  buy %s @ %s  sell %s @ %s  P/L %s\n",
			p.Buy.Time.UTC().Format("2006-01-02"), notifier.Price(p.Buy.Price),
			p.Sell.Time.UTC().Format("2006-01-02"), notifier.Price(p.Sell.Price), notifier.Price(p.Profit))
	}
	fmt.Fprintf(w, "  trades=%d wins=%d losses=%d win_rate=%.1f%%\n", s.Count, s.Wins, s.Losses, s.WinRate*100)
	fmt.Fprintf(w, "  total=%s average=%s best=%s worst=%s\n",
		notifier.Price(s.TotalProfit), notifier.Price(s.AverageProfit), notifier.Price(s.Best), notifier.Price(s.Worst))
}

func printCatalog(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTICKER\tBASE")
	for _, in := range model.Catalog {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", in.Name, in.Ticker, in.Base)
	}
	tw.Flush()
}
