package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("pulse failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pulse",
		Usage: "technical-indicator signals and backtests for crypto instruments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "YAML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "run one analysis and print signals, alerts and the trade summary",
				Flags:  append(runFlags(), &cli.IntFlag{Name: "rows", Value: 20, Usage: "signal rows to print, 0 for all"}),
				Action: analyzeAction,
			},
			{
				Name:  "export",
				Usage: "write the full annotated table as delimiter-separated values",
				Flags: append(runFlags(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
					&cli.StringFlag{Name: "delimiter", Value: ",", Usage: "single-character field delimiter"},
				),
				Action: exportAction,
			},
			{
				Name:   "catalog",
				Usage:  "list supported instruments",
				Action: catalogAction,
			},
			{
				Name:   "watch",
				Usage:  "refresh watched tickers on a schedule and push new alerts to Telegram",
				Flags:  append(runFlags(), &cli.BoolFlag{Name: "now", Usage: "refresh once right after start"}),
				Action: watchAction,
			},
		},
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "ticker", Aliases: []string{"t"}, Usage: "instrument ticker, name or base symbol"},
		&cli.StringFlag{Name: "start", Usage: "first date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "end", Usage: "last date (YYYY-MM-DD), defaults to now"},
		&cli.StringFlag{Name: "lookback", Usage: "range length when start is not set, e.g. 90d"},
		&cli.StringFlag{Name: "interval", Aliases: []string{"i"}, Usage: "1d or 1h"},
		&cli.StringFlag{Name: "rule", Aliases: []string{"r"}, Usage: "threshold or momentum"},
		&cli.StringFlag{Name: "thresholds", Usage: "strict or loose"},
		&cli.Float64Flag{Name: "rsi-low", Usage: "RSI buy threshold"},
		&cli.Float64Flag{Name: "rsi-high", Usage: "RSI sell threshold"},
		&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "All, Buy or Sell"},
		&cli.StringFlag{Name: "pairing", Usage: "fifo or positional"},
		&cli.StringFlag{Name: "provider", Usage: "yahoo, binance or csv"},
		&cli.BoolFlag{Name: "no-cache", Usage: "bypass the price cache"},
	}
}
