package collector

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"CryptoPulse/internal/model"
)

const binanceKlineLimit = 1000

// BinanceFetcher implements Fetcher using Binance spot klines, quoting in USDT.
type BinanceFetcher struct {
	Client *binance.Client
	Quote  string
}

// NewBinanceFetcher creates a fetcher; keys may be empty for public market data.
func NewBinanceFetcher(apiKey, secretKey, proxyURL string) *BinanceFetcher {
	client := binance.NewClient(apiKey, secretKey)
	client.HTTPClient = newHTTPClient(proxyURL)
	return &BinanceFetcher{Client: client, Quote: "USDT"}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// Symbol maps a catalog ticker such as "BTC-USD" to an exchange pair such as "BTCUSDT".
func (f *BinanceFetcher) Symbol(ticker string) (string, error) {
	in, err := model.LookupInstrument(ticker)
	if err != nil {
		return "", err
	}
	if in.Base == f.Quote {
		return "", fmt.Errorf("%w: %s is the quote asset on binance", model.ErrDataUnavailable, ticker)
	}
	return in.Base + f.Quote, nil
}

func (f *BinanceFetcher) Fetch(ctx context.Context, ticker string, start, end time.Time, interval model.Interval) (model.PriceSeries, error) {
	symbol, err := f.Symbol(ticker)
	if err != nil {
		return model.PriceSeries{}, err
	}

	series := model.PriceSeries{Ticker: ticker, Interval: interval, FetchedAt: time.Now()}
	from := start.UnixMilli()
	to := end.UnixMilli()
	for from < to {
		klines, err := f.Client.NewKlinesService().
			Symbol(symbol).
			Interval(string(interval)).
			StartTime(from).
			EndTime(to).
			Limit(binanceKlineLimit).
			Do(ctx)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("binance klines %s: %w", symbol, err)
		}
		if len(klines) == 0 {
			break
		}
		for _, k := range klines {
			series.Bars = append(series.Bars, model.OHLCV{
				Time:   time.UnixMilli(k.OpenTime).UTC(),
				Open:   parseDecimal(k.Open),
				High:   parseDecimal(k.High),
				Low:    parseDecimal(k.Low),
				Close:  parseDecimal(k.Close),
				Volume: parseDecimal(k.Volume),
			})
		}
		if len(klines) < binanceKlineLimit {
			break
		}
		from = klines[len(klines)-1].CloseTime + 1
	}

	if len(series.Bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: binance returned no klines for %s", model.ErrDataUnavailable, symbol)
	}
	return series, nil
}

func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
