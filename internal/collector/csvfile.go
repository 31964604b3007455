package collector

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"CryptoPulse/internal/model"
)

// CSVFetcher reads <Dir>/<ticker>.csv files with at least a timestamp and a close column.
type CSVFetcher struct {
	Dir string
}

func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

type csvBar struct {
	Timestamp string `csv:"timestamp"`
	Open      string `csv:"open"`
	High      string `csv:"high"`
	Low       string `csv:"low"`
	Close     string `csv:"close"`
	Volume    string `csv:"volume"`
}

var csvTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseCSVFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	return parseDecimal(s)
}

func (f *CSVFetcher) Fetch(_ context.Context, ticker string, start, end time.Time, interval model.Interval) (model.PriceSeries, error) {
	path := filepath.Join(f.Dir, ticker+".csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.PriceSeries{}, fmt.Errorf("%w: no file %s", model.ErrDataUnavailable, path)
		}
		return model.PriceSeries{}, err
	}
	defer file.Close()

	var raw []*csvBar
	if err := gocsv.UnmarshalFile(file, &raw); err != nil {
		return model.PriceSeries{}, fmt.Errorf("parse %s: %w", path, err)
	}

	series := model.PriceSeries{Ticker: ticker, Interval: interval, FetchedAt: time.Now()}
	anyClose := false
	for i, r := range raw {
		ts, err := parseCSVTime(r.Timestamp)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		bar := model.OHLCV{
			Time:   ts,
			Open:   parseCSVFloat(r.Open),
			High:   parseCSVFloat(r.High),
			Low:    parseCSVFloat(r.Low),
			Close:  parseCSVFloat(r.Close),
			Volume: parseCSVFloat(r.Volume),
		}
		if !math.IsNaN(bar.Close) {
			anyClose = true
		}
		series.Bars = append(series.Bars, bar)
	}
	if !anyClose {
		return model.PriceSeries{}, fmt.Errorf("%w: %s has no close prices in range", model.ErrDataUnavailable, path)
	}
	return series, nil
}
