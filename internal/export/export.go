// Package export serializes the annotated signal table as delimiter-separated text.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"CryptoPulse/internal/model"
)

// Record is one exported row. Undefined indicator values are empty cells.
type Record struct {
	Timestamp  string `csv:"timestamp"`
	Close      string `csv:"close"`
	RSI        string `csv:"rsi"`
	MACD       string `csv:"macd"`
	MACDSignal string `csv:"macd_signal"`
	EMAFast    string `csv:"ema_fast"`
	EMASlow    string `csv:"ema_slow"`
	SMA        string `csv:"sma"`
	BBUpper    string `csv:"bb_upper"`
	BBLower    string `csv:"bb_lower"`
	PctChange  string `csv:"pct_change_k"`
	Signal     string `csv:"signal"`
}

// Records converts the table, preserving order.
func Records(rows []model.SignalRow) []*Record {
	out := make([]*Record, len(rows))
	for i, r := range rows {
		out[i] = &Record{
			Timestamp:  r.Time.UTC().Format(time.RFC3339),
			Close:      num(r.Close),
			RSI:        num(r.RSI),
			MACD:       num(r.MACD),
			MACDSignal: num(r.MACDSignal),
			EMAFast:    num(r.EMAFast),
			EMASlow:    num(r.EMASlow),
			SMA:        num(r.SMA),
			BBUpper:    num(r.BBUpper),
			BBLower:    num(r.BBLower),
			PctChange:  num(r.PctChange),
			Signal:     string(r.Signal),
		}
	}
	return out
}

// Write emits a header row followed by one line per table row.
// A zero delimiter means comma.
func Write(w io.Writer, rows []model.SignalRow, delimiter rune) error {
	records := Records(rows)
	if delimiter == 0 || delimiter == ',' {
		return gocsv.Marshal(records, w)
	}

	// gocsv only writes commas; re-encode with the requested delimiter.
	body, err := gocsv.MarshalString(records)
	if err != nil {
		return err
	}
	lines, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.WriteAll(lines); err != nil {
		return err
	}
	return cw.Error()
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
