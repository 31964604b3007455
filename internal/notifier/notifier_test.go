package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tb "gopkg.in/tucnak/telebot.v2"

	"CryptoPulse/internal/model"
)

const okMessage = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"x"}}`

func fakeAPI(t *testing.T, failures int32) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"))
		if n <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":500,"description":"Internal Server Error"}`))
			return
		}
		_, _ = w.Write([]byte(okMessage))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testNotifier(t *testing.T, url string) *TelegramNotifier {
	n, err := newNotifier(tb.Settings{URL: url, Token: "T", Offline: true, Client: http.DefaultClient}, "42")
	require.NoError(t, err)
	return n
}

func TestSendWithRetry(t *testing.T) {
	srv, calls := fakeAPI(t, 2)
	n := testNotifier(t, srv.URL)

	require.NoError(t, n.sendWithRetry(context.Background(), "hello", 3, time.Millisecond))
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	srv, calls := fakeAPI(t, 100)
	n := testNotifier(t, srv.URL)

	err := n.sendWithRetry(context.Background(), "hello", 1, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestFormatters(t *testing.T) {
	in, err := model.LookupInstrument("BTC-USD")
	require.NoError(t, err)
	at := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)

	msg := FormatAlert(in, model.AlertEntry{Time: at, Price: 43210.5, Signal: model.SignalBuy})
	assert.Contains(t, msg, "Bitcoin (BTC)")
	assert.Contains(t, msg, "43,210.5")
	assert.Contains(t, msg, "2024-02-03")

	report := &model.Report{
		Instrument: in,
		Config:     model.RunConfig{Ticker: "BTC-USD", Interval: model.IntervalDaily, Rule: model.RuleThresholdCrossover},
		Summary:    model.TradeSummary{Policy: model.PairFIFO, Insufficient: true},
	}
	assert.Contains(t, FormatSignal(report), "Not enough history")
	assert.Contains(t, FormatSummary(report), "Insufficient signals")

	report.Table = []model.SignalRow{{
		IndicatorRow: model.EmptyIndicatorRow(at, 100),
		Signal:       model.SignalSell,
		Evaluable:    true,
	}}
	report.Summary = model.TradeSummary{Policy: model.PairFIFO, Count: 2, Wins: 1, Losses: 1, WinRate: 0.5, TotalProfit: 1200, AverageProfit: 600}
	sig := FormatSignal(report)
	assert.Contains(t, sig, "<b>Sell</b> at 100")
	assert.Contains(t, sig, "RSI: n/a")
	sum := FormatSummary(report)
	assert.Contains(t, sum, "Trades: 2 (1 won, 1 lost, 50%)")
	assert.Contains(t, sum, "Total P/L: 1,200")

	assert.Contains(t, FormatCatalog(), "<code>ETH-USD</code>")
	assert.Equal(t, "0.123457", Price(0.1234567))
}
