package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoPulse/internal/alertstate"
	"CryptoPulse/internal/model"
)

var t0 = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

type fakeAnalyzer struct {
	mu     sync.Mutex
	alerts []model.AlertEntry
	err    error
	last   model.RunConfig
}

func (f *fakeAnalyzer) Run(_ context.Context, cfg model.RunConfig) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = cfg
	if f.err != nil {
		return nil, f.err
	}
	in, err := model.LookupInstrument(cfg.Ticker)
	if err != nil {
		return nil, err
	}
	cfg.Ticker = in.Ticker
	return &model.Report{
		RunID:      "run",
		Config:     cfg,
		Instrument: in,
		Alerts:     f.alerts,
		Summary:    model.TradeSummary{Insufficient: true, Policy: model.PairFIFO},
	}, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler(t *testing.T, a *fakeAnalyzer, n *fakeSender) *Scheduler {
	st, err := alertstate.NewManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	base := model.RunConfig{Start: t0.AddDate(0, 0, -30), End: t0, Interval: model.IntervalDaily}
	s := NewScheduler(context.Background(), a, st, n, nil, base, []string{"BTC-USD"})
	s.now = func() time.Time { return t0.AddDate(0, 0, 5) }
	return s
}

func TestRefresh_DeliversOnlyNewAlerts(t *testing.T) {
	a := &fakeAnalyzer{alerts: []model.AlertEntry{
		{Time: t0, Price: 100, Signal: model.SignalBuy},
		{Time: t0.AddDate(0, 0, 1), Price: 110, Signal: model.SignalSell},
	}}
	n := &fakeSender{}
	s := newTestScheduler(t, a, n)

	sent, err := s.Refresh("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "first refresh only sends the newest alert")
	assert.Contains(t, n.sent[0], "Sell")

	assert.Equal(t, t0.AddDate(0, 0, 5), a.last.End)
	assert.Equal(t, t0.AddDate(0, 0, -25), a.last.Start, "window length is kept")

	sent, err = s.Refresh("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	a.alerts = append(a.alerts, model.AlertEntry{Time: t0.AddDate(0, 0, 2), Price: 95, Signal: model.SignalBuy})
	sent, err = s.Refresh("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, n.sent, 2)
}

func TestRefresh_SendFailureKeepsAlertPending(t *testing.T) {
	a := &fakeAnalyzer{alerts: []model.AlertEntry{{Time: t0, Price: 100, Signal: model.SignalBuy}}}
	n := &fakeSender{err: errors.New("telegram down")}
	s := newTestScheduler(t, a, n)

	_, err := s.Refresh("BTC-USD")
	assert.Error(t, err)

	n.err = nil
	sent, err := s.Refresh("BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestRefresh_ConcurrentRunsSendOnce(t *testing.T) {
	a := &fakeAnalyzer{alerts: []model.AlertEntry{{Time: t0, Price: 100, Signal: model.SignalBuy}}}
	n := &fakeSender{}
	s := newTestScheduler(t, a, n)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Refresh("BTC-USD")
		}()
	}
	wg.Wait()
	assert.Len(t, n.sent, 1)
}

func TestRunNow_StopWaits(t *testing.T) {
	a := &fakeAnalyzer{alerts: []model.AlertEntry{{Time: t0, Price: 100, Signal: model.SignalBuy}}}
	n := &fakeSender{}
	s := newTestScheduler(t, a, n)
	require.NoError(t, s.Register("0 0 0 1 1 *"))

	s.Start()
	s.RunNow()
	s.Stop()

	assert.Len(t, n.sent, 1, "the immediate refresh finished before Stop returned")
}

func TestCommands(t *testing.T) {
	a := &fakeAnalyzer{}
	s := newTestScheduler(t, a, &fakeSender{})
	cmds := s.Commands()

	assert.Contains(t, cmds["/summary"]("eth"), "Ethereum (ETH)")
	assert.Contains(t, cmds["/signal"](""), "Bitcoin (BTC)", "defaults to the first watched ticker")
	assert.Contains(t, cmds["/signal"]("NOPE"), "Unknown ticker")
	assert.Contains(t, cmds["/catalog"](""), "SOL-USD")

	a.err = model.ErrDataUnavailable
	assert.Contains(t, cmds["/signal"]("BTC-USD"), "No market data")

	require.NoError(t, s.Register("0 */5 * * * *"))
	assert.Error(t, s.Register("not a cron"))
}
