package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"CryptoPulse/internal/alertstate"
	"CryptoPulse/internal/metrics"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/notifier"
	"CryptoPulse/internal/service"
)

// Sender delivers a formatted message; *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes the watched tickers on a cron schedule and pushes new alerts.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer service.Analyzer
	State    *alertstate.Manager
	Notifier Sender
	Metrics  *metrics.Metrics
	// Base is the run template; each refresh keeps its window length and ends now.
	Base    model.RunConfig
	Tickers []string
	Ctx     context.Context
	now     func() time.Time

	// refreshMu serializes refreshes so an alert is never sent twice.
	refreshMu sync.Mutex
	wg        sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a service.Analyzer, st *alertstate.Manager, n Sender, m *metrics.Metrics, base model.RunConfig, tickers []string) *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(logger))),
		Analyzer: a,
		State:    st,
		Notifier: n,
		Metrics:  m,
		Base:     base,
		Tickers:  tickers,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register adds the refresh job.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RefreshAll); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.WithField("tickers", s.Tickers).Info("scheduler started")
}

// RunNow starts an immediate refresh of every ticker outside the cron schedule.
// Stop waits for it.
func (s *Scheduler) RunNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RefreshAll()
	}()
}

// Stop stops the cron scheduler and waits for running refreshes.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	log.Info("scheduler stopped")
}

// RefreshAll runs one refresh per watched ticker.
func (s *Scheduler) RefreshAll() {
	for _, ticker := range s.Tickers {
		if s.Ctx.Err() != nil {
			return
		}
		if _, err := s.Refresh(ticker); err != nil {
			log.WithField("ticker", ticker).WithError(err).Error("refresh failed")
		}
	}
}

// Refresh analyzes ticker up to now and delivers alerts not delivered before.
// It returns the number of alerts sent.
func (s *Scheduler) Refresh(ticker string) (int, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	report, err := s.Analyzer.Run(s.Ctx, s.runConfig(ticker))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range s.State.Pending(report.Config.Ticker, report.Alerts) {
		if err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatAlert(report.Instrument, entry), 3); err != nil {
			s.Metrics.ObserveAlerts(report.Config.Ticker, sent)
			return sent, fmt.Errorf("deliver alert: %w", err)
		}
		s.State.MarkDelivered(report.Config.Ticker, entry)
		sent++
	}
	s.Metrics.ObserveAlerts(report.Config.Ticker, sent)
	log.WithFields(log.Fields{"ticker": report.Config.Ticker, "run_id": report.RunID, "sent": sent}).Info("refresh done")
	return sent, nil
}

func (s *Scheduler) runConfig(ticker string) model.RunConfig {
	cfg := s.Base
	window := s.Base.End.Sub(s.Base.Start)
	cfg.Ticker = ticker
	cfg.End = s.now().UTC()
	cfg.Start = cfg.End.Add(-window)
	return cfg
}

// Commands returns the chat command handlers served in watch mode.
func (s *Scheduler) Commands() map[string]notifier.CommandHandler {
	return map[string]notifier.CommandHandler{
		"/signal":  func(p string) string { return s.reportCommand(p, notifier.FormatSignal) },
		"/summary": func(p string) string { return s.reportCommand(p, notifier.FormatSummary) },
		"/catalog": func(string) string { return notifier.FormatCatalog() },
		"/start":   func(string) string { return usage },
		"/help":    func(string) string { return usage },
	}
}

const usage = "Commands:\n/signal &lt;ticker&gt; latest signal\n/summary &lt;ticker&gt; trade summary\n/catalog supported instruments"

func (s *Scheduler) reportCommand(payload string, format func(*model.Report) string) string {
	ticker := html.EscapeString(strings.TrimSpace(payload))
	if ticker == "" {
		if len(s.Tickers) == 0 {
			return usage
		}
		ticker = s.Tickers[0]
	}
	report, err := s.Analyzer.Run(s.Ctx, s.runConfig(ticker))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownTicker):
			return fmt.Sprintf("Unknown ticker %q, see /catalog", ticker)
		case errors.Is(err, model.ErrDataUnavailable), errors.Is(err, model.ErrEmptySeries):
			return fmt.Sprintf("No market data for %s right now", ticker)
		}
		log.WithField("ticker", ticker).WithError(err).Error("command analysis failed")
		return "❌ analysis failed, see logs"
	}
	return format(report)
}
