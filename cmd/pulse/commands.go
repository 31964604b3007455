package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"CryptoPulse/internal/alertstate"
	"CryptoPulse/internal/export"
	"CryptoPulse/internal/notifier"
	"CryptoPulse/internal/scheduler"
)

func analyzeAction(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	rc, err := rt.cfg.RunConfig(time.Now())
	if err != nil {
		return err
	}
	report, err := rt.analyzer.Run(c.Context, rc)
	if err != nil {
		return err
	}
	printReport(os.Stdout, report, c.Int("rows"))
	return nil
}

func exportAction(c *cli.Context) error {
	delim, size := utf8.DecodeRuneInString(c.String("delimiter"))
	if size == 0 || size != len(c.String("delimiter")) {
		return fmt.Errorf("delimiter must be a single character, got %q", c.String("delimiter"))
	}

	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	rc, err := rt.cfg.RunConfig(time.Now())
	if err != nil {
		return err
	}
	report, err := rt.analyzer.Run(c.Context, rc)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := export.Write(out, report.Table, delim); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if out != os.Stdout {
		log.WithFields(log.Fields{"file": c.String("out"), "rows": len(report.Table)}).Info("export written")
	}
	return nil
}

func catalogAction(_ *cli.Context) error {
	printCatalog(os.Stdout)
	return nil
}

func watchAction(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.cfg.ValidateWatch(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	base, err := rt.cfg.RunConfig(time.Now())
	if err != nil {
		return err
	}
	state, err := alertstate.NewManager(rt.cfg.Watch.StateFile)
	if err != nil {
		return fmt.Errorf("load alert state: %w", err)
	}
	tn, err := notifier.NewTelegramNotifier(rt.cfg.Telegram.BotToken, rt.cfg.Telegram.ChatID, rt.cfg.Proxy)
	if err != nil {
		return err
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, rt.analyzer, state, tn, rt.metrics, base, rt.cfg.Watch.Tickers)
	if err := sched.Register(rt.cfg.Watch.Cron); err != nil {
		return err
	}
	for cmd, h := range sched.Commands() {
		tn.Handle(cmd, h)
	}

	srv := rt.metrics.Serve(rt.cfg.Watch.MetricsAddr)
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	sched.Start()
	defer sched.Stop()
	go tn.StartPolling(ctx)

	if c.Bool("now") {
		sched.RunNow()
	}

	log.WithField("cron", rt.cfg.Watch.Cron).Info("CryptoPulse is watching. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
	return nil
}
