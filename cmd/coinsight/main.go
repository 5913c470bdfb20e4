// Command coinsight ranks cryptocurrencies from a market listing and prints
// buy/sell recommendations with synthetic-history price forecasts.
//
// Usage:
//
//	coinsight --input listing.json
//	coinsight --config config.yaml
//	coinsight --input listing.json --serve :8080 (web report, re-reads the listing)
//	coinsight --input listing.json --journal ./wal/runs (records the run)
//	coinsight --config config.yaml --journal ./wal/runs --schedule "@every 15m" (background runs)
//	coinsight --setup (interactive wizard, writes config.gen.yaml)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vadiminshakov/coinsight/config"
	"github.com/vadiminshakov/coinsight/internal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/metrics"
	"github.com/vadiminshakov/coinsight/internal/report"
	"github.com/vadiminshakov/coinsight/internal/scheduler"
	"github.com/vadiminshakov/coinsight/internal/services/forecast"
	"github.com/vadiminshakov/coinsight/internal/services/market/analysis"
	"github.com/vadiminshakov/coinsight/internal/services/market/collector"
	"github.com/vadiminshakov/coinsight/internal/setup"
	"github.com/vadiminshakov/coinsight/internal/storage/runs"
	"github.com/vadiminshakov/coinsight/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const moversLimit = 3

// runJournal records finished runs.
type runJournal interface {
	Save(run domain.Run) error
}

func main() {
	conf, err := config.Get(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if conf.Setup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		debug := conf.Debug
		if conf, err = config.Get([]string{"--config", config.GeneratedPath}); err != nil {
			log.Fatal(err)
		}
		conf.Debug = debug
	}

	logger, err := newLogger(conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, conf); err != nil {
		logger.Fatal("coinsight failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, logger *zap.Logger, conf config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a := &app{
		logger: logger,
		source: collector.NewFileCollector(logger, conf.Input),
		advisor: internal.NewAdvisor(logger,
			internal.WithSeed(conf.Seed),
			internal.WithWorkers(conf.Workers),
			internal.WithMetrics(m),
			internal.WithForecaster(forecast.NewForecaster(logger, forecast.WithLookbackDays(conf.LookbackDays))),
		),
		metrics: m,
		top:     conf.Top,
	}

	opts := []web.Option{web.WithMetrics(m, reg)}
	if conf.Journal != "" {
		store, err := runs.NewWALStore(conf.Journal)
		if err != nil {
			return errors.Wrap(err, "failed to open run journal")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close run journal", zap.Error(err))
			}
		}()
		a.journal = store
		opts = append(opts, web.WithRuns(store))
		logger.Info("journaling runs", zap.String("dir", conf.Journal), zap.Uint64("index", store.CurrentIndex()))
	}

	if conf.Serve == "" && conf.Schedule == "" {
		rep, err := a.evaluate(ctx)
		if err != nil {
			return err
		}

		switch conf.Output {
		case config.OutputYAML:
			return report.WriteYAML(os.Stdout, rep)
		default:
			return report.WriteTable(os.Stdout, rep)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if conf.Schedule != "" {
		sched := scheduler.NewScheduler(gctx, logger)
		if err := sched.Add(conf.Schedule, "evaluation", func(ctx context.Context) error {
			_, err := a.evaluate(ctx)
			return err
		}); err != nil {
			return err
		}
		g.Go(func() error {
			sched.Run()
			return nil
		})
	}

	if conf.Serve != "" {
		g.Go(func() error {
			return web.NewServer(logger, conf.Serve, a.buildReport, conf.Refresh, opts...).Start(gctx)
		})
	}

	return g.Wait()
}

// app ties the listing source to the advisor and the optional journal.
type app struct {
	logger  *zap.Logger
	source  collector.SnapshotSource
	advisor *internal.Advisor
	journal runJournal
	metrics *metrics.Metrics
	top     int
}

// buildReport reads the listing and ranks it. Nothing is journaled.
func (a *app) buildReport(ctx context.Context) (report.Report, error) {
	snapshots, err := a.source.Snapshots(ctx)
	if err != nil {
		return report.Report{}, errors.Wrap(err, "failed to collect snapshots")
	}

	results, err := a.advisor.Top(ctx, snapshots, a.top)
	if err != nil {
		return report.Report{}, errors.Wrap(err, "failed to evaluate snapshots")
	}

	return report.New(analysis.NewMarketStats(snapshots, moversLimit), results, time.Now().UTC()), nil
}

// evaluate builds a report and records it in the journal, if one is configured.
// A failed journal write is logged and does not fail the run.
func (a *app) evaluate(ctx context.Context) (report.Report, error) {
	rep, err := a.buildReport(ctx)
	if err != nil {
		return report.Report{}, err
	}
	if a.journal == nil {
		return rep, nil
	}

	run := domain.NewRun(uuid.NewString(), rep.GeneratedAt, rep.Market.Assets, rep.Results())
	if err := a.journal.Save(run); err != nil {
		a.metrics.RecordJournalError()
		a.logger.Warn("failed to journal run", zap.String("run", run.ID), zap.Error(err))
		return rep, nil
	}
	a.logger.Info("run journaled", zap.String("run", run.ID), zap.Int("entries", len(run.Entries)))

	return rep, nil
}
