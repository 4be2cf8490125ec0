package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"oceanwatch/internal/alerting"
	"oceanwatch/internal/config"
	"oceanwatch/internal/earnings"
	"oceanwatch/internal/fetcher"
	"oceanwatch/internal/scheduler"
	"oceanwatch/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer

	source fetcher.EarningsFetcher
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) newFetcher() fetcher.EarningsFetcher {
	if a.source != nil {
		return a.source
	}
	return fetcher.NewOcean(fetcher.OceanOptions{
		BaseURL:   a.Config.Ocean.BaseURL,
		Timeout:   a.Config.Ocean.RequestTimeout,
		UserAgent: a.Config.Ocean.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newService(sched *scheduler.Scheduler, notifier alerting.Notifier) *service.Service {
	return service.New(a.Config, sched, a.newFetcher(), notifier, a.Logger)
}

// Run executes the long-running payout watcher.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		AlignToStart:   a.Config.Scheduler.AlignToBucket,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
		RunImmediately: true,
	}, a.Logger)

	notifier := a.newNotifier()
	if a.Config.Alerting.Enabled && notifier == nil {
		a.Logger.Warn().Msg("alerting enabled but no channel configured; payouts will only be logged")
	}

	svc := a.newService(sched, notifier)

	a.Logger.Info().Strs("accounts", a.Config.Ocean.Accounts).Msg("starting payout watcher")
	err := svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watcher terminated with error")
		return err
	}

	a.Logger.Info().Msg("payout watcher stopped")
	return nil
}

// fetchEntries resolves the account and downloads its ledger.
func (a *App) fetchEntries(ctx context.Context, account string) (string, []earnings.Entry, error) {
	resolved, err := a.Config.ResolveAccount(account)
	if err != nil {
		return "", nil, err
	}

	entries, err := a.newService(nil, nil).GetEarnings(ctx, resolved)
	if err != nil {
		return resolved, nil, err
	}
	return resolved, entries, nil
}

// ExportOptions hold parameters for exporting an account ledger.
type ExportOptions struct {
	Account   string
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Account string
	Limit   int
}

// SummaryOptions configure the summary command.
type SummaryOptions struct {
	Account string
}
