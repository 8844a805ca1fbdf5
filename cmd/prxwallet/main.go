package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"prxwallet/internal/adapter/api"
	"prxwallet/internal/adapter/cache"
	"prxwallet/internal/adapter/confirm"
	"prxwallet/internal/adapter/demo"
	"prxwallet/internal/adapter/localauth"
	"prxwallet/internal/adapter/notifier"
	"prxwallet/internal/adapter/securestore"
	"prxwallet/internal/adapter/storage"
	"prxwallet/internal/application/flow"
	"prxwallet/internal/application/service"
	"prxwallet/internal/application/session"
	"prxwallet/internal/application/usecase"
	"prxwallet/internal/application/validation"
	"prxwallet/internal/concurrency/worker"
	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
	"prxwallet/internal/infrastructure/config"
	"prxwallet/internal/infrastructure/logger"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to the config file")
	portFlag   = flag.Int("port", 0, "Gateway port (serve)")
	demoFlag   = flag.Bool("demo", false, "Use the in-memory demo backend")
	yesFlag    = flag.Bool("yes", false, "Skip the confirmation prompt")
	helpFlag   = flag.Bool("help", false, "Show help")
)

type App struct {
	config    *config.Config
	logger    *slog.Logger
	session   *session.Session
	modes     *service.ModeService
	demo      *demo.Backend
	cache     port.CachePort
	journal   port.JournalPort
	wallet    *service.WalletService
	validator *validation.Validator
	pinAuth   *localauth.PinAuthenticator
	auth      *usecase.AuthUseCase
	trades    *usecase.WalletUseCase
	closers   []io.Closer
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if *helpFlag || flag.NArg() == 0 {
		printUsage()
		os.Exit(0)
	}

	if *demoFlag {
		os.Setenv(config.EnvPrefix+"MODE", model.DemoMode.String())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.shutdown()

	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		app.shutdown()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{config: cfg, logger: log, validator: validation.New()}

	store, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	app.session = session.New(store)

	var live port.BackendPort
	if cfg.Backend.URL != "" {
		live = api.NewClient(cfg.Backend.URL, app.session, cfg.Backend.Timeout, log,
			api.WithRefreshSkew(cfg.Backend.RefreshSkew))
	}

	app.demo = demo.NewBackend("demo", app.session, log)
	if p, err := decimal.NewFromString(cfg.Demo.StartPrice); err == nil && p.IsPositive() {
		app.demo.SetPrice(p)
	}
	app.closers = append(app.closers, app.demo)

	app.modes = service.NewModeService(live, app.demo, cfg.DataMode(), log)

	if err := app.openCache(); err != nil {
		return nil, err
	}
	app.wallet = service.NewWalletService(app.modes, app.cache, cfg.Cache.TTL, cfg.Backend.Timeout, log)
	app.modes.OnSwitch(func(ctx context.Context, _ model.DataMode) error {
		return app.wallet.Invalidate(ctx)
	})

	if cfg.JournalEnabled() {
		journal, err := storage.NewPostgresAdapter(cfg.PostgresDSN())
		if err != nil {
			app.shutdown()
			return nil, err
		}
		if err := journal.InitSchema(ctx); err != nil {
			journal.Close()
			app.shutdown()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		app.journal = journal
		app.closers = append(app.closers, journal)
	}

	logNotifier := notifier.NewLogNotifier(log)
	sinks := notifier.Multi{logNotifier}
	if len(cfg.Kafka.Brokers) > 0 {
		kn := notifier.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sinks = append(sinks, kn)
		app.closers = append(app.closers, kn)
	}
	// Closed before the Kafka writer so queued events still go out.
	events := worker.NewPool(2, 64, sinks, logNotifier, log)
	app.closers = append(app.closers, events)

	var confirmer port.Confirmer = confirm.NewTerminal(stdin.rd, os.Stdout)
	if *yesFlag {
		confirmer = confirm.Preapproved{}
	}

	app.pinAuth = localauth.NewPinAuthenticator(app.session, stdin.pinSource)
	app.auth = usecase.NewAuthUseCase(app.modes, app.session, app.validator, log)
	app.auth.OnSessionChange(app.wallet.Invalidate)
	app.trades = usecase.NewWalletUseCase(app.wallet, app.session, flow.Deps{
		Validator:     app.validator,
		Backend:       app.modes,
		Authenticator: app.pinAuth,
		Confirmer:     confirmer,
		Notifier:      events,
		Journal:       app.journal,
	}, log)

	log.Debug("app ready", "mode", app.modes.GetCurrentMode(), "cache", cfg.Cache.Driver, "journal", app.journal != nil)
	return app, nil
}

func openStore(cfg config.StoreConfig) (port.SecretStore, error) {
	pass := cfg.Passphrase
	if pass == "" {
		var err error
		pass, err = stdin.secret("Store passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
	}
	store, err := securestore.OpenFile(cfg.Path, pass)
	if err != nil {
		return nil, fmt.Errorf("failed to open secure store: %w", err)
	}
	return store, nil
}

func (a *App) openCache() error {
	switch a.config.Cache.Driver {
	case "redis":
		rc, err := cache.NewRedisAdapter(a.config.RedisAddr(), a.config.Redis.Password, a.config.Redis.DB)
		if err != nil {
			return err
		}
		a.cache = rc
	default:
		lc, err := cache.NewLocalAdapter(a.config.Cache.MaxCost)
		if err != nil {
			return err
		}
		a.cache = lc
	}
	a.closers = append(a.closers, a.cache)
	return nil
}

func (a *App) shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("close failed", "error", err)
		}
	}
	a.closers = nil
}

func describeError(err error) string {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve.Fields))
		for f := range ve.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		var b strings.Builder
		b.WriteString("Please fix the following:")
		for _, f := range fields {
			fmt.Fprintf(&b, "\n  %s: %s", f, ve.Fields[f])
		}
		return b.String()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "Interrupted"
	}
	return "Error: " + err.Error()
}

func shutdownContext(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), d)
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  prxwallet [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                              Run the local gateway")
	fmt.Println("  signup | login | logout | me       Account")
	fmt.Println("  passwd                             Change password")
	fmt.Println("  balance | price | history          Wallet reads")
	fmt.Println("  quote <amount> <PRX|USDT>          Equivalent amount")
	fmt.Println("  transfer <amount> <PRX|USDT> <to>  Send to another wallet")
	fmt.Println("  exchange <amount> <PRX|USDT>       Buy or sell PRX")
	fmt.Println("  card <amount> <PRX|USDT>           Card payment")
	fmt.Println("  receipts [limit]                   Journaled submissions")
	fmt.Println("  pin set | pin off                  Local PIN check")
	fmt.Println("  lock on | lock off                 Ask for the PIN on every start")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
