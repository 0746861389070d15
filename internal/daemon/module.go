package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/matheus3301/guftagu/internal/api"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/ingress"
	"github.com/matheus3301/guftagu/internal/lock"
	"github.com/matheus3301/guftagu/internal/logging"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/outbox"
	"github.com/matheus3301/guftagu/internal/push"
	"github.com/matheus3301/guftagu/internal/sched"
	"github.com/matheus3301/guftagu/internal/session"
	"github.com/matheus3301/guftagu/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const program = "guftagud"

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	SocketPath  string         // optional override for testing; empty = use default
	Config      *config.Config // optional; nil = load config.toml and the environment
	Debug       bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideScheduler,
			provideLock,
			provideNotifier,
			provideStore,
			provideIndex,
			provideEngine,
			provideGateway,
			provideService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.Config != nil {
		return p.Config, nil
	}
	if err := config.LoadDotenv(session.EnvPath()); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName, program), p.SessionName, logging.Options{Console: true, Debug: p.Debug})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideScheduler(logger *zap.Logger) *sched.Scheduler {
	return sched.New(logger.Named("sched"))
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName), program)
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

// provideNotifier returns the web push notifier behind a retrying outbox,
// or nil when push is not configured. A nil notifier keeps notifications
// in-app only.
func provideNotifier(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (push.Notifier, error) {
	wp, err := push.NewWebPush(cfg.Push, &http.Client{Timeout: 10 * time.Second}, logger.Named("push"))
	if errors.Is(err, push.ErrNotConfigured) {
		logger.Info("web push not configured, notifications stay in-app")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sender := outbox.NewSender(wp, outbox.Options{}, logger.Named("outbox"))
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sender.Start(context.Background())
			return nil
		},
		OnStop: func(context.Context) error {
			sender.Stop()
			if n := sender.Pending(); n > 0 {
				logger.Warn("undelivered push notifications discarded", zap.Int("count", n))
			}
			return nil
		},
	})
	return sender, nil
}

func provideStore(cfg *config.Config, b *bus.Bus, sc *sched.Scheduler, notifier push.Notifier, logger *zap.Logger) *store.Store {
	// There is no toast surface in the daemon; notifications stay in the
	// feed until a client marks or clears them.
	timings := cfg.Timings
	timings.NotificationDismiss = 0

	opts := []store.Option{
		store.WithLogger(logger.Named("store")),
		store.WithBus(b),
		store.WithScheduler(sc),
		store.WithTimings(timings),
	}
	if notifier != nil {
		opts = append(opts, store.WithNotifier(notifier))
	}
	if cfg.Seed {
		opts = append(opts, store.WithSeed(store.DemoSeed(time.Now())))
	}
	st := store.New(opts...)
	stats := st.Stats()
	logger.Info("store initialized", zap.Bool("seeded", cfg.Seed), zap.Int("chats", stats.Chats), zap.Int("messages", stats.Messages))
	return st
}

func provideIndex(logger *zap.Logger) (*index.DB, error) {
	db, err := index.Open()
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	return db, nil
}

func provideEngine(db *index.DB, b *bus.Bus, logger *zap.Logger) *index.Engine {
	return index.NewEngine(db, b, logger.Named("index"))
}

// provideGateway ties the gateway's cache janitors to the app lifecycle.
func provideGateway(lc fx.Lifecycle, cfg *config.Config, st *store.Store, logger *zap.Logger) *ingress.Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return ingress.New(ctx, st, cfg.Ingress, logger.Named("ingress"))
}

func provideService(p Params, st *store.Store, gw *ingress.Gateway, engine *index.Engine, b *bus.Bus, logger *zap.Logger) *api.Service {
	return api.NewService(st, gw, engine, b, p.SessionName, logger.Named("api"))
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Lock      *lock.Lock
	Config    *config.Config
	Server    *Server
	Store     *store.Store
	Scheduler *sched.Scheduler
	Index     *index.DB
	Engine    *index.Engine
	Notifier  push.Notifier
	Logger    *zap.Logger
}

func registerLifecycle(lp lifecycleParams) {
	st, logger := lp.Store, lp.Logger
	lp.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			snap := func() ([]model.Chat, []model.Message) { return st.Chats(), allMessages(st) }
			if err := lp.Engine.StartFrom(context.Background(), snap); err != nil {
				return err
			}

			if lp.Notifier != nil {
				// Configuring a push subscription is the user's consent.
				reg := push.StaticRegistrar{Permission: push.PermissionGranted, Token: lp.Config.Push.Endpoint}
				perm, err := st.RequestPermission(ctx, reg)
				if err != nil {
					logger.Warn("push registration failed", zap.Error(err))
				} else {
					logger.Info("push permission", zap.String("permission", string(perm)))
				}
			}

			go func() {
				if err := lp.Server.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			lp.Server.Stop(ctx)
			lp.Engine.Stop()
			st.Close()
			lp.Scheduler.Stop()
			if err := lp.Index.Close(); err != nil {
				logger.Warn("error closing index", zap.Error(err))
			}
			if err := lp.Lock.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}

func allMessages(st *store.Store) []model.Message {
	var out []model.Message
	for _, c := range st.Chats() {
		out = append(out, st.Messages(c.ID)...)
	}
	return out
}
