package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/lock"
	"github.com/matheus3301/guftagu/internal/logging"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/outbox"
	"github.com/matheus3301/guftagu/internal/push"
	"github.com/matheus3301/guftagu/internal/sched"
	"github.com/matheus3301/guftagu/internal/session"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/matheus3301/guftagu/internal/tui"
	"go.uber.org/zap"
)

const program = "guftagu"

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(sessionName, *debugFlag); err != nil {
		var held *lock.LockHeldError
		if errors.As(err, &held) {
			fmt.Fprintf(os.Stderr, "session %q is in use by %s (pid %d)\n", sessionName, held.Holder.Program, held.Holder.PID)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(sessionName string, debug bool) error {
	if err := config.LoadDotenv(session.EnvPath()); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg)

	if err := session.EnsureDir(sessionName); err != nil {
		return err
	}
	l, err := lock.Acquire(session.Dir(sessionName), program)
	if err != nil {
		return err
	}
	defer func() { _ = l.Release() }()

	// The terminal belongs to the UI, so logs only go to the file.
	logger, err := logging.New(session.LogPath(sessionName, program), sessionName, logging.Options{Debug: debug})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	b := bus.New()
	sc := sched.New(logger.Named("sched"))
	defer sc.Stop()

	opts := []store.Option{
		store.WithLogger(logger.Named("store")),
		store.WithBus(b),
		store.WithScheduler(sc),
		store.WithTimings(cfg.Timings),
	}
	wp, err := push.NewWebPush(cfg.Push, &http.Client{Timeout: 10 * time.Second}, logger.Named("push"))
	var notifier *outbox.Sender
	switch {
	case errors.Is(err, push.ErrNotConfigured):
	case err != nil:
		return err
	default:
		notifier = outbox.NewSender(wp, outbox.Options{}, logger.Named("outbox"))
		opts = append(opts, store.WithNotifier(notifier))
	}
	if cfg.Seed {
		opts = append(opts, store.WithSeed(store.DemoSeed(time.Now())))
	}
	st := store.New(opts...)
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if notifier != nil {
		notifier.Start(ctx)
		defer notifier.Stop()

		reg := push.StaticRegistrar{Permission: push.PermissionGranted, Token: cfg.Push.Endpoint}
		if _, err := st.RequestPermission(ctx, reg); err != nil {
			logger.Warn("push registration failed", zap.Error(err))
		}
	}

	engine, closeIndex, err := openIndex(ctx, st, b, logger)
	if err != nil {
		// Search is optional; the chat itself works without it.
		logger.Error("search index unavailable", zap.Error(err))
	} else {
		defer closeIndex()
	}

	logger.Info("tui starting", zap.Bool("seeded", cfg.Seed))
	return tui.NewApp(st, b, engine, sessionName, logger.Named("tui")).Run(ctx)
}

func openIndex(ctx context.Context, st *store.Store, b *bus.Bus, logger *zap.Logger) (*index.Engine, func(), error) {
	db, err := index.Open()
	if err != nil {
		return nil, nil, err
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	engine := index.NewEngine(db, b, logger.Named("index"))
	snap := func() ([]model.Chat, []model.Message) {
		chats := st.Chats()
		var msgs []model.Message
		for _, c := range chats {
			msgs = append(msgs, st.Messages(c.ID)...)
		}
		return chats, msgs
	}
	if err := engine.StartFrom(ctx, snap); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return engine, func() {
		engine.Stop()
		_ = db.Close()
	}, nil
}
