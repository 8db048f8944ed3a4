package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/tgsampler/internal/backend"
	"github.com/nextlevelbuilder/tgsampler/internal/bus"
	"github.com/nextlevelbuilder/tgsampler/internal/channels/telegram"
	"github.com/nextlevelbuilder/tgsampler/internal/config"
	"github.com/nextlevelbuilder/tgsampler/internal/sampling"
	"github.com/nextlevelbuilder/tgsampler/internal/telemetry"
	"github.com/nextlevelbuilder/tgsampler/internal/tools"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and MCP server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	// stdout carries the MCP stdio transport, so all logging goes to stderr.
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Telegram.Token == "" {
		slog.Error("telegram token not configured, set TGSAMPLER_TELEGRAM_TOKEN")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}

	msgBus := bus.NewMessageBus()

	tgChannel, err := telegram.New(cfg.Telegram, msgBus)
	if err != nil {
		slog.Error("failed to create telegram channel", "error", err)
		os.Exit(1)
	}

	sampler := backend.NewMCPSampler()

	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		sampler.BindSession(session)
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		sampler.UnbindSession(session)
	})

	srv := server.NewMCPServer(cfg.Server.Name, cfg.Server.Version,
		server.WithToolCapabilities(false),
		server.WithHooks(hooks),
	)
	srv.EnableSampling()
	sampler.Attach(srv)

	tools.Register(srv, tgChannel.NewService())

	dispatcher := sampling.NewDispatcher(
		&cfg.Sampling,
		sampling.NewRegistry(cfg.Sampling.Templates),
		sampling.NewLimiter(cfg.Sampling.RateLimitPerUser, cfg.Sampling.RateLimitPerChat),
		sampler,
		tgChannel,
		sampling.NewIdentityResolver(tgChannel.BotHandle),
	)

	if cfg.Sampling.IsEnabled() {
		if err := tgChannel.Start(ctx); err != nil {
			slog.Error("failed to start telegram channel", "error", err)
			os.Exit(1)
		}
		go consumeInbound(ctx, msgBus, dispatcher)
	} else {
		slog.Info("sampling disabled, serving tools only")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ServeStdio(srv)
	}()
	slog.Info("mcp server listening on stdio", "name", cfg.Server.Name, "version", cfg.Server.Version)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("mcp server exited", "error", err)
		}
	}

	if tgChannel.IsRunning() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := tgChannel.Stop(stopCtx); err != nil {
			slog.Warn("telegram channel stop failed", "error", err)
		}
	}
	msgBus.Close()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetryShutdown(flushCtx); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}
}

// consumeInbound drains the bus, dispatching each event on its own
// goroutine so a slow backend call never delays the next event.
func consumeInbound(ctx context.Context, msgBus *bus.MessageBus, dispatcher *sampling.Dispatcher) {
	for {
		ev, ok := msgBus.ConsumeInbound()
		if !ok {
			return
		}
		go func(ev bus.InboundEvent) {
			state, err := dispatcher.Dispatch(ctx, ev.Event)
			if err != nil {
				slog.Error("dispatch failed",
					"channel", ev.Channel,
					"kind", ev.Event.Kind,
					"chat_id", ev.Event.ChatID,
					"state", state,
					"error", err)
			}
		}(ev)
	}
}
