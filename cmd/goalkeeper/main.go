package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeanpaul/goalkeeper/internal/config"
	"github.com/jeanpaul/goalkeeper/internal/discord"
	"github.com/jeanpaul/goalkeeper/internal/health"
	"github.com/jeanpaul/goalkeeper/internal/provider"
	"github.com/jeanpaul/goalkeeper/internal/router"
	"github.com/jeanpaul/goalkeeper/internal/store"
)

var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "Print version")
	storeFlag := flag.String("store", "", "Override the objective store path")
	flag.Usage = showHelp
	flag.Parse()

	if *versionFlag {
		fmt.Printf("goalkeeper %s\n", version)
		os.Exit(0)
	}

	if args := flag.Args(); len(args) > 0 && args[0] == "init" {
		path, err := config.WriteDefault()
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Wrote %s — fill in DISCORD_TOKEN and ANTHROPIC_API_KEY.\n", path)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *storeFlag != "" {
		cfg.Store.Path = *storeFlag
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "doctor":
			cmdDoctor(cfg)
			return
		case "run":
			// fall through to the default mode
		default:
			fatal("unknown command %q (try: goalkeeper, goalkeeper init, goalkeeper doctor)", args[0])
		}
	}

	run(cfg)
}

func run(cfg *config.Config) {
	if err := cfg.RequireDiscordToken(); err != nil {
		fatal("%v", err)
	}
	if err := cfg.RequireAnthropicKey(); err != nil {
		fatal("%v", err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		var corrupt *store.CorruptError
		if errors.As(err, &corrupt) {
			// Never auto-repair; the operator decides what happens to the file.
			fatal("Objective store is corrupt: %v\nMove or repair %s and restart.", corrupt.Err, corrupt.Path)
		}
		fatal("Failed to open objective store: %v", err)
	}

	ai := provider.WithRetry(
		provider.NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL, cfg.Anthropic.Timeout()),
		cfg.Anthropic.MaxRetries,
	)

	rt := router.New(st, ai, router.Options{
		Prefix:         cfg.Discord.Prefix,
		PageSize:       cfg.PageSize,
		TransportLimit: cfg.TransportLimit,
	}, logger)

	bot, err := discord.New(cfg.Discord.Token, cfg.Discord.Prefix, rt, logger)
	if err != nil {
		fatal("Failed to create Discord session: %v", err)
	}
	if err := bot.Start(); err != nil {
		fatal("Failed to connect to Discord: %v", err)
	}

	logger.Info("goalkeeper running",
		zap.String("store", cfg.Store.Path),
		zap.String("model", cfg.Anthropic.Model),
		zap.Int("objectives", st.Count()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := bot.Stop(); err != nil {
		logger.Warn("closing Discord session", zap.Error(err))
	}
}

func cmdDoctor(cfg *config.Config) {
	statuses := health.Check(context.Background(), cfg)
	failed := false
	for _, s := range statuses {
		if s.OK {
			fmt.Printf("✅ %-10s %s (%s)\n", s.Component, s.Detail, s.Latency.Round(time.Millisecond))
			continue
		}
		failed = true
		fmt.Printf("❌ %-10s %s\n", s.Component, s.Error)
	}
	if failed {
		os.Exit(1)
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		fatal("Failed to build logger: %v", err)
	}
	return logger
}

func showHelp() {
	fmt.Println(`goalkeeper — Discord bot for recording team objectives as SMART goals

Usage:
  goalkeeper [flags]          start the bot
  goalkeeper init             write a starter config.yaml
  goalkeeper doctor           check config, store, and API connectivity
  goalkeeper -version         print version

Flags:
  -store <path>   override the objective store path

Configuration is read from config.yaml (., $XDG_CONFIG_HOME/goalkeeper,
~/.config/goalkeeper) and GOALKEEPER_* environment variables. Secrets can
be given as $DISCORD_TOKEN / $ANTHROPIC_API_KEY references.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
