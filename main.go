package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insightdelivered/bank-notify/internal/announce"
	"github.com/insightdelivered/bank-notify/internal/api"
	"github.com/insightdelivered/bank-notify/internal/config"
	"github.com/insightdelivered/bank-notify/internal/feed"
	"github.com/insightdelivered/bank-notify/internal/models"
	"github.com/insightdelivered/bank-notify/internal/player"
	"github.com/insightdelivered/bank-notify/internal/settings"
	"github.com/insightdelivered/bank-notify/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	titleFlag := flag.String("title", "", "Notification title to dispatch")
	bodyFlag := flag.String("body", "", "Notification body to dispatch")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API")
	playFlag := flag.Bool("play", false, "Play announcements through the configured chime and speech commands")
	testFlag := flag.Bool("test", false, "Play the sample announcement and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Notification Announcer

Recognizes credit notifications from ACB, OCB, Techcombank and Vietinbank,
extracts the amount and announces it with a chime and Vietnamese speech.

Usage:
  bank-notify [flags] [notifications.jsonl ...]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Dispatch a single notification (prints the announcement)
  bank-notify -title "Biến động số dư" -body "Giao dịch: +300,000VND"

  # Replay a JSON-lines capture and speak each announcement
  bank-notify -play captured.jsonl

  # Read notifications from stdin
  tail -f feed.jsonl | bank-notify -play -

  # Run the HTTP API (POST /api/notify)
  bank-notify -serve -play

Each JSON line is {"title": "...", "body": "..."}.

Settings are kept in BANKNOTIFY_SETTINGS (default bank_preferences.yaml):
  ACB_enabled, OCB_enabled, Techcombank_enabled, Vietinbank_enabled, sound_volume
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("bank-notify v%s\n", version)
		os.Exit(0)
	}

	single := *titleFlag != "" || *bodyFlag != ""
	if *helpFlag || (!single && !*serveFlag && !*testFlag && flag.NArg() == 0) {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Failed to read configuration: %v\n", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	store, err := settings.Open(cfg.SettingsPath, logger)
	if err != nil {
		fatalf("%v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPlayer(cfg, *playFlag, logger)
	p.Start(ctx)
	defer p.Close()

	var journal *writer.Journal
	if cfg.JournalPath != "" {
		journal = &writer.Journal{Path: cfg.JournalPath}
	}

	proc := &feed.Processor{Settings: store, Player: p, Logger: logger}
	if journal != nil {
		proc.Journal = journal
	}

	if *serveFlag {
		if err := serve(ctx, cfg, store, p, journal, logger); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if *testFlag {
		_, volume := store.Snapshot()
		proc.Emit(ctx, announce.Sample(volume))
		return
	}

	if single {
		proc.Process(ctx, models.NotificationEvent{Title: *titleFlag, Body: *bodyFlag})
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(ctx, inputPath, proc); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func newPlayer(cfg config.Config, play bool, logger *slog.Logger) *player.Player {
	opts := player.Options{QueueSize: cfg.Audio.QueueSize, Logger: logger}
	if !play {
		return player.New(player.NopChime{}, &player.WriterSpeaker{W: os.Stdout}, opts)
	}
	chime := &player.CommandChime{Command: cfg.Audio.ChimeCommand, File: cfg.Audio.ChimeFile}
	speaker := &player.CommandSpeaker{Command: cfg.Audio.SpeechCommand, Voice: cfg.Audio.Voice}
	return player.New(chime, speaker, opts)
}

func serve(ctx context.Context, cfg config.Config, store *settings.Store, p *player.Player, journal *writer.Journal, logger *slog.Logger) error {
	h := &api.Handler{Settings: store, Player: p, Logger: logger}
	if journal != nil {
		h.Journal = journal
	}
	app := api.NewApp(h)

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errs <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func processFile(ctx context.Context, inputPath string, proc *feed.Processor) error {
	var in io.Reader = os.Stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("input file not found: %s", inputPath)
		}
		defer f.Close()
		in = f
	}

	stats, err := proc.ReadLines(ctx, in, inputPath)
	if err != nil {
		return err
	}
	slog.Info("input processed", "input", inputPath, "events", stats.Events, "malformed", stats.Malformed, "announced", stats.Announced)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
