// Command chime is a terminal task scheduler that reminds you shortly before
// each task is due.
//
// Usage:
//
//	chime                     interactive task view
//	chime -agenda tasks.toml  start with the tasks listed in an agenda file
//	chime -watch -agenda f    reminder loop only, reminders go to stderr
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"chime/internal/agenda"
	"chime/internal/config"
	"chime/internal/logging"
	"chime/internal/reminder"
	"chime/internal/storage"
	"chime/internal/ui"
)

func main() {
	configFlag := flag.String("config", "", "path to config.toml (default: $CHIME_CONFIG or the user config dir)")
	agendaFlag := flag.String("agenda", "", "TOML agenda of tasks to load at start-up")
	watch := flag.Bool("watch", false, "run the reminder loop without the interactive view")
	flag.Parse()

	configPath := config.ResolveConfigPath(*configFlag)
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	timings, err := cfg.Reminder.Timings()
	if err != nil {
		fmt.Printf("invalid config: %v\n", err)
		os.Exit(1)
	}
	permission, err := reminder.ParsePermission(cfg.Notifications)
	if err != nil {
		fmt.Printf("invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := openLogger(cfg, *watch)
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	agendaPath := cfg.AgendaPath
	if *agendaFlag != "" {
		agendaPath = *agendaFlag
	}
	if agendaPath != "" {
		drafts, err := agenda.Load(agendaPath)
		if err != nil {
			fmt.Printf("failed to load agenda: %v\n", err)
			os.Exit(1)
		}
		n, err := agenda.Import(store, drafts)
		if err != nil {
			fmt.Printf("failed to import agenda: %v\n", err)
			os.Exit(1)
		}
		logger.Info("agenda loaded", "path", agendaPath, "tasks", n)
	}

	var sink reminder.NotificationSink = reminder.NopSink{}
	var gate reminder.Gate
	if permission != reminder.PermissionDenied {
		desktop := reminder.NewDesktopSink(permission, logger)
		sink, gate = desktop, desktop
	}
	engine := reminder.NewEngine(store, sink,
		reminder.WithThreshold(timings.Threshold),
		reminder.WithIcon(cfg.NotificationIcon),
		reminder.WithLogger(logger),
	)

	if *watch {
		if permission == reminder.PermissionDefault {
			logger.Warn("desktop notifications need notifications = \"granted\" in the config when running with -watch", "config", configPath)
		}
		if err := runWatch(engine, timings.CheckInterval, logger); err != nil {
			fmt.Printf("error running reminder loop: %v\n", err)
			os.Exit(1)
		}
		return
	}

	err = ui.Run(ui.Options{
		Store:   store,
		Engine:  engine,
		Gate:    gate,
		Keys:    cfg.Keys,
		Timings: timings,
		Logger:  logger,
	})
	if err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

func openLogger(cfg config.Config, watch bool) (*log.Logger, io.Closer, error) {
	if watch {
		logger, err := logging.New(os.Stderr, cfg.LogLevel)
		return logger, io.NopCloser(nil), err
	}
	path := cfg.LogPath
	if path == "" {
		path = config.DefaultLogPath()
	}
	return logging.OpenFile(path, cfg.LogLevel)
}

func runWatch(engine *reminder.Engine, interval time.Duration, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := reminder.NewScheduler(engine, interval, func(r reminder.Reminder) {
		logger.Warn(r.Banner, "due", r.Task.DisplayDue())
	}, logger)
	return s.Run(ctx)
}
