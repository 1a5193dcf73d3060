package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lillogorillo/Beam-App/internal/auth"
	"github.com/Lillogorillo/Beam-App/internal/cloudsync"
	"github.com/Lillogorillo/Beam-App/internal/config"
	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
	"github.com/Lillogorillo/Beam-App/internal/remote"
	"github.com/Lillogorillo/Beam-App/internal/store"
	"github.com/Lillogorillo/Beam-App/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := tui.NewNotifier()
	st, err := store.New(db,
		store.WithLogger(logger),
		store.WithNotifier(notifier),
		store.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	st.SyncSubtasks(cfg.SyncSubtasks)

	session, err := auth.Restore(db)
	if err != nil {
		return err
	}

	deps := tui.Deps{
		Ctx:      ctx,
		Store:    st,
		Settings: db,
		Notifier: notifier,
		Session:  session,
	}

	if cfg.SyncEnabled() {
		client := remote.New(cfg.APIURL,
			remote.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
			remote.WithLogger(logger),
			remote.WithAnonKey(cfg.AnonKey),
		)
		gw := cloudsync.NewGateway(client, st, session, logger)
		st.AttachRemote(gw)
		trigger := cloudsync.NewTrigger(gw, session,
			cloudsync.WithInterval(cfg.SyncInterval),
			cloudsync.WithTriggerLogger(logger),
		)
		go trigger.Run(ctx)
		if _, ok := session.Token(); ok {
			go func() {
				if err := trigger.CredentialAcquired(ctx); err != nil {
					logger.Warn("initial pull failed", "err", err)
				}
			}()
		}

		deps.Client, deps.Gateway, deps.Trigger = client, gw, trigger
		deps.SyncInfo = [][2]string{
			{"API", cfg.APIURL},
			{"Pull every", cfg.SyncInterval.String()},
			{"Sync subtasks", fmt.Sprint(cfg.SyncSubtasks)},
		}
	}

	settings, err := pomodoro.LoadSettings(db)
	if err != nil {
		logger.Warn("using default pomodoro settings", "err", err)
	}
	machine := pomodoro.New(settings)
	recorder := pomodoro.NewRecorder(machine, st, logger)
	defer recorder.Close()
	go pomodoro.Drive(ctx, machine, time.Second)
	deps.Machine, deps.Recorder = machine, recorder

	logger.Info("beam started", "db", cfg.DBPath, "sync", cfg.SyncEnabled())

	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen(), tea.WithReportFocus())
	_, err = p.Run()

	// Let in-flight pushes finish before the background loops stop.
	st.Wait()
	cancel()
	return err
}
