package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/taskdeck/internal/cli"
	"github.com/alexanderramin/taskdeck/internal/config"
	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/httpapi"
	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logger.SetFormatter(log.JSONFormatter)
	}
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	todoRepo := repository.NewSQLiteTodoRepo(database)
	commentRepo := repository.NewSQLiteCommentRepo(database)
	historyRepo := repository.NewSQLiteHistoryRepo(database)
	attachmentRepo := repository.NewSQLiteAttachmentRepo(database)
	continuationRepo := repository.NewSQLiteContinuationRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	executor := remote.NewSSHExecutor(cfg.Remote, logger)
	defer executor.Close()
	controller := remote.NewController(executor, cfg.Remote.Session)

	svc := httpapi.Services{
		Todos:       service.NewTodoService(todoRepo, commentRepo, historyRepo, uow, cfg.AttachmentDir, observers...),
		Plans:       service.NewPlanService(todoRepo, uow, observers...),
		Continues:   service.NewContinueService(todoRepo, continuationRepo, uow, observers...),
		Remote:      service.NewRemoteService(controller, todoRepo, observers...),
		Attachments: service.NewAttachmentService(attachmentRepo, todoRepo, cfg.AttachmentDir, observers...),
		Screenshots: service.NewScreenshotService(cfg.Settings.ScreenshotDirs, observers...),
	}

	app := &cli.App{
		Todos:             svc.Todos,
		Plans:             svc.Plans,
		Continues:         svc.Continues,
		Remote:            svc.Remote,
		Attachments:       svc.Attachments,
		Screenshots:       svc.Screenshots,
		ScopeColors:       cfg.Settings.ScopeColors,
		DirectoryPresets:  cfg.Settings.DirectoryPresets,
		DefaultWorkingDir: cfg.DefaultWorkingDir,
		ListenAddr:        cfg.ListenAddr,
		Settings:          cfg.Settings,
		SettingsPath:      cfg.SettingsPath,
	}

	// Detect interactive terminal for forms.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Serve = func(ctx context.Context, addr string) error {
		if cfg.APIKey == "" {
			logger.Warn("TASKDECK_API_KEY is not set; the API is open to anyone who can reach it")
		}
		return httpapi.NewServer(svc, cfg.APIKey, logger).Serve(ctx, addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}
