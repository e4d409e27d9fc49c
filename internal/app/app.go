// Package app wires application components.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"clinic-api/internal/adapter/notify"
	"clinic-api/internal/adapter/rest"
	"clinic-api/internal/adapter/scheduler"
	"clinic-api/internal/config"
	"clinic-api/internal/platform/filestore"
	"clinic-api/internal/platform/logger"
	"clinic-api/internal/platform/pg"
	"clinic-api/internal/platform/token"
	"clinic-api/internal/repo"
	"clinic-api/internal/service"
)

// App wires application components.
type App struct {
	cfg config.Config
	log *slog.Logger
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "clinic-api",
	})
	return &App{cfg: cfg, log: log}, nil
}

// maintenanceStore bridges the repositories onto the scheduler's surface.
type maintenanceStore struct {
	appointments *repo.AppointmentRepo
	schedules    *repo.ScheduleRepo
}

func (m maintenanceStore) CompletePastAppointments(ctx context.Context, before time.Time) (int64, error) {
	return m.appointments.CompletePast(ctx, before)
}

func (m maintenanceStore) ClosePastSchedules(ctx context.Context, before time.Time) (int64, error) {
	return m.schedules.ClosePast(ctx, before)
}

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.log.Info("starting", "env", a.cfg.Env)
	defer logger.Close(a.log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pg.WaitForDB(ctx, a.cfg.DB.URL, 30*time.Second); err != nil {
		return err
	}
	info, err := pg.ApplyMigrations(a.cfg.DB.URL, a.cfg.DB.MigrationsPath)
	if err != nil {
		return err
	}
	a.log.Info("migrations applied", "version", info.FinalVersion, "dirty", info.Dirty)

	pool, err := pg.NewPool(ctx, a.cfg.DB.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	tx := pg.NewTxRunner(pool)
	doctors := repo.NewDoctorRepo(tx)
	schedules := repo.NewScheduleRepo(tx)
	appointments := repo.NewAppointmentRepo(tx)
	users := repo.NewUserRepo(tx)

	var notifier service.Notifier
	if a.cfg.Telegram.Token != "" {
		tn, err := notify.NewTelegramNotifier(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, a.log)
		if err != nil {
			return err
		}
		notifier = tn
	}

	files, err := filestore.NewDisk(a.cfg.Upload.Dir, a.cfg.Upload.MaxSize)
	if err != nil {
		return err
	}

	tokens := token.NewManager(a.cfg.JWT.Secret, a.cfg.JWT.Issuer, a.cfg.JWT.TTL)

	scheduleSvc := service.NewScheduleService(tx, doctors, schedules)
	doctorSvc := service.NewDoctorService(tx, doctors, files)
	appointmentSvc := service.NewAppointmentService(tx, doctors, schedules, appointments, scheduleSvc, notifier)
	userSvc := service.NewUserService(tx, users, tokens)

	errRouter := rest.NewErrorRouter(a.log, pg.ClassifyError)
	handlers := rest.NewHandlers(doctorSvc, scheduleSvc, appointmentSvc, userSvc, errRouter)
	router := rest.NewRouter(rest.RouterOptions{
		Handlers: handlers,
		Errors:   errRouter,
		Verifier: tokens,
		Logger:   a.log,
		Health: func(ctx context.Context) error {
			return pg.HealthCheckPool(ctx, pool)
		},
		Debug: a.cfg.Env == "dev",
	})

	jobs := scheduler.New(a.log)
	err = scheduler.RegisterJobs(jobs, maintenanceStore{appointments: appointments, schedules: schedules}, scheduler.JobSpecs{
		CompleteAppointments: a.cfg.Jobs.CompleteAppointments,
		CloseSchedules:       a.cfg.Jobs.CloseSchedules,
	}, a.log)
	if err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{Addr: a.cfg.HTTP.Addr, Handler: router}
	go func() {
		a.log.Info("listening", "addr", a.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server", slog.Any("err", err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
