package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nutrio/nutrio/internal/api"
	"github.com/nutrio/nutrio/internal/app/catalog"
	"github.com/nutrio/nutrio/internal/app/notify"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/health"
	"github.com/nutrio/nutrio/internal/infra/sqlite"
	"github.com/nutrio/nutrio/internal/logger"
)

const shutdownTimeout = 15 * time.Second

// Daemon is the core Nutrio runtime. It wires together all services.
type Daemon struct {
	Config        Config
	Log           zerolog.Logger
	DB            *sqlite.DB
	Catalog       *catalog.Catalog
	Engine        *progression.Engine
	Progression   *progression.Service
	Notifications *notify.Service
	Health        *health.Checker
	Server        *api.Server
	cancel        context.CancelFunc
}

// New loads the config and creates a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format))
}

// NewWithConfig creates a Daemon with the given configuration. Data lives
// under $NUTRIO_HOME.
func NewWithConfig(cfg Config, log zerolog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Engine.Location()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	home := nutrioHome()
	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	engine := progression.NewEngine(cat, progression.WithAchievementMilestones(cfg.Engine.AchievementMilestones))
	notes := notify.NewWithPolicy(db, cfg.Notifications)
	svc := progression.NewService(engine, db, log,
		progression.WithStreaks(db),
		progression.WithNotifier(notes),
		progression.WithLocation(loc),
		progression.WithMaxRetries(cfg.Engine.MaxRetries),
	)

	srv := api.NewServer(svc, notes, log)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetRateLimit(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst)

	hc := health.NewChecker(db, cat, home)
	srv.SetHealth(hc)

	return &Daemon{
		Config:        cfg,
		Log:           log,
		DB:            db,
		Catalog:       cat,
		Engine:        engine,
		Progression:   svc,
		Notifications: notes,
		Health:        hc,
		Server:        srv,
	}, nil
}

// Serve starts the HTTP server and background jobs, and blocks until
// SIGINT/SIGTERM or ctx cancellation.
func (d *Daemon) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.Config.API.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.Config.API.Addr(), err)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.serve(ctx, ln)
}

func (d *Daemon) serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	httpServer := &http.Server{
		Handler:      d.Server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	scheduler, err := d.scheduler()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Health.Run(gctx)
		return nil
	})

	g.Go(func() error {
		d.Log.Info().Str("addr", ln.Addr().String()).Bool("metrics", d.Config.Telemetry.Prometheus).Msg("server starting")
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if scheduler != nil {
		scheduler.Start()
	}

	g.Go(func() error {
		<-gctx.Done()
		d.Log.Info().Msg("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Error().Err(err).Msg("server shutdown failed")
			return err
		}
		d.Log.Info().Msg("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// scheduler builds the cron runner for the daily prune job, or nil when
// no schedule is configured.
func (d *Daemon) scheduler() (*cron.Cron, error) {
	if d.Config.Engine.PruneSchedule == "" {
		return nil, nil
	}
	loc, err := d.Config.Engine.Location()
	if err != nil {
		return nil, err
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(d.Config.Engine.PruneSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := d.Prune(ctx); err != nil {
			d.Log.Error().Err(err).Msg("scheduled prune failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule prune: %w", err)
	}
	return c, nil
}

// Prune drops stale daily cap buckets for every user.
func (d *Daemon) Prune(ctx context.Context) (int, error) {
	n, err := d.Progression.PruneAll(ctx)
	if err != nil {
		return n, err
	}
	d.Log.Info().Int("users", n).Msg("pruned stale daily buckets")
	return n, nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
