package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/api"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/config"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/db"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/notify"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/reminder"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/supabase"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
)

const (
	redisPrefix      = "barbershop:"
	metricsNamespace = "barbershop"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router *gin.Engine
	// Reminders is nil when the reminder job is disabled.
	Reminders *cron.Cron

	closers []func() error
}

// backend groups the data and auth collaborators of one DATA_BACKEND.
type backend struct {
	catalog      catalog.Repository
	appointments appointment.Repository
	profiles     user.ProfileRepository
	provider     auth.Provider
}

// NewContainer connects the configured backends and wires every module.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Container, err error) {
	c := &Container{}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, metricsNamespace)
	ready := map[string]func(context.Context) error{}

	hours, err := config.LoadHours(cfg.BusinessHoursFile)
	if err != nil {
		return nil, err
	}
	gen := schedule.NewGenerator(hours, cfg.Location, logger)

	// Shared state between API instances goes to Redis when configured.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.closers = append(c.closers, rdb.Close)
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var publisher notify.Publisher = notify.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kp := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		c.closers = append(c.closers, kp.Close)
		publisher = kp
	}

	var messenger notify.Messenger = notify.NewLogMessenger(logger)
	if cfg.TwilioEnabled() {
		messenger = notify.NewTwilioMessenger(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	}

	var be *backend
	switch cfg.DataBackend {
	case config.BackendSupabase:
		be, err = supabaseBackend(cfg)
	default:
		be, err = postgresBackend(ctx, c, cfg, rdb, publisher, logger, ready)
	}
	if err != nil {
		return nil, err
	}

	cat := catalog.NewCatalog(be.catalog)
	appointments := appointment.NewService(be.appointments, gen, publisher, m, logger, appointment.Options{
		RecheckConflicts: cfg.RecheckConflicts,
	})

	var store booking.Store = booking.NewMemoryStore(cfg.SessionTTL)
	if rdb != nil {
		store = booking.NewRedisStore(rdb, redisPrefix+"booking:", cfg.SessionTTL)
	}
	manager := booking.NewManager(store, cat, appointments, gen, m, logger)

	if cfg.ReminderCron != "" {
		job := reminder.NewJob(be.appointments, be.profiles, messenger, publisher, m, logger, cfg.Location)
		if c.Reminders, err = reminder.Schedule(job, cfg.ReminderCron); err != nil {
			return nil, err
		}
	}

	c.Router = api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Logger:       logger,
		Metrics:      m,
		Gatherer:     reg,
		Ready:        ready,
		Provider:     be.provider,
		Profiles:     user.NewService(be.profiles),
		Catalog:      cat,
		Appointments: appointments,
		Generator:    gen,
		Booking:      manager,
	})

	return c, nil
}

// postgresBackend keeps all data in Postgres and issues local JWTs.
func postgresBackend(
	ctx context.Context,
	c *Container,
	cfg *config.Config,
	rdb *redis.Client,
	publisher notify.Publisher,
	logger *slog.Logger,
	ready map[string]func(context.Context) error,
) (*backend, error) {
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error { pool.Close(); return nil })
	ready["postgres"] = pool.Ping

	var revoked auth.RevocationList = auth.NewMemoryRevocationList()
	if rdb != nil {
		revoked = auth.NewRedisRevocationList(rdb, redisPrefix+"revoked:")
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL, cfg.JWTResetTokenTTL)
	verifier := auth.NewJWTVerifier(jwtManager, revoked)

	users := user.NewPgxRepository(pool)
	return &backend{
		catalog:      catalog.NewPgxRepository(pool),
		appointments: appointment.NewPgxRepository(pool),
		profiles:     users,
		provider: user.NewLocalProvider(users, auth.NewBcryptPasswordHasher(cfg.BcryptCost),
			jwtManager, verifier, publisher, logger),
	}, nil
}

// supabaseBackend talks to the hosted project through PostgREST and GoTrue.
func supabaseBackend(cfg *config.Config) (*backend, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		return nil, err
	}
	return &backend{
		catalog:      catalog.NewSupabaseRepository(client),
		appointments: appointment.NewSupabaseRepository(client),
		profiles:     user.NewSupabaseProfileRepository(client),
		provider:     supabase.NewAuthProvider(client),
	}, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close container: %w", errors.Join(errs...))
	}
	return nil
}
