package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/appointment"
	apptHttp "github.com/nekogravitycat/barbershop-booking-backend/internal/appointment/http"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/barbershop-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"
	catalogHttp "github.com/nekogravitycat/barbershop-booking-backend/internal/catalog/http"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/schedule"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/barbershop-booking-backend/internal/user/http"
)

// readyTimeout bounds each readiness probe.
const readyTimeout = 2 * time.Second

// Config carries everything the router wires into handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Ready probes backing services; a nil entry is skipped.
	Ready map[string]func(context.Context) error

	Provider     auth.Provider
	Profiles     user.Service
	Catalog      catalog.Catalog
	Appointments appointment.Service
	Generator    *schedule.Generator
	Booking      *booking.Manager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request id, access log, metrics, CORS, auth) and registers every module's routes.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestID(), AccessLog(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", readyHandler(cfg.Ready))
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authMiddleware := auth.AuthRequired(cfg.Provider)
	optionalAuth := auth.OptionalAuth(cfg.Provider)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHttp.NewHandler(cfg.Provider, cfg.Profiles), authMiddleware)
		catalogHttp.RegisterRoutes(v1, catalogHttp.NewHandler(cfg.Catalog))
		apptHttp.RegisterRoutes(v1, apptHttp.NewHandler(cfg.Appointments, cfg.Catalog, cfg.Generator), authMiddleware, optionalAuth)
		bookingHttp.RegisterRoutes(v1, bookingHttp.NewHandler(cfg.Booking), authMiddleware, optionalAuth)
	}

	return r
}

func readyHandler(checks map[string]func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		failed := gin.H{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
