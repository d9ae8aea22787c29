package routes

import (
	"context"
	"net/http"
	"time"

	"courtly/internal/auth"
	"courtly/internal/bookings"
	"courtly/internal/catalog"
	"courtly/internal/shared/clock"
	"courtly/internal/shared/config"
	"courtly/internal/shared/database"
	"courtly/internal/slots"
	"courtly/internal/users"
	"courtly/internal/wallet"
	"courtly/pkg/cache"
	"courtly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router wires repositories, services and controllers for every domain and
// registers their routes. The assembled service handles are exported so the
// binary can hook background workers (expiry sweep) onto the same instances.
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger

	// SlotRepo and SlotService are reused by the expiry sweep.
	SlotRepo    slots.Repository
	SlotService slots.Service

	catalogRepo    catalog.Repository
	walletService  wallet.Service
	authService    auth.Service
	bookingService bookings.Service
}

// NewRouter builds the full dependency graph. notifier may be nil when event
// publishing is disabled; bookings degrade gracefully without it.
func NewRouter(cfg *config.Config, db *database.DB, cacheSvc cache.Service, notifier bookings.Notifier, log *logger.Logger) *Router {
	pg := db.GetPostgreSQL()
	clk := clock.System()

	catalogRepo := catalog.NewRepository(pg)
	slotRepo := slots.NewRepository(pg)
	walletRepo := wallet.NewRepository(pg)
	authRepo := auth.NewRepository(pg)
	bookingRepo := bookings.NewRepository(pg)

	walletService := wallet.NewService(walletRepo, log, cfg.Booking.InitialCoins)

	slotService := slots.NewService(slotRepo, catalogRepo, cacheSvc, clk, log,
		cfg.Booking.DefaultSlotPrice, cfg.Redis.SlotViewTTL)

	bookingService := bookings.NewService(bookingRepo, slotRepo, catalogRepo,
		auth.NewUserDirectoryAdapter(authRepo), notifier, clk, log, cfg.Booking.CancelWindow)

	// Terminal slot states propagate to their booking through this hook;
	// set after construction to break the slots <-> bookings cycle.
	slotService.SetPropagator(bookingService)

	// New accounts start with a coin grant.
	authService := auth.NewService(authRepo, cfg, log, func(ctx context.Context, user users.User) error {
		return walletService.GrantInitial(ctx, user.ID)
	})

	return &Router{
		config:         cfg,
		db:             db,
		log:            log,
		SlotRepo:       slotRepo,
		SlotService:    slotService,
		catalogRepo:    catalogRepo,
		walletService:  walletService,
		authService:    authService,
		bookingService: bookingService,
	}
}

// SetupRoutes registers all application routes on the engine.
func (r *Router) SetupRoutes(engine *gin.Engine, cacheSvc cache.Service) {
	r.setupHealthRoutes(engine)

	v1 := engine.Group(r.config.GetAPIBasePath())
	{
		auth.NewRouter(auth.NewController(r.authService), r.config).SetupRoutes(v1)
		catalog.SetupCatalogRoutes(v1, catalog.NewController(r.catalogRepo, cacheSvc))
		slots.SetupSlotRoutes(v1, slots.NewController(r.SlotService))
		wallet.SetupWalletRoutes(v1, wallet.NewController(r.walletService))
		bookings.SetupBookingRoutes(v1, bookings.NewController(r.bookingService))
	}
}

// setupHealthRoutes configures health check endpoints
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := r.db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
				"time":   time.Now().UTC(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "courtly-api",
			"version": r.config.APIVersion,
			"time":    time.Now().UTC(),
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
