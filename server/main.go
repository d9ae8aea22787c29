package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"courtly/api/routes"
	"courtly/internal/bookings"
	"courtly/internal/notifications"
	"courtly/internal/shared/clock"
	"courtly/internal/shared/config"
	"courtly/internal/shared/database"
	"courtly/internal/sweep"
	"courtly/pkg/cache"
	"courtly/pkg/logger"
	"courtly/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	loadEnvFile()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	log := logger.New()
	logger.SetDefault(log)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Error("failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cacheSvc := cache.NewService(db.GetRedisClient())

	limiter := ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
		Enabled:         cfg.RateLimit.Enabled,
		WindowDuration:  cfg.RateLimit.WindowDuration,
		DefaultRequests: cfg.RateLimit.DefaultRequests,
		PublicRequests:  cfg.RateLimit.PublicRequests,
		AuthRequests:    cfg.RateLimit.AuthRequests,
		BookingRequests: cfg.RateLimit.BookingRequests,
		ManagerRequests: cfg.RateLimit.ManagerRequests,
		HealthRequests:  cfg.RateLimit.HealthRequests,
	})

	// Booking events flow out through Kafka when enabled. The API keeps
	// working without the broker; events are simply not published.
	var notifier bookings.Notifier
	var producer notifications.Producer
	var consumer notifications.Consumer
	if cfg.Kafka.Enabled {
		producer, err = notifications.NewKafkaProducer(&notifications.KafkaProducerConfig{
			Brokers:   cfg.Kafka.Brokers,
			Topic:     cfg.Kafka.Topic,
			RetryMax:  3,
			TimeoutMs: 5000,
		}, log)
		if err != nil {
			log.Warn("kafka producer unavailable, booking events disabled", "error", err)
		} else {
			notifier = notifications.NewBookingNotifier(producer, log)
			defer producer.Close()
		}

		consumer = startNotificationConsumer(cfg, log)
		if consumer != nil {
			defer consumer.Stop()
		}
	}

	router := routes.NewRouter(cfg, db, cacheSvc, notifier, log)
	engine := setupEngine(cfg, log, limiter)
	router.SetupRoutes(engine, cacheSvc)

	// Time-driven slot transitions (expired, no-show, endgame) run on a
	// fixed interval against the same slot service the API uses.
	var sweepJobs *sweep.JobProcessor
	if cfg.Sweep.Enabled {
		sweeper := sweep.NewSweeper(router.SlotRepo, router.SlotService, clock.System(), log)
		sweepJobs = sweep.NewJobProcessor(sweeper, cfg.Sweep.Interval, log)
		sweepJobs.Start(context.Background())
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if sweepJobs != nil {
		sweepJobs.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// loadEnvFile loads .env from the working directory or its parent so the
// binary runs both from the repo root and from server/.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func setupEngine(cfg *config.Config, log *logger.Logger, limiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()

	engine.Use(requestLogger(log))
	engine.Use(gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if cfg.IsDevelopment() {
				return true
			}
			return strings.HasSuffix(origin, ".courtly.app")
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(ratelimit.Middleware(limiter))

	return engine
}

// startNotificationConsumer wires the email fan-out consumer. Any failure
// only disables confirmation emails; the API itself is unaffected.
func startNotificationConsumer(cfg *config.Config, log *logger.Logger) notifications.Consumer {
	emailer, err := notifications.NewSMTPEmailService(notifications.LoadSMTPConfig())
	if err != nil {
		log.Warn("smtp unavailable, booking emails disabled", "error", err)
		return nil
	}

	consumer, err := notifications.NewKafkaConsumer(&notifications.ConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		GroupID:  cfg.Kafka.GroupID,
		RetryMax: 3,
	}, emailer, log)
	if err != nil {
		log.Warn("kafka consumer unavailable, booking emails disabled", "error", err)
		return nil
	}

	if err := consumer.Start(context.Background()); err != nil {
		log.Warn("failed to start booking event consumer", "error", err)
		return nil
	}
	return consumer
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}
