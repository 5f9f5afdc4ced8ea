package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-registration/internal/auth"
	"ms-registration/internal/config"
	"ms-registration/internal/database/migrations"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/mailer"
	"ms-registration/internal/payment"
	"ms-registration/internal/registration"
	"ms-registration/internal/registration/api"
	regredis "ms-registration/internal/registration/redis"
	usersdb "ms-registration/internal/users/db"
	workshopsdb "ms-registration/internal/workshops/db"

	discountsdb "ms-registration/internal/discounts/db"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewLogger()
	defer log.Close()

	cfg := config.Load()

	db, err := connectPostgres(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("failed to connect to postgres: %v", err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(cfg.Database.DSN, "migrations"); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("migrations failed: %v", err))
		}
		log.Info("DATABASE", "migrations applied")
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("failed to connect to redis at %s: %v", cfg.Redis.Addr, err))
	}
	defer redisClient.Close()
	log.Info("REDIS", "connected to "+cfg.Redis.Addr)

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.RegistrationCompleted, cfg.Kafka.Topics.PaymentFailed}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("topic setup failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		log.Info("KAFKA", fmt.Sprintf("producer ready, brokers %v", cfg.Kafka.Brokers))
	} else {
		log.Warn("KAFKA", "disabled, registration events will not be published")
	}

	signer, err := payment.NewSigner(cfg.Gateway.SignKey)
	if err != nil {
		log.Fatal("GATEWAY", fmt.Sprintf("invalid sign key: %v", err))
	}
	gatewayClient := payment.NewGatewayClient(cfg.Gateway.BaseURL, &http.Client{Timeout: 10 * time.Second}, log)

	service := &registration.Service{
		Users:     &usersdb.DB{Bun: db},
		Workshops: &workshopsdb.DB{Bun: db},
		Discounts: &discountsdb.DB{Bun: db},
		Gateway:   gatewayClient,
		Signer:    signer,
		Locks:     regredis.NewLock(redisClient),
		Audit:     registration.NewAuditLog(cfg.Gateway.AuditLogPath),
		Cfg:       cfg.Gateway,
		Topics:    cfg.Kafka.Topics,
		Logger:    log,
	}
	if producer != nil {
		service.Events = producer
	}

	handler := &api.Handler{
		Service:       service,
		Logger:        log,
		ResultPageURL: cfg.Gateway.ResultPageURL,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RegistrationCompleted, cfg.Kafka.GroupID)
		defer consumer.Close()
		welcome := mailer.NewMailer(cfg.Email, log)
		go welcome.Run(rootCtx, consumer)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	// The gateway posts the callback here; it carries no user token.
	r.Post("/verifypayment", handler.VerifyPayment)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret))
		r.Post("/initpayment", handler.InitPayment)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "listening on "+cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("server error: %v", err))
		}
	}()

	<-rootCtx.Done()
	log.Info("SERVER", "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SERVER", fmt.Sprintf("graceful shutdown failed: %v", err))
	}
	log.Info("SERVER", "stopped")
}

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	// The database container may still be starting; retry before giving up.
	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		pingErr = sqldb.Ping()
		if pingErr == nil {
			log.Info("DATABASE", "connected to postgres")
			return bun.NewDB(sqldb, pgdialect.New()), nil
		}
		log.Warn("DATABASE", fmt.Sprintf("postgres not ready (attempt %d/5): %v", attempt, pingErr))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, pingErr
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}
