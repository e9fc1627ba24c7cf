package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/suraksha-api/config"
	"github.com/oksasatya/suraksha-api/internal/container"
	"github.com/oksasatya/suraksha-api/internal/infrastructure/mailqueue"
	"github.com/oksasatya/suraksha-api/internal/infrastructure/newsletter"
	"github.com/oksasatya/suraksha-api/internal/infrastructure/objectstore"
	pginfra "github.com/oksasatya/suraksha-api/internal/infrastructure/postgres"
	"github.com/oksasatya/suraksha-api/internal/infrastructure/search"
	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
	"github.com/oksasatya/suraksha-api/internal/router"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
	"github.com/oksasatya/suraksha-api/pkg/mailer"
	"github.com/oksasatya/suraksha-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.AppName, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		logger.Fatalf("failed to reach redis: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL))
	container.SetSigner(helpers.NewURLSigner(cfg.AppURL, cfg.SigningKey))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	closeStorage := setupStorage(ctx, cfg, logger, r)
	defer closeStorage()
	closeMail := setupMail(cfg, logger)
	defer closeMail()
	setupSearch(ctx, cfg, logger)

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r, cfg.SupportEmail)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// setupStorage picks the avatar backend from STORAGE_DRIVER. Local files
// are served by this process under /storage.
func setupStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger, r *gin.Engine) func() {
	switch cfg.StorageDriver {
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init GCS client: %v", err)
		}
		gw, err := objectstore.NewGCS(client, cfg.GCSBucket, cfg.GCSSignedURLs, cfg.GCSSignedURLTTL)
		if err != nil {
			logger.Fatalf("failed to init GCS storage: %v", err)
		}
		container.SetGCS(client)
		container.SetStorage(gw)
		logger.WithField("bucket", cfg.GCSBucket).Info("storage: gcs")
		return func() { _ = client.Close() }
	case "local", "":
		gw, err := objectstore.NewLocal(cfg.StorageLocalRoot, cfg.StoragePublicURL)
		if err != nil {
			logger.Fatalf("failed to init local storage: %v", err)
		}
		r.Static("/storage", gw.Root())
		container.SetStorage(gw)
		logger.WithField("root", gw.Root()).Info("storage: local")
		return func() {}
	default:
		logger.Fatalf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
		return func() {}
	}
}

// setupMail wires account email delivery (queue first, direct Mailgun as
// fallback) and the newsletter mailing list.
func setupMail(cfg *config.Config, logger *logrus.Logger) func() {
	var mg *mailer.Mailgun
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		mg = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		container.SetMailgun(mg)
		if cfg.MailgunNewsletterList != "" {
			list, err := newsletter.NewMailgunList(mg.Client(), cfg.MailgunNewsletterList)
			if err != nil {
				logger.WithError(err).Warn("newsletter list disabled")
			} else {
				container.SetNewsletterList(list)
			}
		}
	}

	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; account emails are not dispatched")
		return func() {}
	}

	if cfg.RabbitMQURL != "" && cfg.RabbitMQEmailQueue != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err == nil {
			container.SetRabbitPub(pub)
			container.SetMailer(mailqueue.NewQueueDispatcher(pub, cfg))
			logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("mail: queued")
			return pub.Close
		}
		logger.WithError(err).Warn("rabbitmq unavailable")
	}
	if mg != nil {
		container.SetMailer(mailqueue.NewDirectDispatcher(mg, cfg))
		logger.Info("mail: direct mailgun")
		return func() {}
	}
	logger.Warn("no mail transport configured; account emails are not dispatched")
	return func() {}
}

// setupSearch enables the user directory when Elasticsearch answers.
func setupSearch(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return
	}
	es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
		return
	}
	if err := helpers.PingES(ctx, es); err != nil {
		logger.WithError(err).Warn("elasticsearch unreachable; user directory disabled")
		return
	}
	idx, err := search.NewUserIndexer(es, cfg.ESUsersIndex)
	if err != nil {
		logger.WithError(err).Warn("user directory disabled")
		return
	}
	container.SetES(es)
	container.SetIndexer(idx)
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
