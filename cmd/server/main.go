package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"kycgate/internal/audit"
	"kycgate/internal/blobstore"
	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/database"
	"kycgate/internal/platform/health"
	"kycgate/internal/platform/httpserver"
	"kycgate/internal/platform/kafka/producer"
	"kycgate/internal/platform/logger"
	"kycgate/internal/platform/metrics"
	platformredis "kycgate/internal/platform/redis"
	"kycgate/internal/registration"
	httptransport "kycgate/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	m := metrics.New()
	healthHandler := health.New(cfg.Environment)

	users, cleanupStores, err := buildUserStore(cfg, log, healthHandler)
	if err != nil {
		return err
	}
	defer cleanupStores()

	blobs, err := buildBlobStore(cfg, log)
	if err != nil {
		return err
	}

	auditPublisher, closeAudit, err := buildAuditPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "kycgate", "kycgate", cfg.TokenTTL)
	tokens := jwttoken.NewJWTServiceAdapter(jwtService)

	service := registration.NewService(
		users,
		blobs,
		tokens,
		tokens,
		registration.WithLogger(log),
		registration.WithMetrics(m),
		registration.WithAuditPublisher(auditPublisher),
	)

	handler := httptransport.NewHandler(service, log)
	router := httptransport.NewRouter(handler, healthHandler, m, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting kycgate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// buildUserStore picks the record store from configuration: Postgres when a
// database URL is set, Redis when a Redis URL is set, in-memory otherwise.
func buildUserStore(cfg config.Server, log *slog.Logger, healthHandler *health.Handler) (registration.UserStore, func(), error) {
	if cfg.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		pool, err := database.New(dbCfg)
		if err != nil {
			return nil, nil, err
		}
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		log.Info("using postgres user store")
		return registration.NewPostgres(pool.DB()), func() {
			_ = pool.Close() //nolint:errcheck // shutdown cleanup
		}, nil
	}

	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Health(ctx)
		})
		log.Info("using redis user store")
		return registration.NewRedis(client.Client), func() {
			_ = client.Close() //nolint:errcheck // shutdown cleanup
		}, nil
	}

	log.Warn("no record store configured, using in-memory store")
	return registration.NewInMemoryUserStore(), func() {}, nil
}

// buildBlobStore returns the S3 store when a bucket is configured and falls
// back to the in-memory store for local development.
func buildBlobStore(cfg config.Server, log *slog.Logger) (registration.BlobStore, error) {
	if cfg.S3Bucket == "" {
		log.Warn("no blob bucket configured, using in-memory blob store")
		return blobstore.NewInMemoryStore(), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
	)
	if err != nil {
		return nil, err
	}
	log.Info("using s3 blob store", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	return blobstore.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Region), nil
}

// buildAuditPublisher wires the async audit pipeline: Kafka-backed when
// brokers are configured, in-memory otherwise.
func buildAuditPublisher(cfg config.Server, log *slog.Logger) (*audit.Publisher, func(), error) {
	if cfg.KafkaBrokers == "" {
		log.Warn("no kafka brokers configured, auditing to memory")
		publisher := audit.NewPublisher(audit.NewInMemoryStore(),
			audit.WithAsyncBuffer(cfg.AuditBuffer),
			audit.WithPublisherLogger(log),
		)
		return publisher, publisher.Close, nil
	}

	kafkaProducer, err := producer.New(producer.Config{
		Brokers:         cfg.KafkaBrokers,
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	publisher := audit.NewPublisher(audit.NewKafkaStore(kafkaProducer, cfg.AuditTopic),
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	log.Info("auditing to kafka", "topic", cfg.AuditTopic)
	cleanup := func() {
		publisher.Close()
		kafkaProducer.Close()
	}
	return publisher, cleanup, nil
}
