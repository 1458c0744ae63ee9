package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	TokenTTL      time.Duration

	// DatabaseURL selects the Postgres-backed user store when set.
	DatabaseURL string

	// S3 blob storage; the in-memory store is used when Bucket is empty.
	S3Bucket string
	S3Region string

	// Kafka audit sink; the in-memory audit store is used when empty.
	KafkaBrokers string
	AuditTopic   string

	// AuditBuffer is the async audit publisher's channel size.
	AuditBuffer int

	Redis RedisConfig
}

// RedisConfig holds connection settings for the optional Redis record store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

var defaultTokenTTL = 30 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("KYCGATE_ADDR")
	if addr == "" {
		addr = ":8003"
	}

	environment := os.Getenv("KYCGATE_ENV")
	if environment == "" {
		environment = "development"
	}

	tokenTTL := defaultTokenTTL
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if duration, err := time.ParseDuration(raw); err == nil {
			tokenTTL = duration
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditBuffer := 256
	if raw := os.Getenv("AUDIT_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			auditBuffer = n
		}
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "kycgate.audit"
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	return Server{
		Addr:          addr,
		Environment:   environment,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      region,
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		AuditTopic:    auditTopic,
		AuditBuffer:   auditBuffer,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}
