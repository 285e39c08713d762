package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"skillgap-backend/internal/shared/storage/db"
	"skillgap-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	Debug           bool

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	DBPingTimeout     time.Duration
	DBConnectAttempts int

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	AdzunaAppID    string
	AdzunaAppKey   string
	AdzunaCountry  string
	AdzunaBaseURL  string
	JobsMaxResults int
	JobsParallel   bool
	JobsTimeout    time.Duration

	RedisAddr     string
	RedisPassword string
	JobsCacheTTL  time.Duration

	QueueBackend         string
	SQSQueueURL          string
	SQSVisibilityTimeout int
	AMQPURL              string
	AMQPQueue            string
	WorkerConcurrency    int
	ShutdownTimeout      time.Duration

	JWTSecret string

	SkillMatchMode      string
	SkillNounEnrichment bool
	ClusterSeed         uint64

	AnalysesPerMinute int
}

// Load reads configuration from environment variables with defaults. Local
// .env files are applied first without overriding the real environment.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		Debug:           getEnvBool("DEBUG", false),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 0),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 0),
		DBConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 0),
		DBPingTimeout:     getEnvDuration("DB_PING_TIMEOUT", 0),
		DBConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 0),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		AdzunaAppID:    getEnv("ADZUNA_APP_ID", ""),
		AdzunaAppKey:   getEnv("ADZUNA_APP_KEY", ""),
		AdzunaCountry:  getEnv("ADZUNA_COUNTRY", "in"),
		AdzunaBaseURL:  getEnv("ADZUNA_BASE_URL", ""),
		JobsMaxResults: getEnvInt("JOBS_MAX_RESULTS", 50),
		JobsParallel:   getEnvBool("JOBS_PARALLEL_PAGES", false),
		JobsTimeout:    getEnvDuration("JOBS_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		JobsCacheTTL:  getEnvDuration("JOBS_CACHE_TTL", time.Hour),

		QueueBackend:         normalizeQueue(getEnv("QUEUE_BACKEND", "")),
		SQSQueueURL:          getEnv("SQS_QUEUE_URL", ""),
		SQSVisibilityTimeout: getEnvInt("SQS_VISIBILITY_TIMEOUT_SECONDS", 300),
		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPQueue:            getEnv("AMQP_QUEUE", "skillgap.analyses"),
		WorkerConcurrency:    getEnvInt("WORKER_CONCURRENCY", 4),
		ShutdownTimeout:      getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),

		SkillMatchMode:      getEnv("SKILL_MATCH_MODE", "substring"),
		SkillNounEnrichment: getEnvBool("SKILL_NOUN_ENRICHMENT", false),
		ClusterSeed:         uint64(max(0, getEnvInt("CLUSTER_SEED", 0))),

		AnalysesPerMinute: getEnvInt("RATE_LIMIT_ANALYSES_PER_MIN", 10),
	}
}

// PoolOverrides returns the DB_* settings; zero fields keep pool defaults.
func (c Config) PoolOverrides() db.Options {
	return db.Options{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
		PingTimeout:     c.DBPingTimeout,
		ConnectAttempts: c.DBConnectAttempts,
	}
}

// loadEnvFiles applies the files that exist. Variables already present in
// the environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			telemetry.Warn("config.env_file_invalid", map[string]any{"path": path, "error": err.Error()})
		}
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_bool", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "s3") {
		return "s3"
	}
	return "local"
}

func normalizeQueue(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqs":
		return "sqs"
	case "amqp", "rabbitmq":
		return "amqp"
	default:
		return ""
	}
}
