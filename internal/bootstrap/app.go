package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"skillgap-backend/internal/analyses"
	"skillgap-backend/internal/catalog"
	"skillgap-backend/internal/extract"
	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/history"
	"skillgap-backend/internal/jobs"
	"skillgap-backend/internal/plans"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/shared/auth"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/server"
	"skillgap-backend/internal/shared/storage/db"
	"skillgap-backend/internal/shared/storage/object"
	localstore "skillgap-backend/internal/shared/storage/object/local"
	s3store "skillgap-backend/internal/shared/storage/object/s3"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/skills"
)

const jobsCachePrefix = "skillgap:jobs:"

// Role selects pool sizing and which surfaces Build wires.
type Role int

const (
	RoleAPI Role = iota
	RoleWorker
	RoleCLI
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	Queue    queue.Client
	SQS      *queue.SQSClient
	AMQP     *queue.AMQPClient
	Cache    *jobs.RedisCache
	Catalog  catalog.Repo
	History  history.Repo
	Tokens   *auth.Tokens
	Analyses *analyses.Service
}

// Build prepares shared dependencies. The router is only built for RoleAPI.
func Build(ctx context.Context, cfg config.Config, role Role) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg}
	var err error

	if app.DB, err = buildDB(ctx, cfg, role); err != nil {
		return nil, err
	}
	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}
	if err := buildQueue(ctx, app); err != nil {
		app.Close()
		return nil, err
	}
	if err := buildRepos(ctx, app); err != nil {
		app.Close()
		return nil, err
	}
	if app.Tokens, err = auth.NewTokens(cfg.JWTSecret, cfg.Env); err != nil {
		app.Close()
		return nil, err
	}

	app.Analyses = buildService(ctx, app)

	if role == RoleAPI {
		app.Router = server.NewRouter(server.RouterDeps{
			CORSAllowOrigin:   cfg.CORSAllowOrigin,
			Tokens:            app.Tokens,
			AnalysesPerMinute: cfg.AnalysesPerMinute,
			Ping:              app.ping,
			Handlers: []server.Registrar{
				analyses.NewHandler(app.Analyses),
				history.NewHandler(app.History),
				catalog.NewHandler(app.Catalog),
			},
		})
	}
	return app, nil
}

func (a *App) ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	if a.AMQP != nil {
		errs = append(errs, a.AMQP.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config, role Role) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	kind := db.PoolAPI
	switch role {
	case RoleWorker:
		kind = db.PoolWorker
	case RoleCLI:
		kind = db.PoolCLI
	}
	opts := db.PoolOptions(kind, cfg.WorkerConcurrency).With(cfg.PoolOverrides())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, app *App) error {
	cfg := app.Config
	switch cfg.QueueBackend {
	case queue.BackendSQS:
		client, err := queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
		if err != nil {
			return err
		}
		app.SQS = client
		app.Queue = client
	case queue.BackendAMQP:
		client, err := queue.NewAMQPClient(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		app.AMQP = client
		app.Queue = client
	}
	return nil
}

func buildRepos(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.Catalog = &catalog.PGRepo{DB: app.DB}
		app.History = &history.PGRepo{DB: app.DB}
	} else {
		app.Catalog = catalog.NewMemoryRepo()
		app.History = history.NewMemoryRepo()
	}

	seeded, err := catalog.Seed(ctx, app.Catalog)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if seeded > 0 {
		telemetry.Info("bootstrap.catalog_seeded", map[string]any{"resources": seeded})
	}
	return nil
}

func buildService(ctx context.Context, app *App) *analyses.Service {
	cfg := app.Config

	opts := []skills.Option{skills.WithMatchMode(skills.ParseMatchMode(cfg.SkillMatchMode))}
	if cfg.SkillNounEnrichment {
		opts = append(opts, skills.WithTagger(skills.SimpleTagger{}))
	}
	extractor := skills.NewExtractor(skills.DefaultDictionary(), opts...)

	builder := jobs.NewBuilder(buildSource(ctx, app), extractor)
	builder.Parallel = cfg.JobsParallel

	text := extract.New(nil)
	return &analyses.Service{
		Parser:     resumes.NewParser(text, extractor),
		Extractor:  text,
		Jobs:       builder,
		Analyzer:   gap.NewAnalyzer(gap.KMeans{Seed: cfg.ClusterSeed}),
		Planner:    plans.NewAllocator(app.Catalog, app.History),
		History:    app.History,
		Store:      app.Store,
		Queue:      app.Queue,
		MaxResults: cfg.JobsMaxResults,
	}
}

// buildSource returns nil without Adzuna credentials, which sends every
// search to the synthetic corpus.
func buildSource(ctx context.Context, app *App) jobs.Source {
	cfg := app.Config
	if cfg.AdzunaAppID == "" || cfg.AdzunaAppKey == "" {
		telemetry.Info("bootstrap.synthetic_jobs", map[string]any{"reason": "adzuna credentials not set"})
		return nil
	}

	adzuna := jobs.NewAdzunaSource(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, cfg.JobsTimeout)
	if cfg.AdzunaBaseURL != "" {
		adzuna.BaseURL = cfg.AdzunaBaseURL
	}
	if cfg.RedisAddr == "" {
		return adzuna
	}

	cache, err := jobs.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		telemetry.Warn("bootstrap.jobs_cache_disabled", map[string]any{"error": err.Error()})
		return adzuna
	}
	app.Cache = cache
	return &jobs.CachedSource{Inner: adzuna, Cache: cache, TTL: cfg.JobsCacheTTL, Prefix: jobsCachePrefix}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
