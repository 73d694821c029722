package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/auth"
	"resume-builder/internal/builder"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/events"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	miniostore "resume-builder/internal/shared/storage/object/minio"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/internal/uploads"
	"resume-builder/internal/users"
	"resume-builder/resume/export"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Documents docstore.Store
	Store     object.ObjectStore
	Events    events.Publisher
	Limiter   middleware.Allower
	Signer    *sharedauth.Signer
	Capturer  export.Capturer
	Catalog   *templates.Catalog
	Sessions  *builder.Registry

	UsersService   *users.Service
	ResumesService *resumes.Service
	Exporter       *export.Pipeline

	closers []func() error
}

// Option overrides a dependency before routes are wired. Tests use it to
// swap the capturer or publisher.
type Option func(*App)

func WithCapturer(c export.Capturer) Option {
	return func(a *App) { a.Capturer = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(a *App) { a.Events = p }
}

// Build prepares shared dependencies and wires the router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		if !cfg.IsDevLike() {
			return nil, errors.New("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev-secret"
	}

	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	if app.Events == nil {
		pub, err := events.Open(ctx, events.Options{
			Backend:          cfg.EventsBackend,
			KafkaBrokers:     cfg.KafkaBrokers,
			KafkaTopic:       cfg.KafkaTopic,
			RabbitMQURL:      cfg.RabbitMQURL,
			RabbitMQExchange: cfg.RabbitMQExchange,
			SQSQueueURL:      cfg.EventsQueueURL,
			AWSRegion:        cfg.AWSRegion,
		})
		if err != nil {
			return nil, err
		}
		app.Events = pub
		app.closers = append(app.closers, pub.Close)
	}

	if err := buildLimiter(app); err != nil {
		return nil, err
	}

	if app.Capturer == nil {
		rodCapturer := export.NewRodCapturer(export.RodOptions{Bin: cfg.ChromeBin, ControlURL: cfg.ChromeControlURL})
		app.Capturer = rodCapturer
		app.closers = append(app.closers, rodCapturer.Close)
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.WithEnvOverrides(db.LambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.WithEnvOverrides(db.ServerOptions()))
	}
	if err == nil {
		if err = db.Migrate(ctx, sqlDB); err != nil && !db.IsLambdaRuntime() {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(ctx, miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildLimiter(app *App) error {
	if strings.TrimSpace(app.Config.RedisURL) == "" {
		app.Limiter = middleware.NewRateLimiter(nil)
		return nil
	}
	limiter, err := middleware.NewRedisLimiter(app.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("redis limiter: %w", err)
	}
	app.Limiter = limiter
	app.closers = append(app.closers, limiter.Close)
	return nil
}

func buildServices(app *App) error {
	cfg := app.Config

	var userRepo users.Repo
	if app.DB != nil {
		app.Documents = docstore.NewPGStore(app.DB)
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.Documents = docstore.NewMemoryStore()
		userRepo = users.NewMemoryRepo()
	}

	catalog, err := templates.LoadCatalog()
	if err != nil {
		return err
	}
	app.Catalog = catalog

	policy, err := builder.ParseDisposedPolicy(cfg.DisposedResultPolicy)
	if err != nil {
		return err
	}

	app.Signer = sharedauth.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	sessions := &auth.Sessions{Signer: app.Signer, Secure: !cfg.IsDevLike()}

	app.UsersService = users.NewService(userRepo)
	app.ResumesService = resumes.NewService(app.Documents, catalog, app.Store, app.Events)
	app.Exporter = &export.Pipeline{
		Capturer: app.Capturer,
		Page:     export.PageByName(cfg.ExportPage),
		Scale:    cfg.ExportScale,
		Paginate: cfg.ExportPaginate,
	}
	app.Sessions = builder.NewRegistry(cfg.BuilderSessionIdle)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Signer:  app.Signer,
		Limiter: app.Limiter,
		Objects: app.Store,
		Health:  app.health(),
		GoogleAuth: auth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			app.UsersService,
			sessions,
		),
		PasswordAuth: auth.NewPasswordHandler(app.UsersService, sessions),
		Users:        users.NewHandler(app.UsersService),
		Templates:    templates.NewHandler(catalog, app.Store),
		Resumes:      resumes.NewHandler(app.ResumesService, app.Exporter, cfg.DashboardPath),
		Builder: builder.NewHandler(app.ResumesService, app.Sessions, builder.Options{
			RefreshAfterSave: cfg.RefreshAfterSave,
			Disposed:         policy,
		}, app.Events, cfg.DashboardPath),
		Uploads: uploads.NewHandler(app.Store),
	})
	return nil
}

func (a *App) health() *health.Service {
	svc := health.NewService()
	if a.DB != nil {
		svc.Add("database", a.DB.PingContext)
	}
	if pinger, ok := a.Limiter.(interface{ Ping(context.Context) error }); ok {
		svc.Add("redis", pinger.Ping)
	}
	return svc
}

// Close releases brokers, browsers and connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
