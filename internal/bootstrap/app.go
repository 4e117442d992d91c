package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	googleauth "docchat-backend/internal/auth"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/extract"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/llm/openai"
	"docchat-backend/internal/pdfs"
	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/storage/mongodb"
	"docchat-backend/internal/shared/storage/object"
	localstore "docchat-backend/internal/shared/storage/object/local"
	s3store "docchat-backend/internal/shared/storage/object/s3"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/users"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config config.Config
	Router *gin.Engine

	DB    *sql.DB
	Mongo *mongo.Client
	Redis redis.UniversalClient

	Files    object.ObjectStore
	PDFStore pdfs.Store
	LLM      llm.Client

	UsersRepo     users.Repo
	DocumentsRepo documents.DocumentsRepo

	PDFService       *pdfs.Service
	UsersService     *users.Service
	DocumentsService *documents.Service

	PDFHandler       *pdfs.Handler
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build picks backends from cfg and wires every handler into the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.LocalStoreDir) == "" {
		cfg.LocalStoreDir = "./uploads"
	}
	ctx := context.Background()

	auth.Configure(cfg.JWTSecret, cfg.JWTTTL)

	app := &App{Config: cfg}

	files, err := buildFiles(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Files = files

	if err := app.buildPDFStore(ctx); err != nil {
		return nil, err
	}
	if err := app.buildRepos(ctx); err != nil {
		return nil, err
	}
	if err := app.buildLLM(); err != nil {
		return nil, err
	}
	app.buildServices()

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		PDFHandler:      app.PDFHandler,
		UserHandler:     app.UsersHandler,
		DocumentHandler: app.DocumentsHandler,
		GoogleAuth:      app.GoogleAuth,
		Health:          health.NewService(),
		PrincipalLookup: app.UsersService.Lookup,
		RateLimiter:     middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases database and cache connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Disconnect(ctx))
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func buildFiles(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildPDFStore(ctx context.Context) error {
	if a.Config.PDFStoreType != "redis" {
		a.PDFStore = pdfs.NewMemoryStore()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if config.IsDevLike(a.Config.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"addr": a.Config.RedisAddr, "err": err})
			a.PDFStore = pdfs.NewMemoryStore()
			return nil
		}
		return fmt.Errorf("redis ping: %w", err)
	}
	a.Redis = client
	a.PDFStore = pdfs.NewRedisStore(client, "", a.Config.PDFStoreTTL)
	return nil
}

func (a *App) buildRepos(ctx context.Context) error {
	cfg := a.Config
	switch {
	case cfg.DatabaseURL != "":
		sqlDB, err := connectPG(ctx, cfg.DatabaseURL)
		if err == nil {
			a.DB = sqlDB
			a.UsersRepo = &users.PGRepo{DB: sqlDB}
			a.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
			return nil
		}
		if !config.IsDevLike(cfg.Env) {
			return err
		}
		telemetry.Warn("bootstrap.database_unavailable", map[string]any{"err": err})
	case cfg.MongoURI != "":
		client, database, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err == nil {
			userRepo := users.NewMongoRepo(database)
			docRepo := documents.NewMongoRepo(database)
			if err := userRepo.EnsureIndexes(ctx); err != nil {
				telemetry.Warn("bootstrap.mongo_index_failed", map[string]any{"collection": "users", "err": err})
			}
			if err := docRepo.EnsureIndexes(ctx); err != nil {
				telemetry.Warn("bootstrap.mongo_index_failed", map[string]any{"collection": "documents", "err": err})
			}
			a.Mongo = client
			a.UsersRepo = userRepo
			a.DocumentsRepo = docRepo
			return nil
		}
		if !config.IsDevLike(cfg.Env) {
			return err
		}
		telemetry.Warn("bootstrap.mongo_unavailable", map[string]any{"err": err})
	default:
		if !config.IsDevLike(cfg.Env) {
			return errors.New("DATABASE_URL or MONGO_URI is required")
		}
		telemetry.Info("bootstrap.memory_repositories", nil)
	}

	a.UsersRepo = users.NewMemoryRepo()
	a.DocumentsRepo = documents.NewMemoryRepo()
	return nil
}

func connectPG(ctx context.Context, databaseURL string) (*sql.DB, error) {
	sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func (a *App) buildLLM() error {
	if !openai.HasCredential(a.Config.OpenAIAPIKey) {
		telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"hint": "set OPENAI_API_KEY to enable chat"})
		return nil
	}
	client, err := openai.NewClient(openai.Options{
		APIKey:  a.Config.OpenAIAPIKey,
		BaseURL: a.Config.OpenAIBaseURL,
		Model:   a.Config.LLMModel,
		Timeout: a.Config.LLMTimeout,
	})
	if err != nil {
		return err
	}
	a.LLM = client
	return nil
}

func (a *App) buildServices() {
	cfg := a.Config

	pdfSvc := pdfs.NewService(a.PDFStore, a.Files, extract.NewPDF(cfg.ExtractTimeout), a.LLM)
	if cfg.LLMMaxTokens > 0 {
		pdfSvc.Chat.MaxTokens = cfg.LLMMaxTokens
	}
	if cfg.LLMTemperature >= 0 {
		pdfSvc.Chat.Temperature = cfg.LLMTemperature
	}

	userSvc := users.NewService(a.UsersRepo)
	docSvc := documents.NewService(a.DocumentsRepo)

	a.PDFService = pdfSvc
	a.UsersService = userSvc
	a.DocumentsService = docSvc
	a.PDFHandler = pdfs.NewHandler(pdfSvc, cfg.MaxUploadBytes)
	a.UsersHandler = users.NewHandler(userSvc)
	a.DocumentsHandler = documents.NewHandler(docSvc)
	a.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		userSvc,
	)
}
