package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/godilite/valuation-server/internal/config"
	handler "github.com/godilite/valuation-server/internal/grpc"
	"github.com/godilite/valuation-server/internal/industry"
	"github.com/godilite/valuation-server/internal/repository"
	"github.com/godilite/valuation-server/internal/service"
	"github.com/godilite/valuation-server/internal/valuation"
	"github.com/godilite/valuation-server/pkg/cache"
	dbbuilder "github.com/godilite/valuation-server/pkg/database"
	grpcsrv "github.com/godilite/valuation-server/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
}

// NewEngine loads the industry reference table and builds the valuation
// engine over it.
func NewEngine(cfg *config.Config) (*valuation.Engine, error) {
	engine, _, err := newEngine(cfg)
	return engine, err
}

func newEngine(cfg *config.Config) (*valuation.Engine, *industry.Table, error) {
	table, err := industry.Load(cfg.Reference.MultiplesPath)
	if err != nil {
		return nil, nil, err
	}
	return valuation.NewEngine(industry.NewResolver(table)), table, nil
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	engine, table, err := newEngine(cfg)
	if err != nil {
		logger.Error("reference data load failed",
			zap.String("error_class", "reference_data"),
			zap.String("path", cfg.Reference.MultiplesPath),
			zap.Error(err))
		return nil, fmt.Errorf("reference data init failed: %w", err)
	}
	logger.Info("Industry reference data loaded",
		zap.String("path", cfg.Reference.MultiplesPath),
		zap.String("version", table.Version()))

	if err := ensureDataDir(cfg.DB); err != nil {
		return nil, err
	}
	dbPool, err := dbbuilder.NewContext(ctx,
		dbbuilder.WithDriver(cfg.DB.Driver),
		dbbuilder.WithDataSource(cfg.DB.DSN),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DB.Driver))

	repo := repository.NewAssessmentRepository(dbPool, cfg.DB.Driver)
	if err := repo.Migrate(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	// A nil interface, not a nil *cache.Cache, disables caching.
	var cacher handler.Cacher
	var cacheClient *cache.Cache
	if cfg.Cache.Enabled {
		cacheClient, err = cache.New(ctx,
			cache.WithAddress(cfg.Redis.Addr),
			cache.WithPassword(cfg.Redis.Password),
			cache.WithDB(cfg.Redis.DB),
		)
		if err != nil {
			logger.Warn("Cache unavailable, serving without it", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			cacher = cacheClient
			logger.Info("Cache client initialized", zap.String("addr", cfg.Redis.Addr))
		}
	}

	assessments := service.NewAssessmentService(engine, repo, logger.Named("assessment-service"))

	grpcHandlers := handler.NewGRPCHandlers(assessments, cacher, logger, cfg.Cache.TTL,
		handler.WithReferenceVersion(table.Version()))

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPC.Port),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPC.Reflection),
		grpcsrv.WithLogging(cfg.GRPC.Logging),
	)
	if err != nil {
		if cacheClient != nil {
			cacheClient.Close()
		}
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterValuationServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
	}, nil
}

// ensureDataDir creates the parent directory of a file-backed sqlite DSN.
func ensureDataDir(db config.DBConfig) error {
	if db.Driver != "sqlite3" || db.DSN == ":memory:" || strings.HasPrefix(db.DSN, "file:") {
		return nil
	}
	dir := filepath.Dir(db.DSN)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return nil
}

// Run starts the application and blocks until a shutdown signal is received,
// ctx is done, or the server stops on its own.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting", zap.String("addr", a.grpcServer.Addr().String()))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := a.grpcServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok && err != nil {
			runErr = fmt.Errorf("grpc server: %w", err)
		}
	}

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.grpcServer.SetServiceHealth(handler.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown completed but deadline exceeded", zap.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return runErr
}
