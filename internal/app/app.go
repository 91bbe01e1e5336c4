package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/craftlink/go-backend/internal/cfg"
	v1Http "github.com/craftlink/go-backend/internal/delivery/v1/http"
	"github.com/craftlink/go-backend/internal/infrastructure/genai"
	"github.com/craftlink/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/craftlink/go-backend/internal/infrastructure/minio"
	s3Repo "github.com/craftlink/go-backend/internal/repository/minio"
	"github.com/craftlink/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/craftlink/go-backend/internal/repository/pgdb/converter"
	"github.com/craftlink/go-backend/internal/repository/redis"
	redisConv "github.com/craftlink/go-backend/internal/repository/redis/converter"
	"github.com/craftlink/go-backend/internal/repository/vectorindex"
	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/clients"
	"github.com/craftlink/go-backend/pkg/closer"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
	"github.com/craftlink/go-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

// Run собирает и запускает сервис рекомендаций.
// Индекс загружается при старте; битая или пустая пара артефактов — фатальная ошибка.
func Run() {
	logger := logger.NewSlogLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	shutdownCloser := closer.NewCloser(2 * time.Second)
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}
	shutdownCloser.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	prConv := pgdbConv.ProductConverter{}
	outboxConv := pgdbConv.OutboxEventConverter{}
	cardConv := redisConv.ProductCardConverter{}

	productRepo := pgdb.NewProductRepo(db.Pool, prConv)
	pricingRepo := pgdb.NewPricingRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, outboxConv)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		os.Exit(1)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	for _, bucket := range []string{cfg.Minio.BucketName, cfg.Minio.ArtifactBucket} {
		if err := clients.EnsureBucket(minioCtx, minioClient, bucket); err != nil {
			minioCancel()
			logger.Errorf(err, "failed to initialize MinIO bucket %s", bucket)
			os.Exit(1)
		}
	}
	minioCancel()

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	artifactRepo := s3Repo.NewArtifactRepo(minioClient, cfg.Minio)

	// Пара артефактов индекса: либо локальные файлы индексатора, либо
	// последняя опубликованная пара из объектного хранилища.
	if cfg.Index.FromObjectStore {
		dlCtx, dlCancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := artifactRepo.DownloadPair(dlCtx, cfg.Index.VectorsPath, cfg.Index.IdentityPath)
		dlCancel()
		if err != nil {
			logger.Errorf(err, "failed to download index artifacts")
			os.Exit(1)
		}
	}

	flatIndex, err := vectorindex.LoadFlatIndex(cfg.Index.VectorsPath, cfg.Index.IdentityPath, logger)
	if err != nil {
		logger.Errorf(err, "failed to load vector index")
		os.Exit(1)
	}
	logger.Infof("vector index loaded: build_id=%s, size=%d, dim=%d", flatIndex.BuildID(), flatIndex.Size(), flatIndex.Dim())

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	shutdownCloser.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, cardConv, cfg.Redis, logger)

	textGen := genai.NewTextGenClient(cfg.GenAI, logger)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, logger, appCtx)

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		os.Exit(1)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Errorf(err, "failed to ensure kafka topic")
		os.Exit(1)
	}
	shutdownCloser.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	outboxWorker := kafka.NewOutboxWorker(outboxRepo, logger, producer, db.Dsn)
	outboxWorker.Start(appCtx)
	shutdownCloser.Add(func(ctx context.Context) error {
		outboxWorker.Stop()
		return nil
	})

	productUC := usecase.NewProductUC(productRepo, outboxRepo, db.Pool, imagesInfra, cacheRepo, logger)
	recommendUC := usecase.NewRecommendUC(productRepo, cacheRepo, flatIndex, textGen, logger, cfg.GenAI.MaxConcurrent)
	pricingUC := usecase.NewPricingUC(pricingRepo, textGen, *cfg.Pricing, logger)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, logger)
	router.Init(productUC, recommendUC, pricingUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Errorf(err, "HTTP server shutdown error")
	} else {
		logger.Infof("HTTP server stopped")
	}

	appCancel()

	done := make(chan error, 1)
	go func() {
		done <- imagesInfra.WaitForCleanup(shutdownCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Warnf("MinIO cleanup error: %v", err)
		} else {
			logger.Infof("MinIO cleanup completed")
		}
	case <-time.After(5 * time.Second): // локальный таймаут ожидания cleanup
		logger.Warnf("MinIO cleanup did not finish before shutdown, some temporary objects may remain")
	}

	if err := shutdownCloser.Close(shutdownCtx); err != nil {
		logger.Warnf("resource shutdown: %v", err)
	}

	logger.Infof("Application shutdown complete")
	if appErr != nil {
		os.Exit(1)
	}
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
