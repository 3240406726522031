package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/roblucci9302/Lucide-3/internal/api/handlers"
	"github.com/roblucci9302/Lucide-3/internal/api/middleware"
	"github.com/roblucci9302/Lucide-3/internal/config"
	"github.com/roblucci9302/Lucide-3/internal/database"
	"github.com/roblucci9302/Lucide-3/internal/embeddings"
	"github.com/roblucci9302/Lucide-3/internal/extract"
	"github.com/roblucci9302/Lucide-3/internal/jobs"
	"github.com/roblucci9302/Lucide-3/internal/ocr"
	"github.com/roblucci9302/Lucide-3/internal/repository"
	"github.com/roblucci9302/Lucide-3/internal/server"
	"github.com/roblucci9302/Lucide-3/internal/service"
	"github.com/roblucci9302/Lucide-3/internal/storage"
	"github.com/roblucci9302/Lucide-3/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lucide API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	databaseRepo := repository.NewDatabaseRepository(pool)
	citationRepo := repository.NewCitationRepository(pool)
	checkpointRepo := repository.NewCheckpointRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	gate := service.NewOwnerGate()

	extractors := map[extract.Format]extract.Extractor{
		extract.FormatText: extract.NewPlainTextExtractor(),
		extract.FormatDOCX: extract.NewDOCXExtractor(),
	}
	if cfg.HasTika() {
		languages := strings.Split(cfg.OCRLanguages, "+")
		engine := ocr.NewEngine(ocr.Config{
			ServerURL:     cfg.TikaURL,
			Languages:     languages,
			MaxConcurrent: cfg.OCRConcurrency,
		})
		extractors[extract.FormatPDF] = extract.NewPDFExtractor(cfg.TikaURL)
		extractors[extract.FormatImage] = extract.NewImageExtractor(engine, languages)
		log.Printf("extraction server configured at %s", cfg.TikaURL)
	}
	dispatcher := extract.NewDispatcher(config.MaxUploadBytes, extractors)

	var embedder service.Embedder
	if cfg.HasOpenAI() {
		embedder = embeddings.NewClientWithConfig(embeddings.Config{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      openai.EmbeddingModel(cfg.EmbeddingModel),
			Dimensions: cfg.EmbeddingDimensions,
		})
		log.Println("embedding client configured")
	}

	documentSvc := service.NewDocumentService(documentRepo, databaseRepo, dispatcher, gate)
	indexingSvc := service.NewIndexingService(documentRepo, txRunner, embedder, service.IndexingConfig{
		Chunking: service.ChunkConfig{
			MaxChars: cfg.ChunkMaxChars,
			Overlap:  cfg.ChunkOverlap,
		},
		EmbedWorkers: cfg.EmbeddingConcurrency,
	})
	documentSvc.SetIndexer(indexingSvc, cfg.IndexWorkers)

	tester := database.NewTester(0)
	databaseSvc := service.NewDatabaseService(databaseRepo, documentRepo, txRunner, tester, gate)
	retrievalSvc := service.NewRetrievalService(databaseRepo, chunkRepo, citationRepo, embedder, gate)

	var remote service.RemoteStore
	var syncWorker *jobs.Worker
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		remote = s3Client
	}
	syncSvc := service.NewSyncService(documentRepo, chunkRepo, checkpointRepo, remote)

	if remote != nil {
		interval, err := time.ParseDuration(cfg.SyncInterval)
		if err != nil || interval <= 0 {
			interval = 5 * time.Minute
		}
		syncWorker = jobs.NewWorker(jobs.NewSyncProcessor(documentRepo, syncSvc), interval)
		go syncWorker.Start(ctx)
		log.Printf("sync worker started (interval %s)", interval)
	}

	tokens := cfg.TokenTable()
	if len(tokens) == 0 {
		log.Println("warning: no API tokens configured, all requests will be rejected")
	}

	routerCfg := server.RouterConfig{
		TokenValidator:   middleware.StaticTokens(tokens),
		DocumentHandler:  handlers.NewDocumentHandler(documentSvc, indexingSvc),
		RetrievalHandler: handlers.NewRetrievalHandler(retrievalSvc),
		DatabaseHandler:  handlers.NewDatabaseHandler(databaseSvc),
		SyncHandler:      handlers.NewSyncHandler(syncSvc),
		MaxBodyBytes:     config.MaxUploadBytes + config.MaxBodyOverhead,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if syncWorker != nil {
		syncWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: no migrations applied")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
