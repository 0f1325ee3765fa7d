package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"healthcore/internal/adapter/api"
	"healthcore/internal/adapter/api/handler"
	apimiddleware "healthcore/internal/adapter/api/middleware"
	"healthcore/internal/adapter/api/router"
	"healthcore/internal/adapter/repository"
	"healthcore/internal/domain/catalog"
	domainrepo "healthcore/internal/domain/repository"
	"healthcore/internal/domain/service"
	"healthcore/internal/infrastructure/firebase"
	"healthcore/internal/infrastructure/gamesync"
	"healthcore/internal/infrastructure/metrics"
	"healthcore/internal/infrastructure/ratelimit"
	"healthcore/internal/infrastructure/storage"
	"healthcore/internal/infrastructure/websocket"
	"healthcore/internal/usecase"
	"healthcore/pkg/config"
	"healthcore/pkg/logger"
	"healthcore/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger.Init(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	if cfg.NeedsFirebase() {
		if cfg.FirebaseServiceAccountJSON != "" {
			logger.Info("Using Firebase service account from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)))
		} else if cfg.FirebaseServiceAccountPath != "" {
			if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
				logger.Error("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
				os.Exit(1)
			}
			logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
		} else {
			logger.Info("Using application default credentials")
		}
	}

	var authClient usecase.FirebaseAuthClient
	var firestoreClient *firestore.Client
	if cfg.AuthMode == "firebase" || cfg.StorageBackend == "firestore" {
		firebaseApp, err := firebase.NewApp(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			logger.Error("Failed to initialize Firebase: %v", err)
			os.Exit(1)
		}

		if cfg.AuthMode == "firebase" {
			client, err := firebaseApp.Auth(ctx)
			if err != nil {
				logger.Error("Failed to initialize Firebase Auth: %v", err)
				os.Exit(1)
			}
			authClient = firebase.NewFirebaseAuthClient(client)
		}

		if cfg.StorageBackend == "firestore" {
			firestoreClient, err = firebaseApp.Firestore(ctx)
			if err != nil {
				logger.Error("Failed to create Firestore client: %v", err)
				os.Exit(1)
			}
			defer firestoreClient.Close()
		}
	}

	var gameStateRepo domainrepo.GameStateRepository
	if firestoreClient != nil {
		gameStateRepo = repository.NewFirestoreGameStateRepository(firestoreClient)
	} else {
		logger.Warn("Using in-memory game state storage; state is lost on restart")
		gameStateRepo = repository.NewMemoryGameStateRepository()
	}

	var archiver usecase.DayArchiver
	if cfg.ArchiveBucket != "" {
		gcs, err := storage.NewGCSArchiver(ctx, cfg.ArchiveBucket, opts...)
		if err != nil {
			logger.Error("Failed to initialize Cloud Storage: %v", err)
			os.Exit(1)
		}
		defer gcs.Close()
		archiver = gcs
	} else {
		archiver = storage.NewMemoryArchiver()
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	appMetrics := metrics.New()

	var remote usecase.RemoteSync = gamesync.Nop{}
	var syncer *gamesync.Syncer
	if cfg.SyncBaseURL != "" {
		syncer = gamesync.NewSyncer(
			gamesync.NewBackendClient(cfg.SyncBaseURL, cfg.SyncTimeout),
			gamesync.Config{
				MaxAttempts:    cfg.SyncMaxAttempts,
				InitialBackoff: cfg.SyncInitialBackoff,
				Timeout:        cfg.SyncTimeout,
				QueueSize:      cfg.SyncQueueSize,
			},
			logger.New("gamesync"),
		)
		remote = syncer
	}

	missionCatalog := catalog.MustDefault()
	tracker := service.NewMissionTracker(missionCatalog, nil)

	gameUseCase := usecase.NewGameUseCase(
		tracker,
		gameStateRepo,
		archiver,
		remote,
		wsManager,
		appMetrics,
		cfg.GameTimezone,
		logger.New("game"),
	)
	missionUseCase := usecase.NewMissionUseCase(missionCatalog, cfg.GameTimezone, nil)
	gameUseCase.StartSessionCleanup(ctx, 5*time.Minute, cfg.SessionIdleTimeout)

	if syncer != nil {
		syncer.OnFailure(gameUseCase.SyncFailed)
		// Not the signal context: queued jobs keep retrying while Shutdown drains.
		syncer.Start(context.Background())
	}

	handler.Setup(gameUseCase, missionUseCase)
	handler.SetupHealthHandler(cfg.StorageBackend, syncer != nil)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	limiter.StartCleanupRoutine(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.ErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appMetrics.Middleware())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, logger.New("auth"))
	if authClient == nil {
		logger.Warn("AUTH_MODE=header: trusting %s without verification", apimiddleware.UserIDHeader)
	}

	wsHandler := handler.NewWebSocketHandler(wsManager, logger.New("websocket"))

	router.Setup(e, authMiddleware, limiter)
	router.SetupMetricsRouter(e, appMetrics)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}

	if syncer != nil {
		if err := syncer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Sync queue not drained: %v", err)
		}
	}
}
