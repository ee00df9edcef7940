package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"feedback-board/internal/auth"
	"feedback-board/internal/config"
	apphttp "feedback-board/internal/http"
	"feedback-board/internal/repository"
	"feedback-board/internal/repository/mongodb"
	"feedback-board/internal/repository/sqlite"
	"feedback-board/internal/service"
	"feedback-board/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.Debug() {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, feedback, closeStore, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open repositories: %v", err)
	}
	defer closeStore()

	if err := users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := feedback.Init(ctx); err != nil {
		logger.Fatalf("init feedback repository: %v", err)
	}

	if cfg.Auth.AdminPassword == "" {
		logger.Warn("admin password not set, reserved admin login disabled")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	userService := service.NewUserService(users, tokens, service.AdminCredentials{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
	}, cfg.Auth.BcryptCost)
	feedbackService := service.NewFeedbackService(feedback, users)

	var exportService service.ExportService
	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	if storageSvc != nil {
		exportService = service.NewExportService(feedbackService, storageSvc, service.ExportOptions{
			Bucket:    cfg.Export.Bucket,
			KeyPrefix: cfg.Export.KeyPrefix,
		})
	}

	if cfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, feedbackService, exportService, tokens, logger, cfg.Debug())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped: %v", err)
	}
	logger.Info("bye")
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, repository.FeedbackRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := mongodb.Open(ctx, mongodb.Cfg{
			URI:      cfg.Mongo.URI,
			User:     cfg.Mongo.User,
			Pass:     cfg.Mongo.Pass,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Infof("using mongo database %s", cfg.Mongo.Database)
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}
		return mongodb.NewUserRepository(db), mongodb.NewFeedbackRepository(db), closeFn, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		closeFn := func() { _ = db.Close() }
		return sqlite.NewUserRepository(db), sqlite.NewFeedbackRepository(db), closeFn, nil
	}
}

// buildStorage returns nil when no export bucket is configured.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Export.Bucket == "" {
		logger.Info("export bucket not set, board exports disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Export.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Export.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Export.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Export.Bucket, cfg.Export.Region)
	return storage.NewS3Service(client), nil
}
