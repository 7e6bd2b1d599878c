package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Prasad22V/coursebundler-server/internal/di"
	"github.com/Prasad22V/coursebundler-server/internal/gateway"
	"github.com/Prasad22V/coursebundler-server/internal/mail"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/middleware"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/pkg/config"
	"github.com/Prasad22V/coursebundler-server/pkg/logger"
	"github.com/Prasad22V/coursebundler-server/pkg/saga"
)

const homePage = `<h1>Welcome to the CourseBundler API. Click <a href=%q>here</a> to visit the frontend.</h1>`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting CourseBundler API...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("MongoDB connection failed: %v", err))
	}
	defer db.Client().Disconnect(context.Background())
	appLog.Info(fmt.Sprintf("MongoDB connected (database: %s)", cfg.MongoDB.Database))

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to create indexes: %v", err))
	}

	statsRepo := repository.NewMongoStatsRepository(db)
	if err := statsRepo.EnsureGenesis(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to seed stats snapshot: %v", err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLog.Warn(fmt.Sprintf("Redis unavailable, idempotency guard disabled: %v", err))
			redisClient = nil
		} else {
			appLog.Info("Redis connected")
		}
	}

	billing, err := gateway.New(cfg.Billing.Gateway, &gateway.Config{
		KeyID:     cfg.Billing.KeyID,
		KeySecret: cfg.Billing.KeySecret,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build billing gateway: %v", err))
	}
	appLog.Info(fmt.Sprintf("Billing gateway: %s", billing.Name()))

	var storage media.Storage
	if cfg.Media.CloudName != "" {
		storage, err = media.NewCloudinaryStorage(&media.CloudinaryConfig{
			CloudName: cfg.Media.CloudName,
			APIKey:    cfg.Media.APIKey,
			APISecret: cfg.Media.APISecret,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to build media storage: %v", err))
		}
	} else {
		appLog.Warn("Cloudinary not configured, media uploads are held in memory")
		storage = media.NewMemoryStorage()
	}

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(&mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		appLog.Warn("SMTP not configured, outgoing mail is held in memory")
		mailer = mail.NewMemoryMailer()
	}

	container := di.NewContainer(&di.ContainerConfig{
		Config:     cfg,
		DB:         db,
		Redis:      redisClient,
		SagaStore:  saga.NewMongoStore(db, "saga_instances"),
		Billing:    billing,
		Storage:    storage,
		Mailer:     mailer,
		ChangeFeed: repository.NewMongoChangeFeed(db),
	})

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(appLog))

	router.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, fmt.Sprintf(homePage, cfg.App.FrontendURL))
	})
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	authn := middleware.Authenticate(container.Codec, container.UserRepo)

	v1 := router.Group("/api/v1")
	{
		// Accounts and sessions
		v1.POST("/register", container.AuthHandler.Register)
		v1.POST("/login", container.AuthHandler.Login)
		v1.GET("/logout", container.AuthHandler.Logout)
		v1.GET("/me", authn, container.AuthHandler.Me)
		v1.DELETE("/me", authn, container.AuthHandler.DeleteMe)

		// Profile
		v1.PUT("/changepassword", authn, container.UserHandler.ChangePassword)
		v1.PUT("/updateprofile", authn, container.UserHandler.UpdateProfile)
		v1.PUT("/updateprofilepicture", authn, container.UserHandler.UpdateAvatar)

		// Password reset
		v1.POST("/forgetpassword", container.UserHandler.ForgotPassword)
		v1.PUT("/resetpassword/:token", container.UserHandler.ResetPassword)

		// Playlist
		v1.POST("/addtoplaylist", authn, container.UserHandler.AddToPlaylist)
		v1.DELETE("/removefromplaylist", authn, container.UserHandler.RemoveFromPlaylist)

		// Courses and lectures
		v1.GET("/courses", container.CourseHandler.List)
		v1.POST("/createcourse", authn, middleware.RequireAdmin(), container.CourseHandler.Create)
		v1.GET("/course/:id", authn, middleware.RequireSubscriber(), container.CourseHandler.GetLectures)
		v1.POST("/course/:id", authn, middleware.RequireAdmin(), container.CourseHandler.AddLecture)
		v1.DELETE("/course/:id", authn, middleware.RequireAdmin(), container.CourseHandler.DeleteCourse)
		v1.DELETE("/lecture", authn, middleware.RequireAdmin(), container.CourseHandler.DeleteLecture)

		// Billing
		v1.GET("/subscribe", authn, container.SubscriptionHandler.Subscribe)
		v1.POST("/paymentverification", authn,
			middleware.Idempotency(&middleware.IdempotencyConfig{Redis: redisClient}),
			container.SubscriptionHandler.VerifyPayment)
		v1.GET("/razorpaykey", container.SubscriptionHandler.GatewayKey)
		v1.DELETE("/subscribe/cancel", authn, container.SubscriptionHandler.Cancel)

		// Admin
		admin := v1.Group("/admin", authn, middleware.RequireAdmin())
		{
			admin.GET("/users", container.UserHandler.ListUsers)
			admin.PUT("/user/:id", container.UserHandler.ToggleRole)
			admin.DELETE("/user/:id", container.UserHandler.DeleteUser)
			admin.GET("/stats", container.StatsHandler.Dashboard)
		}
	}

	// Background workers: the change feed fans out to the aggregator, the
	// scheduler opens a fresh snapshot row each period
	go func() {
		if err := container.ChangeFeed.Run(ctx); err != nil && ctx.Err() == nil {
			appLog.Error(fmt.Sprintf("Change feed stopped: %v", err))
		}
	}()
	go func() {
		if err := container.StatsAggregator.Start(ctx); err != nil && ctx.Err() == nil {
			appLog.Error(fmt.Sprintf("Stats aggregator stopped: %v", err))
		}
	}()
	if err := container.SnapshotScheduler.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start snapshot scheduler: %v", err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info(fmt.Sprintf("CourseBundler API listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error(fmt.Sprintf("Server error: %v", err))
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down...")

	container.SnapshotScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Forced shutdown: %v", err))
		os.Exit(1)
	}
	appLog.Info("Server exited")
}
