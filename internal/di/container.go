package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/Prasad22V/coursebundler-server/internal/gateway"
	"github.com/Prasad22V/coursebundler-server/internal/handler"
	"github.com/Prasad22V/coursebundler-server/internal/mail"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/internal/service"
	"github.com/Prasad22V/coursebundler-server/internal/token"
	"github.com/Prasad22V/coursebundler-server/internal/worker"
	"github.com/Prasad22V/coursebundler-server/pkg/config"
	"github.com/Prasad22V/coursebundler-server/pkg/logger"
	"github.com/Prasad22V/coursebundler-server/pkg/saga"
)

// sagaLogger adapts the zap sugared logger to the saga orchestrator's
// logging surface
type sagaLogger struct {
	log *zap.SugaredLogger
}

func (l *sagaLogger) Info(msg string, fields ...interface{})  { l.log.Infow(msg, fields...) }
func (l *sagaLogger) Error(msg string, fields ...interface{}) { l.log.Errorw(msg, fields...) }

// Container wires repositories, services, handlers and workers together
type Container struct {
	// Infrastructure
	DB    *mongo.Database
	Redis *redis.Client
	Codec *token.Codec

	// Repositories
	UserRepo    repository.UserRepository
	CourseRepo  repository.CourseRepository
	PaymentRepo repository.PaymentRepository
	StatsRepo   repository.StatsRepository
	ChangeFeed  repository.ChangeFeed

	// External adapters
	Billing gateway.BillingGateway
	Storage media.Storage
	Mailer  mail.Mailer

	// Services
	AuthService         service.AuthService
	UserService         service.UserService
	CourseService       service.CourseService
	SubscriptionService service.SubscriptionService

	// Handlers
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	CourseHandler       *handler.CourseHandler
	SubscriptionHandler *handler.SubscriptionHandler
	StatsHandler        *handler.StatsHandler
	HealthHandler       *handler.HealthHandler

	// Workers
	StatsAggregator   *worker.StatsAggregator
	SnapshotScheduler *worker.SnapshotScheduler
}

// ContainerConfig carries the externally constructed dependencies
type ContainerConfig struct {
	Config     *config.Config
	DB         *mongo.Database
	Redis      *redis.Client
	SagaStore  saga.Store
	Billing    gateway.BillingGateway
	Storage    media.Storage
	Mailer     mail.Mailer
	ChangeFeed repository.ChangeFeed
}

// NewContainer builds the object graph
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:         cfg.DB,
		Redis:      cfg.Redis,
		Billing:    cfg.Billing,
		Storage:    cfg.Storage,
		Mailer:     cfg.Mailer,
		ChangeFeed: cfg.ChangeFeed,
	}

	c.Codec = token.NewCodec(cfg.Config.JWT.Secret, cfg.Config.JWT.TTL)

	c.UserRepo = repository.NewMongoUserRepository(cfg.DB)
	c.CourseRepo = repository.NewMongoCourseRepository(cfg.DB)
	c.PaymentRepo = repository.NewMongoPaymentRepository(cfg.DB)
	c.StatsRepo = repository.NewMongoStatsRepository(cfg.DB)

	c.AuthService = service.NewAuthService(c.UserRepo, c.Storage, c.Codec, nil)
	c.UserService = service.NewUserService(c.UserRepo, c.CourseRepo, c.Storage, c.Mailer, &service.UserServiceConfig{
		FrontendURL: cfg.Config.App.FrontendURL,
	})
	c.CourseService = service.NewCourseService(c.CourseRepo, c.Storage)
	c.SubscriptionService = service.NewSubscriptionService(
		c.UserRepo, c.PaymentRepo, c.Billing, cfg.SagaStore, &sagaLogger{logger.Get().Sugar()},
		&service.SubscriptionServiceConfig{
			PlanID:        cfg.Config.Billing.PlanID,
			GatewaySecret: cfg.Config.Billing.KeySecret,
			RefundWindow:  time.Duration(cfg.Config.Billing.RefundDays) * 24 * time.Hour,
		},
	)

	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.UserService, cfg.Config.JWT.TTL)
	c.UserHandler = handler.NewUserHandler(c.UserService)
	c.CourseHandler = handler.NewCourseHandler(c.CourseService)
	c.SubscriptionHandler = handler.NewSubscriptionHandler(
		c.SubscriptionService,
		cfg.Config.Billing.KeyID,
		cfg.Config.App.FrontendURL,
		cfg.Config.Billing.RefundDays,
	)
	c.StatsHandler = handler.NewStatsHandler(c.StatsRepo)
	c.HealthHandler = handler.NewHealthHandler(cfg.DB, cfg.Redis)

	c.StatsAggregator = worker.NewStatsAggregator(c.ChangeFeed, c.UserRepo, c.CourseRepo, c.StatsRepo)
	c.SnapshotScheduler = worker.NewSnapshotScheduler(c.StatsRepo, cfg.Config.Stats.SnapshotCron)

	return c
}
