package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/arbiter/internal/pkg/broker"
	"github.com/piresc/arbiter/internal/pkg/config"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/database"
	"github.com/piresc/arbiter/internal/pkg/health"
	"github.com/piresc/arbiter/internal/pkg/jwt"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/middleware"
	natspkg "github.com/piresc/arbiter/internal/pkg/nats"
	nrpkg "github.com/piresc/arbiter/internal/pkg/newrelic"
	nsqpkg "github.com/piresc/arbiter/internal/pkg/nsq"
	"github.com/piresc/arbiter/internal/pkg/retry"
	"github.com/piresc/arbiter/internal/pkg/server"
	gatewaypkg "github.com/piresc/arbiter/services/gateway"
	"github.com/piresc/arbiter/services/gateway/gateway"
	"github.com/piresc/arbiter/services/gateway/handler"
	httpHandler "github.com/piresc/arbiter/services/gateway/handler/http"
	natsHandler "github.com/piresc/arbiter/services/gateway/handler/nats"
	wsHandler "github.com/piresc/arbiter/services/gateway/handler/websocket"
	"github.com/piresc/arbiter/services/gateway/repository"
	"github.com/piresc/arbiter/services/gateway/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "arbiter"
	configPath := os.Getenv("ARBITER_CONFIG")
	if configPath == "" {
		configPath = "config/arbiter.env"
	}
	configs := config.InitConfig(configPath)
	if configs.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
		zap.String("executor_mode", configs.Upstream.Mode),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	healthSvc := health.NewService(3 * time.Second)
	b := broker.New()
	healthSvc.AddDetail("broker", func() interface{} { return b.Stats() })

	// Storage engine, local mode only
	var entityRepo gatewaypkg.EntityRepo
	var postgresClient *database.PostgresClient
	if configs.Upstream.Mode != constants.ExecutorUpstream {
		postgresClient, err = retry.Connect(startCtx, "postgres", func() (*database.PostgresClient, error) {
			return database.NewPostgresClient(configs.Database)
		})
		if err != nil {
			zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		repo := repository.NewEntityRepository(configs, postgresClient.GetDB())
		if err := repo.Migrate(startCtx); err != nil {
			zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
		}
		entityRepo = repo
		healthSvc.AddChecker("postgres", health.CheckerFunc(postgresClient.Ping))
	}

	redisClient, err := retry.Connect(startCtx, "redis", func() (*database.RedisClient, error) {
		return database.NewRedisClient(configs.Redis)
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	healthSvc.AddChecker("redis", health.CheckerFunc(redisClient.Ping))

	natsClient, err := retry.Connect(startCtx, "nats", func() (*natspkg.Client, error) {
		return natspkg.NewClient(configs.NATS.URL, appName)
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	healthSvc.AddChecker("nats", health.CheckerFunc(natsClient.Ping))

	var eventGW *gateway.NSQEventPublisher
	var nsqProducer *nsqpkg.Producer
	if configs.NSQ.Enabled {
		nsqProducer, err = nsqpkg.NewProducer(configs.NSQ.Address)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NSQ", zap.Error(err))
		}
		eventGW = gateway.NewNSQEventPublisher(nsqProducer)
	} else {
		eventGW = gateway.NewNSQEventPublisher(nil)
	}

	// Gateways
	sessionRepo := repository.NewSessionRepository(redisClient)
	authGW := gateway.NewAuthClient(configs.AuthService.URL, configs.AuthService.Timeout)
	scriptGW := gateway.NewNATSScriptRunner(natsClient, configs.NATS.ScriptTimeout)
	healthSvc.AddDetail("auth_breaker", func() interface{} { return authGW.Client().Breaker().Stats() })

	var executorGW gatewaypkg.ExecutorGW
	if configs.Upstream.Mode == constants.ExecutorUpstream {
		executor := gateway.NewHTTPExecutor(configs.Upstream.URL, configs.Upstream.Timeout)
		healthSvc.AddDetail("upstream_breaker", func() interface{} { return executor.Client().Breaker().Stats() })
		executorGW = executor
	}

	// UseCase
	tokens := jwt.NewManager(configs.JWT)
	gatewayUC := usecase.NewGatewayUC(configs, tokens, entityRepo, sessionRepo, executorGW, authGW, scriptGW, eventGW, nrApp)

	// Handlers
	notifyHandler := natsHandler.NewNotifyHandler(natsClient, b)
	h := handler.NewHandler(
		httpHandler.NewAuthHandler(gatewayUC),
		wsHandler.NewHandler(gatewayUC, b, configs),
		notifyHandler,
		redisClient.GetClient(),
	)
	if err := h.InitConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = configs.Server.ReadTimeout
	e.Server.WriteTimeout = configs.Server.WriteTimeout

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(nrpkg.Middleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthSvc)
	h.RegisterRoutes(e)

	srv := server.NewGracefulServer(e, configs.Server.Host, configs.Server.Port, configs.Server.ShutdownTimeout)
	srv.OnShutdown("nats-notify", func(context.Context) error { return notifyHandler.Close() })
	if nsqProducer != nil {
		srv.OnShutdown("nsq", func(context.Context) error {
			nsqProducer.Stop()
			return nil
		})
	}
	srv.OnShutdown("nats", func(context.Context) error { return natsClient.Close() })
	srv.OnShutdown("redis", func(context.Context) error { return redisClient.Close() })
	if postgresClient != nil {
		srv.OnShutdown("postgres", func(context.Context) error { return postgresClient.Close() })
	}
	if nrApp != nil {
		srv.OnShutdown("newrelic", func(context.Context) error {
			nrApp.Shutdown(10 * time.Second)
			return nil
		})
	}

	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with error", zap.String("app", appName), zap.Error(err))
	}
}
