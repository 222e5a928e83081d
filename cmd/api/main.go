package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/internal/cases"
	"github.com/chainwatchhq/chainwatch/internal/entity"
	"github.com/chainwatchhq/chainwatch/internal/escalation"
	"github.com/chainwatchhq/chainwatch/internal/evidence"
	"github.com/chainwatchhq/chainwatch/internal/reports"
	"github.com/chainwatchhq/chainwatch/internal/risk"
	"github.com/chainwatchhq/chainwatch/pkg/common"
	"github.com/chainwatchhq/chainwatch/pkg/config"
	"github.com/chainwatchhq/chainwatch/pkg/database"
	"github.com/chainwatchhq/chainwatch/pkg/events"
	"github.com/chainwatchhq/chainwatch/pkg/logger"
	"github.com/chainwatchhq/chainwatch/pkg/middleware"
	"github.com/chainwatchhq/chainwatch/pkg/redis"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load("chainwatch-api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := database.Migrate(&cfg.Database); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	var publisher *events.Publisher
	if cfg.NATS.Enabled {
		publisher, err = events.NewPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Entity registry
	entityRegistry := entity.NewRegistry(entity.NewRepository(db))

	// Risk analyzer gateway
	analyzer := risk.NewClient(cfg.Analyzer.BaseURL, time.Duration(cfg.Analyzer.TimeoutSeconds)*time.Second)
	riskRepo := risk.NewRepository(db)

	// Evidence store gateway
	evidenceService := evidence.NewService(evidence.NewRepository(db), entityRegistry, cfg.Evidence.MaxFileSizeMB)

	// Case lifecycle manager
	caseService := cases.NewService(cases.NewRepository(db), evidenceService, publisher)

	// Incident report service
	reportService := reports.NewService(reports.NewRepository(db), entityRegistry, analyzer, riskRepo, caseService)

	// Escalation coordinator
	notifier := escalation.NewWebhookNotifier(cfg.Notify.BaseURL, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
	escalationService := escalation.NewService(
		escalation.NewRepository(db),
		entityRegistry,
		caseService,
		notifier,
		escalation.NewRedisFreezeCache(redisClient),
		publisher,
	)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.Actor())
	router.Use(middleware.MaxBodySize(1 << 20))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.ActorIDHeader, middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, serviceVersion, map[string]func() error{
		"postgres": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		},
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		reports.NewHandler(reportService).RegisterRoutes(api)
		cases.NewHandler(caseService).RegisterRoutes(api)
		evidence.NewHandler(evidenceService).RegisterRoutes(api)
		escalation.NewHandler(escalationService).RegisterRoutes(api)
	}

	addr := ":" + cfg.Server.Port
	logger.Info("ChainWatch API starting",
		zap.String("addr", addr),
		zap.String("environment", cfg.Server.Environment),
	)
	if err := router.Run(addr); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
