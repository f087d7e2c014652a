package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mogutou-backend/controller"
	"mogutou-backend/infra"
	"mogutou-backend/metrics"
	otelMiddleware "mogutou-backend/middleware"
	"mogutou-backend/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Port int `help:"服务监听端口" short:"p" default:"8090"`
}

type AppServices struct {
	MongoDB *infra.MongoDB
	Redis   *infra.Redis
}

// 全局变量用于存储 OpenTelemetry cleanup 函数
var otelCleanup func()

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		// 载入配置文件
		if err := infra.LoadConfig(); err != nil {
			log.Fatal().
				Err(err).
				Msg("读取 config.yml 失败")
		}

		// 初始化 logger（在载入配置后）
		infra.InitLogger()

		// 初始化 OpenTelemetry
		// 从环境变量取得 OTEL endpoint，默认为 localhost:4318
		otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if otelEndpoint == "" {
			otelEndpoint = "localhost:4318"
		}

		otelConfig := otelMiddleware.OtelConfig{
			ServiceName:     "mogutou-backend",
			ServiceVersion:  infra.AppConfig.App.AppVersion,
			Environment:     "development",
			OTLPEndpoint:    otelEndpoint,
			TracesEnabled:   true,
			MetricsEnabled:  true,
			Enabled:         true,
			DevelopmentMode: false,
		}

		var err error
		otelCleanup, err = otelMiddleware.InitOpenTelemetry(otelConfig, log.Logger)
		if err != nil {
			log.Fatal().
				Err(err).
				Msg("OpenTelemetry 初始化失败")
		}

		// 初始化全局 tracer
		infra.InitTracer()

		// 初始化 Prometheus metrics
		if err := otelMiddleware.InitPrometheusMetrics(log.Logger); err != nil {
			log.Error().
				Err(err).
				Msg("Prometheus metrics 初始化失败，将继续运行")
		}

		// 初始化 Service 层 metrics
		if err := metrics.InitServiceMetrics(otelMiddleware.GetPrometheusRegistry()); err != nil {
			log.Error().
				Err(err).
				Msg("Service metrics 初始化失败，将继续运行")
		}

		log.Info().
			Int("port", options.Port).
			Msg("启动蘑菇头 ERP API 服务")

		services, err := initializeServices()
		if err != nil {
			log.Fatal().
				Err(err).
				Msg("初始化服务失败")
		}

		router := chi.NewRouter()
		router.Use(middleware.RequestID)
		router.Use(middleware.RealIP)
		router.Use(middleware.Logger)
		router.Use(middleware.Recoverer)
		router.Use(middleware.Heartbeat("/ping"))

		// CORS 设置，允许所有来源
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		apiConfig := huma.DefaultConfig("蘑菇头 ERP API", infra.AppConfig.App.AppVersion)
		apiConfig.Info.Description = "自然语言驱动的进销存管理 API"

		serverURL := fmt.Sprintf("http://localhost:%d", options.Port)
		apiConfig.Servers = []*huma.Server{
			{URL: serverURL},
		}

		api := humachi.New(router, apiConfig)

		// 添加 OpenTelemetry 中间件到 API
		api.UseMiddleware(otelMiddleware.OpenTelemetryMiddleware(otelConfig, log.Logger))

		// 添加 Prometheus metrics 中间件
		api.UseMiddleware(otelMiddleware.PrometheusMiddleware(log.Logger))

		// AI 后端客户端
		deepseekClient := infra.NewDeepSeekClient(log.Logger, infra.DefaultDeepSeekConfig())

		// 业务服务
		inventoryService := service.NewInventoryService(log.Logger, services.MongoDB)
		orderService := service.NewOrderService(log.Logger, services.MongoDB, inventoryService)
		financeService := service.NewFinanceService(log.Logger, services.MongoDB)

		// 自然语言流水线
		extractor := service.NewTextExtractor(log.Logger)
		intentService := service.NewIntentService(log.Logger, deepseekClient)
		commandParser := service.NewCommandParser(log.Logger, deepseekClient, extractor)
		commandExecutor := service.NewCommandExecutor(log.Logger, deepseekClient, orderService, inventoryService, financeService)
		responseComposer := service.NewResponseComposer(log.Logger)
		aiService := service.NewAIService(
			log.Logger,
			deepseekClient,
			services.Redis,
			intentService,
			commandParser,
			commandExecutor,
			responseComposer,
			orderService,
			financeService,
		)

		// 控制器
		aiController := controller.NewAIController(log.Logger, aiService)
		orderController := controller.NewOrderController(log.Logger, orderService)
		inventoryController := controller.NewInventoryController(log.Logger, inventoryService)

		aiController.RegisterRoutes(api)
		orderController.RegisterRoutes(api)
		inventoryController.RegisterRoutes(api)

		// 注册 Prometheus metrics 端点（使用标准 Prometheus client）
		router.Handle("/metrics", otelMiddleware.GetStandardPrometheusHandler())

		// 启动基础设施健康状态更新器
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()

			for range ticker.C {
				mongoStart := time.Now()
				mongoErr := services.MongoDB.Client.Ping(context.Background(), nil)
				mongoLatency := float64(time.Since(mongoStart).Nanoseconds()) / 1e6
				otelMiddleware.UpdateInfrastructureHealth("database", "mongodb", mongoErr == nil, mongoLatency)

				redisStart := time.Now()
				redisErr := services.Redis.Client.Ping(context.Background()).Err()
				redisLatency := float64(time.Since(redisStart).Nanoseconds()) / 1e6
				otelMiddleware.UpdateInfrastructureHealth("cache", "redis", redisErr == nil, redisLatency)
			}
		}()
		log.Info().Msg("Metrics 更新器已启动")

		huma.Register(api, huma.Operation{
			OperationID: "health-check",
			Method:      "GET",
			Path:        "/health",
			Summary:     "健康检查",
			Tags:        []string{"system"},
		}, func(ctx context.Context, input *struct{}) (*struct {
			Body struct {
				Status  string `json:"status" example:"ok"`
				Message string `json:"message" example:"服务运行正常"`
			}
		}, error) {
			resp := &struct {
				Body struct {
					Status  string `json:"status" example:"ok"`
					Message string `json:"message" example:"服务运行正常"`
				}
			}{}
			resp.Body.Status = "ok"
			resp.Body.Message = "蘑菇头 ERP API 服务运行正常"
			return resp, nil
		})

		// MongoDB 监控端点
		huma.Register(api, huma.Operation{
			OperationID: "mongodb-monitoring",
			Method:      "GET",
			Path:        "/api/monitoring/mongodb",
			Summary:     "MongoDB 健康状态监控",
			Tags:        []string{"monitoring"},
		}, func(ctx context.Context, input *struct{}) (*struct {
			Body struct {
				Status  string  `json:"status" example:"healthy"`
				Latency float64 `json:"latency" example:"1.23"`
				Message string  `json:"message" example:"MongoDB 连接正常"`
			}
		}, error) {
			start := time.Now()
			err := services.MongoDB.Client.Ping(ctx, nil)
			latency := float64(time.Since(start).Nanoseconds()) / 1e6

			resp := &struct {
				Body struct {
					Status  string  `json:"status" example:"healthy"`
					Latency float64 `json:"latency" example:"1.23"`
					Message string  `json:"message" example:"MongoDB 连接正常"`
				}
			}{}

			if err != nil {
				resp.Body.Status = "unhealthy"
				resp.Body.Latency = latency
				resp.Body.Message = fmt.Sprintf("MongoDB 连接失败: %v", err)
			} else {
				resp.Body.Status = "healthy"
				resp.Body.Latency = latency
				resp.Body.Message = "MongoDB 连接正常"
			}
			return resp, nil
		})

		// Redis 监控端点
		huma.Register(api, huma.Operation{
			OperationID: "redis-monitoring",
			Method:      "GET",
			Path:        "/api/monitoring/redis",
			Summary:     "Redis 健康状态监控",
			Tags:        []string{"monitoring"},
		}, func(ctx context.Context, input *struct{}) (*struct {
			Body struct {
				Status  string  `json:"status" example:"healthy"`
				Latency float64 `json:"latency" example:"0.45"`
				Message string  `json:"message" example:"Redis 连接正常"`
			}
		}, error) {
			start := time.Now()
			var err error
			if services.Redis != nil {
				err = services.Redis.Client.Ping(ctx).Err()
			} else {
				err = fmt.Errorf("Redis 服务未启用")
			}
			latency := float64(time.Since(start).Nanoseconds()) / 1e6

			resp := &struct {
				Body struct {
					Status  string  `json:"status" example:"healthy"`
					Latency float64 `json:"latency" example:"0.45"`
					Message string  `json:"message" example:"Redis 连接正常"`
				}
			}{}

			if err != nil {
				resp.Body.Status = "unhealthy"
				resp.Body.Latency = latency
				resp.Body.Message = fmt.Sprintf("Redis 连接失败: %v", err)
			} else {
				resp.Body.Status = "healthy"
				resp.Body.Latency = latency
				resp.Body.Message = "Redis 连接正常"
			}
			return resp, nil
		})

		hooks.OnStart(func() {
			log.Info().
				Int("port", options.Port).
				Str("docs_url", fmt.Sprintf("%s/docs", serverURL)).
				Msg("API 文档已启用")
			log.Info().
				Int("port", options.Port).
				Str("openapi_url", fmt.Sprintf("%s/openapi.json", serverURL)).
				Msg("OpenAPI 规格已启用")
			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", options.Port),
				Handler: router,
			}
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().
						Err(err).
						Msg("服务器启动失败")
				}
			}()
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Info().Msg("正在关闭服务器...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Error().
					Err(err).
					Msg("服务器关闭错误")
			}
			// 清理 OpenTelemetry resources
			if otelCleanup != nil {
				log.Info().Msg("正在关闭 OpenTelemetry...")
				otelCleanup()
			}
			cleanupServices(services)
			log.Info().Msg("服务器已关闭")
		})
	})
	cli.Run()
}

func initializeServices() (*AppServices, error) {
	mongoConfig := infra.MongoConfig{
		URI:      infra.AppConfig.MongoDB.URI,
		Database: infra.AppConfig.MongoDB.Database,
	}
	mongoDB, err := infra.NewMongoDB(mongoConfig)
	if err != nil {
		return nil, fmt.Errorf("MongoDB 初始化失败: %w", err)
	}

	redisConfig := infra.RedisConfig{
		Addr:     infra.AppConfig.Redis.Addr,
		Password: infra.AppConfig.Redis.Password,
		DB:       infra.AppConfig.Redis.DB,
	}
	redisClient, err := infra.NewRedis(redisConfig)
	if err != nil {
		return nil, fmt.Errorf("Redis 初始化失败: %w", err)
	}

	return &AppServices{
		MongoDB: mongoDB,
		Redis:   redisClient,
	}, nil
}

func cleanupServices(services *AppServices) {
	if services.MongoDB != nil {
		ctx := context.Background()
		if err := services.MongoDB.Close(ctx); err != nil {
			log.Error().
				Err(err).
				Msg("MongoDB 关闭错误")
		}
	}

	if services.Redis != nil {
		if err := services.Redis.Close(); err != nil {
			log.Error().
				Err(err).
				Msg("Redis 关闭错误")
		}
	}
}
