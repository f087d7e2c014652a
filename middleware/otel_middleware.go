package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// OtelConfig 遥测开关与导出目标
type OtelConfig struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	OTLPEndpoint    string
	Enabled         bool
	MetricsEnabled  bool
	TracesEnabled   bool
	DevelopmentMode bool // 开发模式导出到 stdout，否则走 OTLP gRPC
}

var (
	httpTracer      trace.Tracer
	otelReqCounter  metric.Int64Counter
	otelReqDuration metric.Float64Histogram
	otelReqInFlight metric.Int64UpDownCounter
)

// InitOpenTelemetry 建立 trace 与 metric provider，返回清理函数
func InitOpenTelemetry(config OtelConfig, logger zerolog.Logger) (func(), error) {
	if !config.Enabled {
		return func() {}, nil
	}

	ctx := context.Background()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(config.Environment),
		semconv.ServiceInstanceIDKey.String(fmt.Sprintf("%s-%d", config.ServiceName, time.Now().Unix())),
	)

	var cleanups []func(context.Context) error

	if config.TracesEnabled {
		shutdown, err := newTraceProvider(ctx, res, config, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化 trace provider 失败: %w", err)
		}
		cleanups = append(cleanups, shutdown)
		httpTracer = otel.Tracer(config.ServiceName)
	}

	if config.MetricsEnabled {
		shutdown, err := newMeterProvider(ctx, res, config, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化 meter provider 失败: %w", err)
		}
		cleanups = append(cleanups, shutdown)
		if err := registerHTTPInstruments(otel.Meter(config.ServiceName)); err != nil {
			return nil, fmt.Errorf("注册 HTTP 指标失败: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info().
		Str("service", config.ServiceName).
		Str("version", config.ServiceVersion).
		Str("otlp_endpoint", config.OTLPEndpoint).
		Bool("traces", config.TracesEnabled).
		Bool("metrics", config.MetricsEnabled).
		Msg("OpenTelemetry 初始化成功")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, cleanup := range cleanups {
			if err := cleanup(ctx); err != nil {
				logger.Error().Err(err).Msg("OpenTelemetry 关闭失败")
			}
		}
		logger.Info().Msg("OpenTelemetry 清理完成")
	}, nil
}

func newTraceProvider(ctx context.Context, res *resource.Resource, config OtelConfig, logger zerolog.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error
	if config.DevelopmentMode {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	}
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	logger.Info().Bool("stdout", config.DevelopmentMode).Msg("trace exporter 就绪")
	return tp.Shutdown, nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, config OtelConfig, logger zerolog.Logger) (func(context.Context) error, error) {
	promExporter, err := otelprom.New()
	if err != nil {
		return nil, err
	}
	readers := []sdkmetric.Reader{promExporter}

	if config.DevelopmentMode {
		stdoutExporter, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(stdoutExporter,
			sdkmetric.WithInterval(30*time.Second)))
	} else {
		otlpExporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			// OTLP 不可达时降级为仅 Prometheus
			logger.Warn().Err(err).Msg("OTLP metric exporter 不可用")
		} else {
			readers = append(readers, sdkmetric.NewPeriodicReader(otlpExporter,
				sdkmetric.WithInterval(30*time.Second)))
		}
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	logger.Info().Int("readers", len(readers)).Msg("metric exporter 就绪")
	return mp.Shutdown, nil
}

func registerHTTPInstruments(meter metric.Meter) error {
	var err error
	otelReqCounter, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return err
	}
	otelReqDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0))
	if err != nil {
		return err
	}
	otelReqInFlight, err = meter.Int64UpDownCounter("http_requests_active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"))
	return err
}

// OpenTelemetryMiddleware 为每个请求建立 span、记录指标并输出访问日志
func OpenTelemetryMiddleware(config OtelConfig, logger zerolog.Logger) func(huma.Context, func(huma.Context)) {
	if !config.Enabled {
		return func(ctx huma.Context, next func(huma.Context)) {
			next(ctx)
		}
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		method := ctx.Method()
		route := ctx.URL().Path

		carrier := &humaHeaderCarrier{ctx: ctx}
		parentCtx := otel.GetTextMapPropagator().Extract(ctx.Context(), carrier)

		var span trace.Span
		spanCtx := parentCtx
		if config.TracesEnabled && httpTracer != nil {
			spanCtx, span = httpTracer.Start(parentCtx, method+" "+route,
				trace.WithAttributes(
					semconv.HTTPMethodKey.String(method),
					semconv.HTTPRouteKey.String(route),
					attribute.String("net.peer.ip", ctx.RemoteAddr()),
				),
			)
			defer span.End()

			ctx.SetHeader("X-Trace-ID", span.SpanContext().TraceID().String())
			otel.GetTextMapPropagator().Inject(spanCtx, carrier)
		}

		reqAttrs := metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
		)
		if config.MetricsEnabled && otelReqInFlight != nil {
			otelReqInFlight.Add(spanCtx, 1, reqAttrs)
		}

		next(ctx)

		duration := time.Since(start)
		statusCode := ctx.Status()

		if config.MetricsEnabled {
			doneAttrs := metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("route", route),
				attribute.Int("status_code", statusCode),
			)
			if otelReqCounter != nil {
				otelReqCounter.Add(spanCtx, 1, doneAttrs)
			}
			if otelReqDuration != nil {
				otelReqDuration.Record(spanCtx, duration.Seconds(), doneAttrs)
			}
			if otelReqInFlight != nil {
				otelReqInFlight.Add(spanCtx, -1, reqAttrs)
			}
		}

		if span != nil {
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(statusCode))
			if statusCode >= 400 {
				span.RecordError(fmt.Errorf("HTTP %d", statusCode))
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		}

		logEvent := logger.Info()
		if statusCode >= 500 {
			logEvent = logger.Error()
		} else if statusCode >= 400 {
			logEvent = logger.Warn()
		}
		if span != nil {
			logEvent = logEvent.Str("trace_id", span.SpanContext().TraceID().String())
		}
		logEvent.
			Str("method", method).
			Str("path", route).
			Int("status_code", statusCode).
			Float64("duration_ms", float64(duration.Nanoseconds())/1e6).
			Str("remote_addr", ctx.RemoteAddr()).
			Msg("HTTP 请求完成")
	}
}

// humaHeaderCarrier 让 propagator 读写 huma 的请求/响应 header
type humaHeaderCarrier struct {
	ctx huma.Context
}

func (h *humaHeaderCarrier) Get(key string) string {
	return h.ctx.Header(key)
}

func (h *humaHeaderCarrier) Set(key, value string) {
	h.ctx.SetHeader(key, value)
}

func (h *humaHeaderCarrier) Keys() []string {
	// huma.Context 不提供枚举 header 的方法，extract 路径用不到
	return []string{}
}
