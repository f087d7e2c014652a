package infra

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const ServiceName = "mogutou-backend"

var globalTracer trace.Tracer

// InitTracer 初始化全局 tracer
func InitTracer() {
	globalTracer = otel.Tracer(ServiceName)
}

// GetTracer 获取全局 tracer，未初始化时先初始化
func GetTracer() trace.Tracer {
	if globalTracer == nil {
		InitTracer()
	}
	return globalTracer
}

// StartSpan 开始一个新的 span
func StartSpan(ctx context.Context, operationName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, operationName)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// 业务属性
func AttrIntentType(intentType string) attribute.KeyValue {
	return attribute.String("nli.intent_type", intentType)
}

func AttrAction(action string) attribute.KeyValue {
	return attribute.String("nli.action", action)
}

func AttrFloat64(key string, value float64) attribute.KeyValue {
	return attribute.Float64(key, value)
}

// StartPipelineSpan 开始一个流水线阶段 span，阶段名带 nli_pipeline_ 前缀
func StartPipelineSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String("service.operation", operation),
	}, attrs...)
	return StartSpan(ctx, "nli_pipeline_"+operation, all...)
}

// RecordPipelineSuccess 标记阶段成功并附带动作属性
func RecordPipelineSuccess(span trace.Span, action string, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.AddEvent("stage_completed")
	span.SetAttributes(append([]attribute.KeyValue{
		AttrAction(action),
		attribute.Bool("operation.success", true),
	}, attrs...)...)
	span.SetStatus(codes.Ok, "")
}

// RecordPipelineError 记录阶段失败
func RecordPipelineError(span trace.Span, err error, action, description string) {
	if span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
	span.SetAttributes(
		AttrAction(action),
		attribute.Bool("operation.success", false),
	)
	span.AddEvent("stage_failed", trace.WithAttributes(
		attribute.String("error", err.Error()),
	))
}
