package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceType 定义服务类型
type ServiceType string

const (
	ServiceTypeAI        ServiceType = "ai"
	ServiceTypeOrder     ServiceType = "order"
	ServiceTypeInventory ServiceType = "inventory"
	ServiceTypeFinance   ServiceType = "finance"
)

// OperationType 定义操作类型
type OperationType string

const (
	OperationClassifyIntent OperationType = "classify_intent"
	OperationParseCommand   OperationType = "parse_command"
	OperationDispatch       OperationType = "dispatch"
	OperationChat           OperationType = "chat"
	OperationAnalyze        OperationType = "analyze"
	OperationCreate         OperationType = "create"
	OperationQuery          OperationType = "query"
	OperationDelete         OperationType = "delete"
	OperationConfirm        OperationType = "confirm"
	OperationStockIn        OperationType = "stock_in"
	OperationStockOut       OperationType = "stock_out"
)

// OperationStatus 定义操作状态
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusError   OperationStatus = "error"
)

// OperationSource 定义结果来源，区分 AI 产出与本地回退
type OperationSource string

const (
	SourceAI       OperationSource = "ai"
	SourceFallback OperationSource = "fallback"
	SourceCache    OperationSource = "cache"
	SourceAPI      OperationSource = "api"
)

var (
	serviceOperationsTotal   *prometheus.CounterVec
	serviceOperationDuration *prometheus.HistogramVec
)

// InitServiceMetrics 初始化 Service 层 metrics
func InitServiceMetrics(registry *prometheus.Registry) error {
	serviceOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "service_operations_total",
			Help: "Total number of service layer operations",
		},
		[]string{"service", "operation", "status", "source"},
	)

	serviceOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "service_operation_duration_seconds",
			Help:    "Duration of service layer operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation", "source"},
	)

	if err := registry.Register(serviceOperationsTotal); err != nil {
		return err
	}

	if err := registry.Register(serviceOperationDuration); err != nil {
		return err
	}

	return nil
}

// RecordServiceOperation 记录 Service 层操作 metrics
func RecordServiceOperation(service ServiceType, operation OperationType, status OperationStatus, source OperationSource, duration time.Duration) {
	if serviceOperationsTotal != nil && serviceOperationDuration != nil {
		serviceOperationsTotal.WithLabelValues(string(service), string(operation), string(status), string(source)).Inc()
		serviceOperationDuration.WithLabelValues(string(service), string(operation), string(source)).Observe(duration.Seconds())
	}
}

// RecordPipelineOperation 专门记录 NLI 管线操作的便利函数
func RecordPipelineOperation(operation OperationType, status OperationStatus, source OperationSource, duration time.Duration) {
	RecordServiceOperation(ServiceTypeAI, operation, status, source, duration)
}
