package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments for the settlement engine.
type Metrics struct {
	transactionsCreated   metric.Int64Counter
	transactionsCancelled metric.Int64Counter
	receiptsIssued        metric.Int64Counter
	receiptsPrinted       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "kasira"
	}
	meter := provider.Meter(name)

	transactionsCreated, err := meter.Int64Counter("kasira_transactions_created_total")
	if err != nil {
		return nil, err
	}
	transactionsCancelled, err := meter.Int64Counter("kasira_transactions_cancelled_total")
	if err != nil {
		return nil, err
	}
	receiptsIssued, err := meter.Int64Counter("kasira_receipts_issued_total")
	if err != nil {
		return nil, err
	}
	receiptsPrinted, err := meter.Int64Counter("kasira_receipts_printed_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		transactionsCreated:   transactionsCreated,
		transactionsCancelled: transactionsCancelled,
		receiptsIssued:        receiptsIssued,
		receiptsPrinted:       receiptsPrinted,
	}, nil
}

// RecordTransactionCreated increments transaction creation counts.
func (m *Metrics) RecordTransactionCreated(ctx context.Context, status, txnType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("status", strings.TrimSpace(status)),
		attribute.String("type", strings.TrimSpace(txnType)),
	)
	m.transactionsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTransactionCancelled increments cancellation counts.
func (m *Metrics) RecordTransactionCancelled(ctx context.Context, priorStatus string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(priorStatus)))
	m.transactionsCancelled.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReceiptIssued increments receipt generation counts.
func (m *Metrics) RecordReceiptIssued(ctx context.Context) {
	if m == nil {
		return
	}
	m.receiptsIssued.Add(ctx, 1)
}

// RecordReceiptPrinted increments receipt print counts.
func (m *Metrics) RecordReceiptPrinted(ctx context.Context) {
	if m == nil {
		return
	}
	m.receiptsPrinted.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"status":      {},
	"type":        {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
