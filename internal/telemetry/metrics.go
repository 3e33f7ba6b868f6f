package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolCallOutcome labels the result of a proxied tool call.
type ToolCallOutcome string

const (
	ToolCallOutcomeSuccess ToolCallOutcome = "success"
	ToolCallOutcomeError   ToolCallOutcome = "error"
)

// CustomMetrics records toolgate's domain metrics.
// A no-op implementation is used when telemetry is disabled, so callers can
// record unconditionally without checking whether metrics are enabled.
type CustomMetrics interface {
	// RecordToolCall records one proxied tool execution.
	RecordToolCall(ctx context.Context, server, tool string, outcome ToolCallOutcome, duration time.Duration)

	// RecordDiscovery records one discovery query and its match count.
	RecordDiscovery(ctx context.Context, matches int, duration time.Duration)

	// RecordProvisionedTokens records the total token cost of one
	// provisioning response.
	RecordProvisionedTokens(ctx context.Context, tokens int)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics implementation that does nothing.
func NewNoopCustomMetrics() CustomMetrics {
	return &noopCustomMetrics{}
}

func (n *noopCustomMetrics) RecordToolCall(context.Context, string, string, ToolCallOutcome, time.Duration) {
}
func (n *noopCustomMetrics) RecordDiscovery(context.Context, int, time.Duration) {}

func (n *noopCustomMetrics) RecordProvisionedTokens(context.Context, int) {}

type otelCustomMetrics struct {
	toolCalls         metric.Int64Counter
	toolCallDuration  metric.Float64Histogram
	discoveryQueries  metric.Int64Counter
	discoveryDuration metric.Float64Histogram
	provisionedTokens metric.Int64Histogram
}

// NewOtelCustomMetrics creates the real CustomMetrics implementation backed
// by the given meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	toolCalls, err := meter.Int64Counter(
		"toolgate.tool_calls.total",
		metric.WithDescription("Total number of proxied tool calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_calls counter: %w", err)
	}

	toolCallDuration, err := meter.Float64Histogram(
		"toolgate.tool_calls.duration",
		metric.WithDescription("Duration of proxied tool calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_calls duration histogram: %w", err)
	}

	discoveryQueries, err := meter.Int64Counter(
		"toolgate.discovery.queries.total",
		metric.WithDescription("Total number of discovery queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery queries counter: %w", err)
	}

	discoveryDuration, err := meter.Float64Histogram(
		"toolgate.discovery.duration",
		metric.WithDescription("Duration of discovery queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery duration histogram: %w", err)
	}

	provisionedTokens, err := meter.Int64Histogram(
		"toolgate.provision.tokens",
		metric.WithDescription("Token cost of provisioning responses"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provisioned tokens histogram: %w", err)
	}

	return &otelCustomMetrics{
		toolCalls:         toolCalls,
		toolCallDuration:  toolCallDuration,
		discoveryQueries:  discoveryQueries,
		discoveryDuration: discoveryDuration,
		provisionedTokens: provisionedTokens,
	}, nil
}

func (m *otelCustomMetrics) RecordToolCall(ctx context.Context, server, tool string, outcome ToolCallOutcome, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("server", server),
		attribute.String("tool", tool),
		attribute.String("outcome", string(outcome)),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolCallDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *otelCustomMetrics) RecordDiscovery(ctx context.Context, matches int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Int("matches", matches))
	m.discoveryQueries.Add(ctx, 1, attrs)
	m.discoveryDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *otelCustomMetrics) RecordProvisionedTokens(ctx context.Context, tokens int) {
	m.provisionedTokens.Record(ctx, int64(tokens))
}
