package loop

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tomz197/kartrace/internal/loop"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// frameMetrics counts loop iterations. It uses the global OTel meter, which is
// a no-op unless a provider is installed.
type frameMetrics struct {
	ctx       context.Context
	presented metric.Int64Counter
	throttled metric.Int64Counter
}

func newFrameMetrics() (*frameMetrics, error) {
	m := meter()
	fm := &frameMetrics{ctx: context.Background()}

	var err error
	fm.presented, err = m.Int64Counter(
		"kartrace.frames.presented",
		metric.WithDescription("Frames rendered and presented"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating presented counter: %w", err)
	}

	fm.throttled, err = m.Int64Counter(
		"kartrace.frames.throttled",
		metric.WithDescription("Loop iterations that slept to hold the frame rate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating throttled counter: %w", err)
	}

	return fm, nil
}

func (m *frameMetrics) framePresented() {
	m.presented.Add(m.ctx, 1)
}

func (m *frameMetrics) frameThrottled() {
	m.throttled.Add(m.ctx, 1)
}
