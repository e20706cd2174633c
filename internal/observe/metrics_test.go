package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordStroke(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStroke(ctx, "stroke", 200*time.Microsecond)
	m.RecordStroke(ctx, "stroke", 300*time.Microsecond)
	m.RecordStroke(ctx, "undo", 100*time.Microsecond)

	rm := collect(t, reader)
	met := findMetric(rm, "stenokey.strokes")
	if met == nil {
		t.Fatal("stroke counter not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("stroke counter is not a sum")
	}
	found := false
	for _, dp := range sum.DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if string(kv.Key) == "kind" && kv.Value.AsString() == "stroke" {
				found = true
				if dp.Value != 2 {
					t.Errorf("stroke count = %d, want 2", dp.Value)
				}
			}
		}
	}
	if !found {
		t.Error("data point with kind=stroke not found")
	}

	hist := findMetric(rm, "stenokey.stroke.duration")
	if hist == nil {
		t.Fatal("duration histogram not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("duration is not a histogram")
	}
	var total uint64
	for _, dp := range h.DataPoints {
		total += dp.Count
	}
	if total != 3 {
		t.Errorf("sample count = %d, want 3", total)
	}
}

func TestRecordBackspacesSkipsZero(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.RecordBackspaces(ctx, 0)
	m.RecordBackspaces(ctx, 4)

	met := findMetric(collect(t, reader), "stenokey.backspaces")
	if met == nil {
		t.Fatal("backspace counter not found")
	}
	sum := met.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 4 {
		t.Fatalf("expected 4 backspaces, got %+v", sum.DataPoints)
	}
}

func TestDefaultMetricsIsShared(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Fatal("expected the same default instance")
	}
}
