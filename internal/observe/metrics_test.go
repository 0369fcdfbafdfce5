package observe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/nikhilbhutani/kidspeak/internal/observe"
)

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
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

func TestRecordScore(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordScore(ctx, "text", "es", "medium", 92, true)
	m.RecordScore(ctx, "text", "es", "medium", 95, true)
	m.RecordScore(ctx, "audio", "fr", "easy", 15, false)

	rm := collect(t, reader)
	got := findMetric(rm, "kidspeak.scoring.requests")
	if got == nil {
		t.Fatal("kidspeak.scoring.requests not found")
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data type = %T, want Sum[int64]", got.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
		if v, _ := dp.Attributes.Value(attribute.Key("language")); v.AsString() == "es" && dp.Value != 2 {
			t.Errorf("es count = %d, want 2", dp.Value)
		}
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	hist := findMetric(rm, "kidspeak.scoring.score")
	if hist == nil {
		t.Fatal("kidspeak.scoring.score not found")
	}
	if _, ok := hist.Data.(metricdata.Histogram[int64]); !ok {
		t.Fatalf("score data type = %T, want Histogram[int64]", hist.Data)
	}
}

func TestRecordFallbackAndLLM(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFallback(ctx, "audio", "provider_error")
	m.RecordLLM(ctx, "gemini", "error", 1500*time.Millisecond)
	m.RecordTTS(ctx, "hit", 3*time.Millisecond)
	m.RecordAttempt(ctx, "ok")

	rm := collect(t, reader)
	for _, name := range []string{
		"kidspeak.feedback.fallbacks",
		"kidspeak.llm.duration",
		"kidspeak.tts.duration",
		"kidspeak.attempts.recorded",
	} {
		if findMetric(rm, name) == nil {
			t.Errorf("%s not recorded", name)
		}
	}

	llm := findMetric(rm, "kidspeak.llm.duration")
	h, ok := llm.Data.(metricdata.Histogram[float64])
	if !ok || len(h.DataPoints) != 1 || h.DataPoints[0].Count != 1 {
		t.Errorf("llm histogram = %+v", llm.Data)
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(observe.Middleware(m))
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	rm := collect(t, reader)
	got := findMetric(rm, "kidspeak.http.request.duration")
	if got == nil {
		t.Fatal("http duration not recorded")
	}
	h := got.Data.(metricdata.Histogram[float64])
	if len(h.DataPoints) != 1 {
		t.Fatalf("got %d series, want 1 (route pattern should collapse ids)", len(h.DataPoints))
	}
	dp := h.DataPoints[0]
	if v, _ := dp.Attributes.Value("route"); v.AsString() != "/items/{id}" {
		t.Errorf("route = %q, want /items/{id}", v.AsString())
	}
	if v, _ := dp.Attributes.Value("status"); v.AsString() != "418" {
		t.Errorf("status = %q, want 418", v.AsString())
	}
	if dp.Count != 3 {
		t.Errorf("count = %d, want 3", dp.Count)
	}
}

func TestMiddleware_UnmatchedPathsShareOneSeries(t *testing.T) {
	t.Parallel()
	m, reader := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(observe.Middleware(m))
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/wp-login.php", "/.env", "/admin/config.json"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := findMetric(collect(t, reader), "kidspeak.http.request.duration")
	if got == nil {
		t.Fatal("http duration not recorded")
	}
	h := got.Data.(metricdata.Histogram[float64])
	if len(h.DataPoints) != 1 {
		t.Fatalf("got %d series, want 1 for unmatched paths", len(h.DataPoints))
	}
	if v, _ := h.DataPoints[0].Attributes.Value("route"); v.AsString() != observe.UnmatchedRoute {
		t.Errorf("route = %q, want %q", v.AsString(), observe.UnmatchedRoute)
	}
}
