package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("GET", "/api/v1/interviews", 200, 250*time.Millisecond)
	metrics.Observe("GET", "/api/v1/interviews", 200, 10*time.Millisecond)
	metrics.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/api/v1/interviews", "status": "200"})
	if err != nil {
		t.Fatalf("fetch requests: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}

	if _, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}); err != nil {
		t.Fatalf("expected unknown route label: %v", err)
	}

	sum, err := fetchHistogramSum(mfs, "http_request_duration_seconds", map[string]string{"route": "/api/v1/interviews"})
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum < 0.25 {
		t.Fatalf("expected duration sum >= 0.25, got %f", sum)
	}
}

func TestAuthMetricsRecordResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewAuthMetrics(reg)
	metrics.RecordResult("login", nil)
	metrics.RecordResult("login", errors.New("bad password"))
	metrics.RecordResult("login", errors.New("bad password"))
	metrics.Record("signup", OutcomeThrottle)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, _ := fetchCounterValue(mfs, "auth_events_total", map[string]string{"event": "login", "outcome": OutcomeFailure}); got != 2 {
		t.Fatalf("expected 2 failures, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "auth_events_total", map[string]string{"event": "signup", "outcome": OutcomeThrottle}); got != 1 {
		t.Fatalf("expected 1 throttle, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Second)
	NewAuthMetrics(nil).Record("login", OutcomeSuccess)
	var m *AuthMetrics
	m.RecordResult("login", nil)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
