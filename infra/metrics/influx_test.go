package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pvcompare/core/metrics"
	"github.com/kilianp07/pvcompare/core/model"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(b)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

var siKey = model.SeriesKey{Technology: model.TechSi, Azimuth: 180, Tilt: 31, Year: 2013, Latitude: 45.6416, Longitude: 5.8754}

func TestInfluxSink_RecordRow(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.RowEvent{
		RunID:       "run1",
		Label:       "pv_plant_01",
		SurfaceType: "flat_roof",
		Key:         siKey,
		Outcome:     coremetrics.OutcomeComputed,
		Mode:        "reference_conditions",
		PeakW:       220.07,
		CeilingKWp:  86.2345,
		AnnualYield: 1234.56789,
		Duration:    1500 * time.Millisecond,
		Time:        now,
	}
	if err := sink.RecordRow(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("pv_row").
		AddTag("run_id", "run1").
		AddTag("label", "pv_plant_01").
		AddTag("technology", "si").
		AddTag("surface_type", "flat_roof").
		AddTag("outcome", "computed").
		AddTag("mode", "reference_conditions").
		AddField("ceiling_kwp", 86.235).
		AddField("annual_yield", 1234.568).
		AddField("peak_w", 220.07).
		AddField("duration_ms", 1500.0).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_RecordFailedRow(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.RowEvent{RunID: "run1", Label: "pv_plant_02", SurfaceType: "flat_roof", Key: siKey,
		Outcome: coremetrics.OutcomeFailed, Mode: "none", Error: "unsupported technology", Time: now}
	if err := sink.RecordRow(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("pv_row").
		AddTag("run_id", "run1").
		AddTag("label", "pv_plant_02").
		AddTag("technology", "si").
		AddTag("surface_type", "flat_roof").
		AddTag("outcome", "failed").
		AddTag("mode", "none").
		AddField("error", "unsupported technology").
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_RecordMisuse(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	if err := sink.RecordMisuse(coremetrics.MisuseEvent{Technology: model.TechPSI, Mode: "intended_efficiency", Time: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("normalization_misuse").
		AddTag("technology", "psi").
		AddTag("mode", "intended_efficiency").
		AddField("count", 1).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestInfluxSink_WriteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	sink := NewInfluxSink(srv.URL, "bad", "org", "bucket")
	defer sink.Close()
	err := sink.RecordRow(coremetrics.RowEvent{Outcome: coremetrics.OutcomeComputed, Time: time.Now()})
	if err == nil {
		t.Fatalf("expected write error")
	}
}
