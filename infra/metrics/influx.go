package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pvcompare/core/metrics"
	"github.com/kilianp07/pvcompare/infra/logger"
)

// InfluxSink writes scenario events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRow writes one pv_row point per evaluated setup row.
func (s *InfluxSink) RecordRow(ev coremetrics.RowEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("pv_row").
		AddTag("run_id", ev.RunID).
		AddTag("label", ev.Label)
	if ev.Key.Technology != "" {
		p = p.AddTag("technology", ev.Key.Technology.String())
	}
	p = p.AddTag("surface_type", ev.SurfaceType).
		AddTag("outcome", string(ev.Outcome)).
		AddTag("mode", ev.Mode)
	if ev.Outcome == coremetrics.OutcomeFailed {
		p = p.AddField("error", ev.Error)
	} else {
		p = p.AddField("ceiling_kwp", round3(ev.CeilingKWp)).
			AddField("annual_yield", round3(ev.AnnualYield)).
			AddField("peak_w", round3(ev.PeakW)).
			AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMisuse writes a normalization_misuse point.
func (s *InfluxSink) RecordMisuse(ev coremetrics.MisuseEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("normalization_misuse").
		AddTag("technology", ev.Technology.String()).
		AddTag("mode", ev.Mode).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
