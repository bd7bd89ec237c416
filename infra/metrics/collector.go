package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/pvcompare/core/events"
	"github.com/kilianp07/pvcompare/core/logger"
	coremetrics "github.com/kilianp07/pvcompare/core/metrics"
	"github.com/kilianp07/pvcompare/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// row events. It stops when the context is canceled or the bus is closed;
// the returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.Sink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordRow(RowEvent(ev)); err != nil {
					log.Errorf("record row metrics: %v", err)
				}
			}
		}
	}()
	return done
}

// RowEvent converts a bus event into a metrics row event.
func RowEvent(ev events.Event) coremetrics.RowEvent {
	r := events.RowOf(ev)
	out := coremetrics.RowEvent{
		RunID:       r.RunID,
		Label:       r.Label,
		SurfaceType: r.SurfaceType,
		Key:         r.Key,
		Mode:        r.Mode,
		Time:        time.Now(),
	}
	switch e := ev.(type) {
	case events.RowComputed:
		out.Outcome = coremetrics.OutcomeComputed
		out.PeakW, out.CeilingKWp, out.AnnualYield = e.PeakW, e.CeilingKWp, e.AnnualYield
		out.Duration, out.Time = e.Duration, e.Time
	case events.RowCached:
		out.Outcome = coremetrics.OutcomeCacheHit
		out.CeilingKWp, out.AnnualYield, out.Time = e.CeilingKWp, e.AnnualYield, e.Time
	case events.RowFailed:
		out.Outcome = coremetrics.OutcomeFailed
		out.Time = e.Time
		if e.Err != nil {
			out.Error = e.Err.Error()
		}
	}
	return out
}
