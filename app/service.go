package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/pvcompare/config"
	"github.com/kilianp07/pvcompare/core/events"
	coremetrics "github.com/kilianp07/pvcompare/core/metrics"
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/normalization"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/peakfinder"
	"github.com/kilianp07/pvcompare/core/scenario"
	corestore "github.com/kilianp07/pvcompare/core/store"
	"github.com/kilianp07/pvcompare/core/technology"
	"github.com/kilianp07/pvcompare/infra/logger"
	"github.com/kilianp07/pvcompare/infra/metrics"
	"github.com/kilianp07/pvcompare/infra/mqtt"
	"github.com/kilianp07/pvcompare/infra/production"
	"github.com/kilianp07/pvcompare/infra/setup"
	_ "github.com/kilianp07/pvcompare/infra/store"
	"github.com/kilianp07/pvcompare/infra/weather"
	"github.com/kilianp07/pvcompare/internal/eventbus"
)

// Service wires the scenario orchestrator to its adapters.
type Service struct {
	cfg          *config.Config
	Models       *technology.Set
	Engine       *normalization.Engine
	Orchestrator *scenario.Orchestrator
	// Production is nil unless production.enabled is set.
	Production *production.CSVRecorder

	store     corestore.SeriesStore
	sink      coremetrics.Sink
	publisher *mqtt.Publisher
	bus       *eventbus.Bus[events.Event]
	log       logger.Logger
}

// New creates a Service from the configuration. Missing defaults are
// filled in place.
func New(cfg *config.Config) (*Service, error) {
	cfg.SetDefaults()
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format == "console")
	logg := logger.New("service")

	models, err := technology.NewSet(params.Default(), technology.Options{PSIType: cfg.PV.PSIType})
	if err != nil {
		return nil, fmt.Errorf("technology models: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var finder normalization.PeakFinder
	if cfg.Reference.Path != "" {
		finder = peakfinder.New(weather.FileReference{
			Path:     cfg.Reference.Path,
			Location: cfg.Reference.Location(),
			Year:     cfg.Reference.Year,
		}, peakfinder.WithTimeout(cfg.Reference.Timeout), peakfinder.WithLogger(logger.New("peakfinder")))
	} else {
		logg.Warnf("reference.path not set, real-world normalization is unavailable")
	}
	engine := normalization.NewEngine(finder, logger.New("normalization"), sink)

	st, err := corestore.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("series store: %w", err)
	}
	svc := &Service{cfg: cfg, Models: models, Engine: engine, store: st, sink: sink, log: logg}

	var recorders scenario.Recorders
	if cfg.Production.Enabled {
		svc.Production = production.NewCSVRecorder(cfg.Production.Dir, *cfg.Production.Overwrite, logger.New("production"))
		recorders = append(recorders, svc.Production)
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		recorders = append(recorders, pub)
	}

	svc.bus = eventbus.New[events.Event]()
	svc.Orchestrator, err = scenario.New(scenario.Config{
		Mode:    normalization.Mode(cfg.PV.Normalization),
		Sizing:  normalization.SizingStrategy(cfg.PV.Sizing),
		Workers: cfg.Scenario.Workers,
	}, scenario.Deps{
		Models:   models,
		Engine:   engine,
		Store:    st,
		Recorder: recorders,
		Bus:      svc.bus,
		Log:      logger.New("scenario"),
	})
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

// Site returns the configured district.
func (s *Service) Site() scenario.Site {
	return scenario.Site{
		Location:   s.cfg.Site.Location(),
		Population: s.cfg.Site.Population,
		Building:   *s.cfg.Site.Building,
	}
}

// Run loads the site weather and setup table, evaluates every row and
// waits for the metrics of the run to be recorded. A Service runs once.
func (s *Service) Run(ctx context.Context) (scenario.Report, error) {
	w, err := weather.LoadFile(s.cfg.Site.Weather)
	if err != nil {
		return scenario.Report{}, fmt.Errorf("site weather: %w", err)
	}
	if s.cfg.Site.Year != 0 {
		w = weather.FilterYear(w, s.cfg.Site.Year)
	}
	rows, err := setup.LoadFile(s.cfg.PV.Setup)
	if err != nil {
		return scenario.Report{}, err
	}

	collectorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	done := metrics.StartEventCollector(collectorCtx, s.bus, s.sink, logger.New("collector"))

	rep, err := s.Orchestrator.Run(ctx, s.Site(), w, rows)
	s.bus.Close()
	<-done
	if err != nil {
		return rep, err
	}
	s.log.Infof("run %s: %d rows evaluated, %d failed", rep.RunID, len(rep.Rows), len(rep.Errors))
	return rep, nil
}

// ServeMetrics exposes Prometheus metrics until ctx is canceled. It returns
// immediately when metrics.prometheus_addr is empty.
func (s *Service) ServeMetrics(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusAddr == "" {
		return nil
	}
	return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr)
}

// PeakLine is the peak of one technology under one normalization mode.
type PeakLine struct {
	Mode  normalization.Mode
	PeakW float64
	Err   error
}

// Peaks evaluates every normalization mode for tech at orientation o.
func (s *Service) Peaks(ctx context.Context, tech string, o model.Orientation) ([]PeakLine, error) {
	m, err := s.Models.Get(tech)
	if err != nil {
		return nil, err
	}
	modes := []normalization.Mode{
		normalization.ModeReferenceConditions,
		normalization.ModeRealWorldConditions,
		normalization.ModeIntendedEfficiency,
	}
	out := make([]PeakLine, 0, len(modes))
	for _, mode := range modes {
		p, err := s.Engine.Peak(ctx, m, mode, o)
		out = append(out, PeakLine{Mode: mode, PeakW: p, Err: err})
	}
	return out, nil
}

// Close releases the store, the publisher and metric sinks.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	closeSink(s.sink)
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

func closeSink(s coremetrics.Sink) {
	switch c := s.(type) {
	case *coremetrics.MultiSink:
		for _, child := range c.Sinks {
			closeSink(child)
		}
	case interface{ Close() }:
		c.Close()
	}
}
