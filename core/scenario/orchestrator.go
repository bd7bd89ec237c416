package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/pvcompare/core/events"
	"github.com/kilianp07/pvcompare/core/logger"
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/normalization"
	"github.com/kilianp07/pvcompare/core/sizing"
	"github.com/kilianp07/pvcompare/core/store"
	"github.com/kilianp07/pvcompare/core/technology"
	"github.com/kilianp07/pvcompare/internal/eventbus"
)

// Site describes where and for which district the scenario is evaluated.
type Site struct {
	Location   model.Location
	Population float64
	Building   sizing.BuildingParameters
}

// PlantRecord is the per-row output handed to the energy production record.
type PlantRecord struct {
	Label       string
	SurfaceType string
	Technology  model.Technology
	FileName    string
	CeilingKWp  float64
}

// ProductionRecorder persists plant records outside of the engine.
type ProductionRecorder interface {
	// Prepare is called once per run with the labels of all rows.
	Prepare(ctx context.Context, labels []string) error
	Record(ctx context.Context, rec PlantRecord) error
}

// NopRecorder discards plant records.
type NopRecorder struct{}

func (NopRecorder) Prepare(context.Context, []string) error   { return nil }
func (NopRecorder) Record(context.Context, PlantRecord) error { return nil }

// Config selects normalization and parallelism.
type Config struct {
	Mode    normalization.Mode
	Sizing  normalization.SizingStrategy
	Workers int
}

// RowResult is the outcome of one successful row.
type RowResult struct {
	Label       string
	SurfaceType sizing.SurfaceType
	Key         model.SeriesKey
	Series      model.YieldSeries
	CacheHit    bool
	PeakW       float64
	AreaM2      float64
	Ceiling     sizing.Ceiling
	// AnnualYield is the sum of the series values.
	AnnualYield float64
	// CapacityFactor is the mean of a specific yield series.
	CapacityFactor float64
}

// Report gathers the results of a run.
type Report struct {
	RunID  string
	Rows   []RowResult
	Errors map[string]error
}

// Orchestrator evaluates setup tables.
type Orchestrator struct {
	cfg      Config
	models   *technology.Set
	engine   *normalization.Engine
	store    store.SeriesStore
	recorder ProductionRecorder
	bus      *eventbus.Bus[events.Event]
	log      logger.Logger
	locks    keyedMutex
}

// Deps are the collaborators of an Orchestrator. Store defaults to a
// MemoryStore and Recorder to NopRecorder; Bus and Log are optional.
type Deps struct {
	Models   *technology.Set
	Engine   *normalization.Engine
	Store    store.SeriesStore
	Recorder ProductionRecorder
	Bus      *eventbus.Bus[events.Event]
	Log      logger.Logger
}

// New validates cfg and returns an Orchestrator.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if deps.Models == nil || deps.Engine == nil {
		return nil, errors.New("scenario: models and engine are required")
	}
	mode, err := normalization.ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	strategy, err := normalization.ParseSizingStrategy(string(cfg.Sizing))
	if err != nil {
		return nil, err
	}
	cfg.Mode, cfg.Sizing = mode, strategy
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if deps.Store == nil {
		deps.Store = store.NewMemoryStore()
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	return &Orchestrator{
		cfg:      cfg,
		models:   deps.Models,
		engine:   deps.Engine,
		store:    deps.Store,
		recorder: deps.Recorder,
		bus:      deps.Bus,
		log:      logger.OrNop(deps.Log),
	}, nil
}

// Run evaluates every row against weather. Row failures are collected in
// Report.Errors keyed by plant label and never abort other rows. The
// returned error reports invalid weather, recorder preparation failures or
// context cancellation.
func (o *Orchestrator) Run(ctx context.Context, site Site, weather model.WeatherSeries, rows []SetupRow) (Report, error) {
	rep := Report{RunID: uuid.NewString(), Rows: make([]RowResult, 0, len(rows)), Errors: map[string]error{}}
	if err := weather.Validate(); err != nil {
		return rep, err
	}
	labels := make([]string, len(rows))
	for i := range rows {
		labels[i] = PlantLabel(i)
	}
	if err := o.recorder.Prepare(ctx, labels); err != nil {
		return rep, fmt.Errorf("prepare production record: %w", err)
	}
	o.log.Infof("run %s: %d rows, mode=%s sizing=%s workers=%d", rep.RunID, len(rows), o.cfg.Mode, o.cfg.Sizing, o.cfg.Workers)

	results := make([]*RowResult, len(rows))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, row := range rows {
		g.Go(func() error {
			ev := events.Row{RunID: rep.RunID, Label: labels[i], SurfaceType: row.SurfaceType, Mode: o.cfg.Mode.String()}
			res, err := o.evaluate(gctx, site, weather, ev, row)
			if err != nil {
				o.log.Errorf("run %s: %s (%s/%s) failed: %v", rep.RunID, labels[i], row.SurfaceType, row.Technology, err)
				o.publish(events.RowFailed{Row: ev, Err: err, Time: time.Now()})
				mu.Lock()
				rep.Errors[labels[i]] = err
				mu.Unlock()
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()
	for _, r := range results {
		if r != nil {
			rep.Rows = append(rep.Rows, *r)
		}
	}
	return rep, ctx.Err()
}

func (o *Orchestrator) evaluate(ctx context.Context, site Site, weather model.WeatherSeries, ev events.Row, row SetupRow) (RowResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return RowResult{}, err
	}
	if row.Err != nil {
		return RowResult{}, row.Err
	}
	m, err := o.models.Get(row.Technology)
	if err != nil {
		return RowResult{}, err
	}
	surface, err := sizing.ParseSurfaceType(row.SurfaceType)
	if err != nil {
		return RowResult{}, err
	}
	orient := model.Orientation{Azimuth: row.Azimuth, Tilt: row.Tilt.Resolve(site.Location.Latitude)}
	key := model.SeriesKey{
		Technology: m.Technology(),
		Azimuth:    orient.Azimuth,
		Tilt:       orient.Tilt,
		Year:       weather.Year(),
		Latitude:   site.Location.Latitude,
		Longitude:  site.Location.Longitude,
	}
	ev.Key = key

	series, peak, hit, err := o.loadOrCompute(ctx, m, site.Location, weather, orient, key)
	if err != nil {
		return RowResult{}, err
	}

	area := row.Area
	if area <= 0 {
		if area, err = sizing.AreaPotential(site.Population, site.Building, surface); err != nil {
			return RowResult{}, err
		}
	}
	sizingPeak, err := o.engine.SizingPeak(m, o.cfg.Sizing)
	if err != nil {
		return RowResult{}, err
	}
	ceiling, err := sizing.Size(area, sizingPeak, m.ModuleArea())
	if err != nil {
		return RowResult{}, err
	}
	o.log.Infof("the nominal value for %s is %.3f kWp for an area of %.1f m2", ev.Label, ceiling.KWp(), area)
	if err := o.recorder.Record(ctx, PlantRecord{
		Label:       ev.Label,
		SurfaceType: string(surface),
		Technology:  m.Technology(),
		FileName:    key.FileName(),
		CeilingKWp:  ceiling.KWp(),
	}); err != nil {
		return RowResult{}, fmt.Errorf("record %s: %w", ev.Label, err)
	}

	res := RowResult{
		Label:       ev.Label,
		SurfaceType: surface,
		Key:         key,
		Series:      series,
		CacheHit:    hit,
		PeakW:       peak,
		AreaM2:      area,
		Ceiling:     ceiling,
		AnnualYield: floats.Sum(series.Values),
	}
	if series.Unit == model.UnitSpecific && series.Len() > 0 {
		res.CapacityFactor = stat.Mean(series.Values, nil)
	}
	if hit {
		o.publish(events.RowCached{Row: ev, CeilingKWp: ceiling.KWp(), AnnualYield: res.AnnualYield, Time: time.Now()})
	} else {
		o.publish(events.RowComputed{Row: ev, PeakW: peak, CeilingKWp: ceiling.KWp(), AnnualYield: res.AnnualYield,
			Duration: time.Since(start), Time: time.Now()})
	}
	return res, nil
}

// loadOrCompute returns the stored series for key or computes, normalizes and
// stores a new one. The whole sequence holds the key's lock.
func (o *Orchestrator) loadOrCompute(ctx context.Context, m technology.Model, loc model.Location, weather model.WeatherSeries,
	orient model.Orientation, key model.SeriesKey) (model.YieldSeries, float64, bool, error) {
	unlock := o.locks.lock(key.String())
	defer unlock()

	cached, ok, err := o.store.Get(ctx, key)
	if err != nil {
		return model.YieldSeries{}, 0, false, fmt.Errorf("load %s: %w", key, err)
	}
	if ok {
		o.log.Debugf("reusing stored series %s", key)
		peak, err := o.engine.Peak(ctx, m, o.cfg.Mode, orient)
		if err != nil {
			return model.YieldSeries{}, 0, false, fmt.Errorf("peak %s: %w", key, err)
		}
		return cached, peak, true, nil
	}

	raw, err := m.Compute(loc, weather, orient)
	if err != nil {
		return model.YieldSeries{}, 0, false, fmt.Errorf("compute %s: %w", key, err)
	}
	res, err := o.engine.Normalize(ctx, m, o.cfg.Mode, orient, raw)
	if err != nil {
		return model.YieldSeries{}, 0, false, fmt.Errorf("normalize %s: %w", key, err)
	}
	series := model.YieldSeries{Key: key, Unit: res.Unit, Times: weather.Times(), Values: res.Values}
	if err := o.store.Put(ctx, series); err != nil {
		return model.YieldSeries{}, 0, false, fmt.Errorf("store %s: %w", key, err)
	}
	o.log.Infof("%s timeseries saved as %s", key.Technology, key.FileName())
	return series, res.PeakW, false, nil
}

func (o *Orchestrator) publish(e events.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}

// keyedMutex hands out one mutex per key. Entries are reference counted and
// dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
