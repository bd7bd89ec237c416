package scenario

import (
	"context"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvcompare/core/events"
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/normalization"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/sizing"
	"github.com/kilianp07/pvcompare/core/store"
	"github.com/kilianp07/pvcompare/core/technology"
	"github.com/kilianp07/pvcompare/internal/eventbus"
)

var testSite = Site{
	Location:   model.Location{Latitude: 45.6416, Longitude: 5.8754},
	Population: 600,
	Building:   sizing.DefaultBuildingParameters,
}

// clearDay returns 24 hourly samples of a clear June day in 2013.
func clearDay() model.WeatherSeries {
	start := time.Date(2013, 6, 21, 0, 0, 0, 0, time.UTC)
	w := model.WeatherSeries{}
	for h := 0; h < 24; h++ {
		ghi := math.Max(0, 900*math.Sin(math.Pi*(float64(h)-4)/16))
		w.Samples = append(w.Samples, model.WeatherSample{
			Time:      start.Add(time.Duration(h) * time.Hour),
			GHI:       ghi,
			DNI:       ghi * 0.8,
			DHI:       ghi * 0.2,
			TempAir:   22,
			WindSpeed: 2,
		})
	}
	return w
}

func siRow(surface string) SetupRow {
	return SetupRow{SurfaceType: surface, Technology: "si", Azimuth: 180, Tilt: model.TiltSpec{Optimal: true}}
}

type fakeRecorder struct {
	mu      sync.Mutex
	labels  []string
	records map[string]PlantRecord
}

func (f *fakeRecorder) Prepare(_ context.Context, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append([]string(nil), labels...)
	f.records = map[string]PlantRecord{}
	return nil
}

func (f *fakeRecorder) Record(_ context.Context, rec PlantRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.Label] = rec
	return nil
}

func newOrchestrator(t *testing.T, cfg Config, st store.SeriesStore, rec ProductionRecorder, bus *eventbus.Bus[events.Event]) *Orchestrator {
	t.Helper()
	set, err := technology.NewSet(params.Default(), technology.Options{PSIType: "Korte2020"})
	require.NoError(t, err)
	o, err := New(cfg, Deps{
		Models:   set,
		Engine:   normalization.NewEngine(nil, nil, nil),
		Store:    st,
		Recorder: rec,
		Bus:      bus,
	})
	require.NoError(t, err)
	return o
}

/*
TestRunSiliconReferenceConditions
Scenario: one silicon row on a flat roof, reference-conditions normalization.

Cases:
  - optimal tilt resolves to round(45.6416-15) = 31
  - the series equals the raw model output divided by the STC peak
  - every value is in [0, 1] for this irradiance level
*/
func TestRunSiliconReferenceConditions(t *testing.T) {
	st := store.NewMemoryStore()
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions, Workers: 2}, st, nil, nil)
	w := clearDay()

	rep, err := o.Run(context.Background(), testSite, w, []SetupRow{siRow("flat_roof")})
	require.NoError(t, err)
	require.Empty(t, rep.Errors)
	require.Len(t, rep.Rows, 1)
	assert.NotEmpty(t, rep.RunID)

	row := rep.Rows[0]
	assert.Equal(t, "pv_plant_01", row.Label)
	assert.Equal(t, 31.0, row.Key.Tilt)
	assert.Equal(t, 2013, row.Key.Year)
	assert.Equal(t, "si_180_31_2013_45.6416_5.8754.csv", row.Key.FileName())
	assert.Equal(t, model.UnitSpecific, row.Series.Unit)
	assert.InDelta(t, 5.9*37.3, row.PeakW, 1e-9)

	raw, err := technology.NewSilicon(params.Default().Si()).Compute(testSite.Location, w, model.Orientation{Azimuth: 180, Tilt: 31})
	require.NoError(t, err)
	require.Len(t, row.Series.Values, len(raw))
	for i, v := range row.Series.Values {
		assert.InDelta(t, math.Max(0, raw[i]/220.07), v, 1e-9)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Greater(t, row.AnnualYield, 0.0)
	assert.InDelta(t, row.AnnualYield/float64(len(raw)), row.CapacityFactor, 1e-9)
}

/*
TestRunIsIdempotent
Scenario: running the same scenario twice against one store.

Cases:
  - the second run reuses every stored series
  - no additional artifacts are written
  - results are identical, peak power included
*/
func TestRunIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions, Workers: 4}, st, nil, nil)
	rows := []SetupRow{siRow("flat_roof"), {SurfaceType: "south_facade", Technology: "cpv", Azimuth: 180, Tilt: model.TiltSpec{Degrees: 90}}}

	first, err := o.Run(context.Background(), testSite, clearDay(), rows)
	require.NoError(t, err)
	require.Len(t, first.Rows, 2)
	assert.Equal(t, 2, st.Puts())

	second, err := o.Run(context.Background(), testSite, clearDay(), rows)
	require.NoError(t, err)
	require.Len(t, second.Rows, 2)
	assert.Equal(t, 2, st.Puts())
	assert.NotEqual(t, first.RunID, second.RunID)

	for i := range second.Rows {
		assert.True(t, second.Rows[i].CacheHit)
		assert.Equal(t, first.Rows[i].Series.Values, second.Rows[i].Series.Values)
		assert.Equal(t, first.Rows[i].Ceiling, second.Rows[i].Ceiling)
		assert.Equal(t, first.Rows[i].PeakW, second.Rows[i].PeakW)
	}
	assert.InDelta(t, 5.9*37.3, second.Rows[0].PeakW, 1e-9)
}

func TestRunUnsupportedTechnologyFailsOnlyItsRow(t *testing.T) {
	rec := &fakeRecorder{}
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions, Workers: 2}, nil, rec, nil)
	rows := []SetupRow{siRow("flat_roof"), {SurfaceType: "flat_roof", Technology: "foo", Azimuth: 180, Tilt: model.TiltSpec{Degrees: 30}}}

	rep, err := o.Run(context.Background(), testSite, clearDay(), rows)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "pv_plant_01", rep.Rows[0].Label)
	require.Contains(t, rep.Errors, "pv_plant_02")
	assert.ErrorIs(t, rep.Errors["pv_plant_02"], model.ErrUnsupportedTechnology)

	assert.Equal(t, []string{"pv_plant_01", "pv_plant_02"}, rec.labels)
	assert.Contains(t, rec.records, "pv_plant_01")
	assert.NotContains(t, rec.records, "pv_plant_02")
}

func TestRunUnparsableRowFailsOnlyItsRow(t *testing.T) {
	rec := &fakeRecorder{}
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions, Workers: 2}, nil, rec, nil)
	_, parseErr := ParseRow(map[string]string{ColSurfaceType: "flat_roof", ColTechnology: "si", ColAzimuth: "180", ColTilt: "abc"})
	require.Error(t, parseErr)
	rows := []SetupRow{siRow("flat_roof"), {Err: parseErr}}

	rep, err := o.Run(context.Background(), testSite, clearDay(), rows)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "pv_plant_01", rep.Rows[0].Label)
	require.Contains(t, rep.Errors, "pv_plant_02")
	assert.ErrorIs(t, rep.Errors["pv_plant_02"], model.ErrInvalidInput)
	assert.NotContains(t, rec.records, "pv_plant_02")
}

func TestRunSameKeyComputedOnce(t *testing.T) {
	st := store.NewMemoryStore()
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions, Workers: 8}, st, nil, nil)
	rows := make([]SetupRow, 6)
	for i := range rows {
		rows[i] = siRow("flat_roof")
	}

	rep, err := o.Run(context.Background(), testSite, clearDay(), rows)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 6)
	assert.Equal(t, 1, st.Puts())

	hits := 0
	for _, r := range rep.Rows {
		if r.CacheHit {
			hits++
		}
	}
	assert.Equal(t, 5, hits)
}

/*
TestRunCeilingSizing
Scenario: area override on a silicon row.

Cases:
  - intended-efficiency sizing: 100 m2 / 1.701 m2 x 220.1094 W = 12.94 kWp
  - reference-conditions sizing uses the STC peak instead
  - the recorder receives the ceiling and the artifact file name
*/
func TestRunCeilingSizing(t *testing.T) {
	row := siRow("flat_roof")
	row.Area = 100

	rec := &fakeRecorder{}
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions}, nil, rec, nil)
	rep, err := o.Run(context.Background(), testSite, clearDay(), []SetupRow{row})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.InDelta(t, 12.94, rep.Rows[0].Ceiling.KWp(), 1e-9)
	assert.Equal(t, 100.0, rep.Rows[0].AreaM2)
	assert.InDelta(t, 12.94, rec.records["pv_plant_01"].CeilingKWp, 1e-9)
	assert.Equal(t, "si_180_31_2013_45.6416_5.8754.csv", rec.records["pv_plant_01"].FileName)
	assert.Equal(t, model.TechSi, rec.records["pv_plant_01"].Technology)

	o = newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions, Sizing: normalization.SizingReferenceConditions}, nil, nil, nil)
	rep, err = o.Run(context.Background(), testSite, clearDay(), []SetupRow{row})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	want := math.Round(100/1.701*5.9*37.3) / 1000
	assert.InDelta(t, want, rep.Rows[0].Ceiling.KWp(), 1e-9)
}

func TestRunAreaPotentialFromBuilding(t *testing.T) {
	o := newOrchestrator(t, Config{Mode: normalization.ModeNone}, nil, nil, nil)
	rep, err := o.Run(context.Background(), testSite, clearDay(), []SetupRow{siRow("flat_roof"), siRow("south_facade")})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	for _, r := range rep.Rows {
		want, err := sizing.AreaPotential(testSite.Population, testSite.Building, r.SurfaceType)
		require.NoError(t, err)
		assert.Equal(t, want, r.AreaM2)
		assert.Equal(t, model.UnitKilowatt, r.Series.Unit)
		assert.Zero(t, r.CapacityFactor)
	}
}

func TestRunRealWorldWithoutReferenceFails(t *testing.T) {
	o := newOrchestrator(t, Config{Mode: normalization.ModeRealWorldConditions}, nil, nil, nil)
	rep, err := o.Run(context.Background(), testSite, clearDay(), []SetupRow{siRow("flat_roof")})
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.ErrorIs(t, rep.Errors["pv_plant_01"], model.ErrReferenceDataUnavailable)
}

func TestRunUnknownSurfaceType(t *testing.T) {
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions}, nil, nil, nil)
	rep, err := o.Run(context.Background(), testSite, clearDay(), []SetupRow{siRow("basement")})
	require.NoError(t, err)
	assert.ErrorIs(t, rep.Errors["pv_plant_01"], model.ErrUnknownSurfaceType)
}

func TestRunRejectsInvalidWeather(t *testing.T) {
	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions}, nil, nil, nil)
	_, err := o.Run(context.Background(), testSite, model.WeatherSeries{}, []SetupRow{siRow("flat_roof")})
	assert.ErrorIs(t, err, model.ErrInvalidWeather)
}

func TestRunPublishesRowEvents(t *testing.T) {
	bus := eventbus.New[events.Event]()
	defer bus.Close()
	sub := bus.Subscribe()

	o := newOrchestrator(t, Config{Mode: normalization.ModeReferenceConditions}, nil, nil, bus)
	rows := []SetupRow{siRow("flat_roof"), siRow("flat_roof"), {SurfaceType: "flat_roof", Technology: "foo", Tilt: model.TiltSpec{Degrees: 10}}}
	rep, err := o.Run(context.Background(), testSite, clearDay(), rows)
	require.NoError(t, err)

	var kinds []string
	for range rows {
		select {
		case e := <-sub:
			assert.Equal(t, rep.RunID, events.RowOf(e).RunID)
			switch e.(type) {
			case events.RowComputed:
				kinds = append(kinds, "computed")
			case events.RowCached:
				kinds = append(kinds, "cached")
			case events.RowFailed:
				kinds = append(kinds, "failed")
			}
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
	sort.Strings(kinds)
	assert.Equal(t, []string{"cached", "computed", "failed"}, kinds)
}

func TestNewValidatesConfig(t *testing.T) {
	set := technology.NewSetFromModels()
	eng := normalization.NewEngine(nil, nil, nil)

	_, err := New(Config{Mode: "bogus"}, Deps{Models: set, Engine: eng})
	assert.ErrorIs(t, err, model.ErrUnsupportedNormalization)

	_, err = New(Config{Mode: normalization.ModeNone, Sizing: "bogus"}, Deps{Models: set, Engine: eng})
	assert.ErrorIs(t, err, model.ErrUnsupportedNormalization)

	_, err = New(Config{}, Deps{})
	assert.Error(t, err)

	o, err := New(Config{}, Deps{Models: set, Engine: eng})
	require.NoError(t, err)
	assert.Equal(t, 1, o.cfg.Workers)
	assert.Equal(t, normalization.SizingIntendedEfficiency, o.cfg.Sizing)
}
