package peakfinder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/params"
	"github.com/kilianp07/pvcompare/core/solar"
)

// tableModel returns a fixed power per timestamp. Its thermal model makes the
// cell temperature equal to the ambient temperature.
type tableModel struct {
	power map[time.Time]float64
	calls int
}

func (m *tableModel) Technology() model.Technology        { return model.TechSi }
func (m *tableModel) SubCells() []params.ModuleParameters { return nil }
func (m *tableModel) CellToModuleLoss() float64           { return 0 }
func (m *tableModel) ModuleArea() float64                 { return 1 }
func (m *tableModel) Efficiency() float64                 { return 20 }
func (m *tableModel) Thermal() solar.Thermal              { return solar.Thermal{A: -100} }

func (m *tableModel) Compute(_ model.Location, w model.WeatherSeries, _ model.Orientation) ([]float64, error) {
	m.calls++
	out := make([]float64, w.Len())
	for i, s := range w.Samples {
		out[i] = m.power[s.Time]
	}
	return out, nil
}

var flat = model.Orientation{Azimuth: 180, Tilt: 0}

// reference builds a horizontal-plane reference: with DNI = 0 the POA
// irradiance equals DHI at any sun position.
func reference(dhi, temp []float64) (Reference, *tableModel) {
	t0 := time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC)
	ref := Reference{Location: model.Location{Latitude: 40.3, Longitude: 5.4}}
	m := &tableModel{power: map[time.Time]float64{}}
	for i := range dhi {
		ts := t0.Add(time.Duration(i) * time.Hour)
		ref.Weather.Samples = append(ref.Weather.Samples, model.WeatherSample{Time: ts, GHI: dhi[i], DHI: dhi[i], TempAir: temp[i]})
		m.power[ts] = float64(100 + i)
	}
	return ref, m
}

/*
TestFindTwoStageSelection
Scenario: four reference hours.

Cases:
  - the two hours at exactly 1000 W/m2 are shortlisted
  - the one of them with the cell closest to 25 degC wins
  - an hour at 25 degC but 990 W/m2 never makes the shortlist
*/
func TestFindTwoStageSelection(t *testing.T) {
	ref, m := reference([]float64{1000, 990, 1000, 600}, []float64{40, 25, 30, 25})
	f := New(StaticSource{Ref: ref})

	peak, err := f.Find(context.Background(), m, flat)
	require.NoError(t, err)
	assert.Equal(t, 102.0, peak)
	assert.Equal(t, 1, m.calls, "only the selected hour is re-evaluated")
}

/*
TestFindExactMatchBeatsIrradianceTies
Scenario: three hours at exactly 1000 W/m2, the third also at 25 degC.

Cases:
  - the exact reference hour is selected although two earlier hours tie on irradiance
*/
func TestFindExactMatchBeatsIrradianceTies(t *testing.T) {
	ref, m := reference([]float64{1000, 1000, 1000, 990}, []float64{40, 30, 25, 26})
	f := New(StaticSource{Ref: ref})

	peak, err := f.Find(context.Background(), m, flat)
	require.NoError(t, err)
	assert.Equal(t, 102.0, peak)

	best, err := Select([]Candidate{
		{Index: 0, POA: 1000, TempCell: 40},
		{Index: 1, POA: 1000, TempCell: 30},
		{Index: 2, POA: 1000, TempCell: 25},
	}, STC)
	require.NoError(t, err)
	assert.Equal(t, 2, best.Index)
}

func TestSelectTieBreaksOnLowestIndex(t *testing.T) {
	cands := []Candidate{
		{Index: 0, POA: 950, TempCell: 25},
		{Index: 1, POA: 1050, TempCell: 30},
		{Index: 2, POA: 950, TempCell: 20},
		{Index: 3, POA: 1050, TempCell: 20},
	}
	// stage one: all four tie on |POA - 1000|; indices 0 and 1 are kept
	best, err := Select(cands, STC)
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index)

	cands = []Candidate{{Index: 0, POA: 1000, TempCell: 30}, {Index: 1, POA: 1000, TempCell: 20}}
	best, err = Select(cands, STC)
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index, "equal temperature distance keeps the earlier timestep")

	best, err = Select(cands[:1], STC)
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index)

	_, err = Select(nil, STC)
	assert.ErrorIs(t, err, model.ErrReferenceDataUnavailable)
}

func TestSelectCustomTarget(t *testing.T) {
	cands := []Candidate{{Index: 0, POA: 800, TempCell: 45}, {Index: 1, POA: 820, TempCell: 40}, {Index: 2, POA: 1000, TempCell: 25}}
	best, err := Select(cands, Target{Irradiance: 800, TempCell: 45})
	require.NoError(t, err)
	assert.Equal(t, 0, best.Index)
}

func TestFindReferenceUnavailable(t *testing.T) {
	boom := errors.New("file not found")
	f := New(SourceFunc(func(context.Context) (Reference, error) { return Reference{}, boom }))
	_, err := f.Find(context.Background(), &tableModel{}, flat)
	assert.ErrorIs(t, err, model.ErrReferenceDataUnavailable)
	assert.ErrorIs(t, err, boom)

	_, err = New(nil).Find(context.Background(), &tableModel{}, flat)
	assert.ErrorIs(t, err, model.ErrReferenceDataUnavailable)

	_, err = New(StaticSource{}).Find(context.Background(), &tableModel{}, flat)
	assert.ErrorIs(t, err, model.ErrReferenceDataUnavailable)
}

func TestFindTimeout(t *testing.T) {
	slow := SourceFunc(func(ctx context.Context) (Reference, error) {
		<-ctx.Done()
		return Reference{}, ctx.Err()
	})
	f := New(slow, WithTimeout(10*time.Millisecond))
	_, err := f.Find(context.Background(), &tableModel{}, flat)
	assert.ErrorIs(t, err, model.ErrReferenceDataUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCandidatesHorizontalPlane(t *testing.T) {
	ref, m := reference([]float64{1000, 500}, []float64{25, 10})
	cands := Candidates(ref, m.Thermal(), flat)
	require.Len(t, cands, 2)
	assert.InDelta(t, 1000, cands[0].POA, 1e-9)
	assert.InDelta(t, 25, cands[0].TempCell, 1e-9)
	assert.InDelta(t, 500, cands[1].POA, 1e-9)
}
