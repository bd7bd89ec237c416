package app

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvcompare/config"
	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/normalization"
	"github.com/kilianp07/pvcompare/infra/production"
)

func writeWeather(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("time,ghi,dni,dhi,temp_air,wind_speed\n")
	start := time.Date(2013, 6, 21, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24; h++ {
		ghi := math.Max(0, 900*math.Sin(math.Pi*float64(h-5)/14))
		fmt.Fprintf(&b, "%s,%.1f,%.1f,%.1f,22,2\n", start.Add(time.Duration(h)*time.Hour).Format(time.RFC3339), ghi, 0.8*ghi, 0.2*ghi)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	writeWeather(t, filepath.Join(dir, "weather.csv"))
	setupCSV := "surface_type,technology,surface_azimuth,surface_tilt\n" +
		"flat_roof,si,180,optimal\n" +
		"south_facade,cpv,180,90\n" +
		"gable_roof,foo,90,35\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pv_setup.csv"), []byte(setupCSV), 0o644))

	cfg := fmt.Sprintf(`site:
  latitude: 45.6416
  longitude: 5.8754
  population: 600
  weather: %q
pv:
  normalization: reference_conditions
  setup: %q
store:
  type: csv
  conf:
    dir: %q
production:
  enabled: true
  dir: %q
scenario:
  workers: 2
`, filepath.Join(dir, "weather.csv"), filepath.Join(dir, "pv_setup.csv"), filepath.Join(dir, "series"), filepath.Join(dir, "mvs"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

/*
TestServiceRun
Scenario: a three row setup table evaluated through the configured adapters.

Cases:
  - valid rows produce series files in the csv store
  - the unsupported technology row fails alone
  - the energy production record carries ceiling and file name per plant
*/
func TestServiceRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(writeConfig(t, dir))
	require.NoError(t, err)

	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	require.Len(t, rep.Errors, 1)
	assert.ErrorIs(t, rep.Errors["pv_plant_03"], model.ErrUnsupportedTechnology)

	si := rep.Rows[0]
	assert.Equal(t, "si_180_31_2013_45.6416_5.8754.csv", si.Key.FileName())
	_, err = os.Stat(filepath.Join(dir, "series", si.Key.FileName()))
	assert.NoError(t, err)

	f, err := os.Open(svc.Production.Path())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	tbl, err := production.ReadTable(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"pv_plant_01", "pv_plant_02", "pv_plant_03"}, tbl.Plants())
	name, _ := tbl.Get("pv_plant_01", production.ParamFileName)
	assert.Equal(t, si.Key.FileName(), name)
	capStr, _ := tbl.Get("pv_plant_02", production.ParamInstalledCap)
	assert.NotEqual(t, "0", capStr)
	capStr, _ = tbl.Get("pv_plant_03", production.ParamInstalledCap)
	assert.Equal(t, "0", capStr)
}

func TestServicePeaks(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(writeConfig(t, dir))
	require.NoError(t, err)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	lines, err := svc.Peaks(context.Background(), "si", model.Orientation{Azimuth: 180, Tilt: 31})
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, normalization.ModeReferenceConditions, lines[0].Mode)
	assert.InDelta(t, 220.07, lines[0].PeakW, 0.01)
	assert.ErrorIs(t, lines[1].Err, model.ErrReferenceDataUnavailable)
	assert.NoError(t, lines[2].Err)

	_, err = svc.Peaks(context.Background(), "foo", model.Orientation{})
	assert.ErrorIs(t, err, model.ErrUnsupportedTechnology)
}
