package setup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/scenario"
)

const table = `surface_type,technology,surface_azimuth,surface_tilt
flat_roof,si,180,optimal
south_facade,psi,180,90
east_facade,cpv,90,90
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, scenario.SetupRow{SurfaceType: "flat_roof", Technology: "si", Azimuth: 180, Tilt: model.TiltSpec{Optimal: true}}, rows[0])
	assert.Equal(t, 90.0, rows[2].Azimuth)
	assert.Equal(t, 90.0, rows[2].Tilt.Degrees)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("surface_type,technology,surface_tilt\nflat_roof,si,30\n"))
	var mc *model.MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "surface_azimuth", mc.Column)
	assert.Equal(t, "pv_setup", mc.Table)

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrMissingColumn)
}

/*
TestReadCSVKeepsUnparsableRow
Scenario: a two-row table where only the second tilt is not a number.

Cases:
  - the table still loads with both rows
  - the first row parses normally
  - the second row carries an invalid input error naming its line
*/
func TestReadCSVKeepsUnparsableRow(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("surface_type,technology,surface_azimuth,surface_tilt\nflat_roof,si,180,30\nflat_roof,si,180,abc\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NoError(t, rows[0].Err)
	assert.Equal(t, 30.0, rows[0].Tilt.Degrees)
	assert.ErrorIs(t, rows[1].Err, model.ErrInvalidInput)
	assert.ErrorContains(t, rows[1].Err, "line 3")
}

func TestReadYAML(t *testing.T) {
	data := `- surface_type: flat_roof
  technology: si
  surface_azimuth: 180
  surface_tilt: optimal
- surface_type: gable_roof
  technology: psi
  surface_azimuth: 180
  surface_tilt: 35
  area: 120.5
`
	rows, err := ReadYAML(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Tilt.Optimal)
	assert.Equal(t, 35.0, rows[1].Tilt.Degrees)
	assert.Equal(t, 120.5, rows[1].Area)

	_, err = ReadYAML(strings.NewReader("- surface_type: flat_roof\n  technology: si\n"))
	assert.ErrorIs(t, err, model.ErrMissingColumn)

	rows, err = ReadYAML(strings.NewReader("- surface_type: flat_roof\n  technology: si\n  surface_azimuth: south\n  surface_tilt: 30\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.ErrorIs(t, rows[0].Err, model.ErrInvalidInput)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "pv_setup.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(table), 0o644))
	rows, err := LoadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
