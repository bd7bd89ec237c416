// Package production maintains the energy production record: a CSV table
// with one parameter per row and one column per PV plant, consumed by the
// downstream energy system optimizer.
package production

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Parameter rows and their units, in file order.
var (
	Parameters = []string{
		"age_installed", "capex_fix", "capex_var", "file_name", "installedCap", "label",
		"lifetime", "opex_fix", "opex_var", "optimizeCap", "outflow_direction",
		"type_oemof", "unit", "energyVector",
	}
	units = []string{
		"year", "currency", "currency/unit", "str", "kWp", "str",
		"year", "currency/unit/year", "currency/kWh", "bool", "str",
		"str", "str", "str",
	}
	defaults = []string{
		"0", "10000", "7200", "0", "0", "PV plant (mono)",
		"30", "80", "0", "True", "PV plant (mono)",
		"source", "kWp", "Electricity",
	}
)

const (
	indexColumn = "index"
	unitColumn  = "unit"

	ParamFileName     = "file_name"
	ParamInstalledCap = "installedCap"
)

// Table is the in-memory form of the record.
type Table struct {
	params []string
	units  map[string]string
	plants []string
	cells  map[string]map[string]string
}

// NewTable returns a table with default values for every plant label.
func NewTable(plants []string) *Table {
	t := &Table{
		params: slices.Clone(Parameters),
		units:  make(map[string]string, len(Parameters)),
		plants: slices.Clone(plants),
		cells:  make(map[string]map[string]string, len(plants)),
	}
	for i, p := range Parameters {
		t.units[p] = units[i]
	}
	for _, pl := range plants {
		col := make(map[string]string, len(Parameters))
		for i, p := range Parameters {
			col[p] = defaults[i]
		}
		t.cells[pl] = col
	}
	return t
}

// Plants returns the plant labels in column order.
func (t *Table) Plants() []string { return slices.Clone(t.plants) }

// Get returns the value of param for plant.
func (t *Table) Get(plant, param string) (string, bool) {
	col, ok := t.cells[plant]
	if !ok {
		return "", false
	}
	v, ok := col[param]
	return v, ok
}

// Set updates one cell. Unknown plants or parameters are rejected.
func (t *Table) Set(plant, param, value string) error {
	col, ok := t.cells[plant]
	if !ok {
		return fmt.Errorf("energy production: unknown plant %q", plant)
	}
	if _, ok := t.units[param]; !ok {
		return fmt.Errorf("energy production: unknown parameter %q", param)
	}
	col[param] = value
	return nil
}

// WriteCSV writes the table with the index, unit and plant columns.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{indexColumn, unitColumn}, t.plants...)); err != nil {
		return err
	}
	for _, p := range t.params {
		rec := []string{p, t.units[p]}
		for _, pl := range t.plants {
			rec = append(rec, t.cells[pl][p])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable parses a table written by WriteCSV.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("energy production: empty file")
		}
		return nil, err
	}
	if len(header) < 2 || header[1] != unitColumn {
		return nil, fmt.Errorf("energy production: expected %q as second column", unitColumn)
	}
	t := &Table{
		units:  map[string]string{},
		plants: slices.Clone(header[2:]),
		cells:  make(map[string]map[string]string, len(header)-2),
	}
	for _, pl := range t.plants {
		t.cells[pl] = map[string]string{}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		p := rec[0]
		t.params = append(t.params, p)
		t.units[p] = rec[1]
		for i, pl := range t.plants {
			t.cells[pl][p] = rec[i+2]
		}
	}
	return t, nil
}
