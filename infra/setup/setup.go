// Package setup reads PV setup tables from CSV or YAML files.
package setup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/scenario"
)

// ReadCSV decodes a setup table with one row per surface. A row whose values
// do not parse is kept with its Err set.
func ReadCSV(r io.Reader) ([]scenario.SetupRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, scenario.CheckColumns(nil)
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := scenario.CheckColumns(header); err != nil {
		return nil, err
	}
	var rows []scenario.SetupRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(header))
		for i, h := range header {
			m[h] = rec[i]
		}
		row, err := scenario.ParseRow(m)
		if err != nil {
			row = scenario.SetupRow{Err: fmt.Errorf("pv_setup line %d: %w", line, err)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadYAML decodes a list of mappings using the CSV column names as keys. An
// entry lacking a required key fails the whole table.
func ReadYAML(r io.Reader) ([]scenario.SetupRow, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	rows := make([]scenario.SetupRow, 0, len(raw))
	for i, entry := range raw {
		m := make(map[string]string, len(entry))
		for k, v := range entry {
			m[k] = fmt.Sprint(v)
		}
		row, err := scenario.ParseRow(m)
		if err != nil {
			if errors.Is(err, model.ErrMissingColumn) {
				return nil, fmt.Errorf("pv_setup entry %d: %w", i+1, err)
			}
			row = scenario.SetupRow{Err: fmt.Errorf("pv_setup entry %d: %w", i+1, err)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadFile reads a setup table, choosing the format from the extension.
func LoadFile(path string) ([]scenario.SetupRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var rows []scenario.SetupRow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		rows, err = ReadYAML(f)
	default:
		rows, err = ReadCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
