// Package export encodes yield series as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/pvcompare/core/model"
)

// TimeColumn is the header of the timestamp column.
const TimeColumn = "time"

// WriteJSON writes the series to w in JSON format.
func WriteJSON(w io.Writer, s model.YieldSeries) error {
	enc := json.NewEncoder(w)
	return enc.Encode(s)
}

// ReadJSON decodes a series written by WriteJSON.
func ReadJSON(r io.Reader) (model.YieldSeries, error) {
	var s model.YieldSeries
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return model.YieldSeries{}, err
	}
	if len(s.Times) != len(s.Values) {
		return model.YieldSeries{}, fmt.Errorf("%w: %d timestamps for %d values", model.ErrInvalidInput, len(s.Times), len(s.Values))
	}
	return s, nil
}

// WriteCSV writes the series to w as two columns: RFC3339 time and the value
// column named after the unit.
func WriteCSV(w io.Writer, s model.YieldSeries) error {
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("%w: %d timestamps for %d values", model.ErrInvalidInput, len(s.Times), len(s.Values))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{TimeColumn, string(s.Unit)}); err != nil {
		return err
	}
	for i, v := range s.Values {
		rec := []string{
			s.Times[i].Format(time.RFC3339),
			strconv.FormatFloat(v, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes a series written by WriteCSV. The key is not part of the
// file and is supplied by the caller.
func ReadCSV(r io.Reader, key model.SeriesKey) (model.YieldSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.YieldSeries{}, fmt.Errorf("%w: empty series file", model.ErrInvalidInput)
		}
		return model.YieldSeries{}, err
	}
	if strings.TrimSpace(header[0]) != TimeColumn {
		return model.YieldSeries{}, &model.MissingColumnError{Table: key.FileName(), Column: TimeColumn}
	}
	out := model.YieldSeries{Key: key, Unit: model.Unit(strings.TrimSpace(header[1]))}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.YieldSeries{}, err
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return model.YieldSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return model.YieldSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		out.Times = append(out.Times, ts)
		out.Values = append(out.Values, v)
	}
	return out, nil
}
