package weather

import (
	"context"
	"fmt"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/peakfinder"
)

// FileReference loads the canonical reference weather from a CSV file.
type FileReference struct {
	Path     string
	Location model.Location
	// Year restricts the file to one calendar year when non-zero.
	Year int
}

// Load reads the file. The read runs in its own goroutine so that a
// canceled or expired ctx returns immediately.
func (f FileReference) Load(ctx context.Context) (peakfinder.Reference, error) {
	type result struct {
		w   model.WeatherSeries
		err error
	}
	ch := make(chan result, 1)
	go func() {
		w, err := LoadFile(f.Path)
		ch <- result{w, err}
	}()
	select {
	case <-ctx.Done():
		return peakfinder.Reference{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return peakfinder.Reference{}, r.err
		}
		w := FilterYear(r.w, f.Year)
		if w.Len() == 0 {
			return peakfinder.Reference{}, fmt.Errorf("%s: no samples for year %d", f.Path, f.Year)
		}
		return peakfinder.Reference{Location: f.Location, Weather: w}, nil
	}
}
