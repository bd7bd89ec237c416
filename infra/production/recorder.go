package production

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/kilianp07/pvcompare/core/logger"
	"github.com/kilianp07/pvcompare/core/scenario"
)

// FileName is the record's file name inside its directory.
const FileName = "energyProduction.csv"

// ErrPlantCountMismatch is returned by Prepare when the existing record does
// not hold one column per setup row and overwriting is disabled.
var ErrPlantCountMismatch = errors.New("energy production: plant count differs from setup table")

// CSVRecorder keeps the energy production record file up to date.
type CSVRecorder struct {
	path      string
	overwrite bool
	log       logger.Logger

	mu sync.Mutex
}

// NewCSVRecorder manages <dir>/energyProduction.csv. With overwrite set, a
// missing or mismatching record is recreated with default values.
func NewCSVRecorder(dir string, overwrite bool, log logger.Logger) *CSVRecorder {
	return &CSVRecorder{path: filepath.Join(dir, FileName), overwrite: overwrite, log: logger.OrNop(log)}
}

// Path returns the record file.
func (r *CSVRecorder) Path() string { return r.path }

// Prepare checks that the record holds exactly the given plant labels.
func (r *CSVRecorder) Prepare(ctx context.Context, labels []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.load()
	switch {
	case err == nil && slices.Equal(t.Plants(), labels):
		r.log.Infof("%s contains the correct number of pv plants", FileName)
		return nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return err
	case !r.overwrite:
		if err != nil {
			return fmt.Errorf("%w: %s does not exist", ErrPlantCountMismatch, r.path)
		}
		return fmt.Errorf("%w: %d plants in %s, %d rows", ErrPlantCountMismatch, len(t.Plants()), r.path, len(labels))
	}
	if err != nil {
		r.log.Warnf("%s does not exist, creating it with default values", r.path)
	} else {
		r.log.Warnf("the number of pv plants in %s differs from the setup table, recreating it with default values", r.path)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	return r.save(NewTable(labels))
}

// Record stores the installed capacity ceiling and series file name of one plant.
func (r *CSVRecorder) Record(ctx context.Context, rec scenario.PlantRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.load()
	if err != nil {
		return err
	}
	if err := t.Set(rec.Label, ParamInstalledCap, strconv.FormatFloat(rec.CeilingKWp, 'f', -1, 64)); err != nil {
		return err
	}
	if err := t.Set(rec.Label, ParamFileName, rec.FileName); err != nil {
		return err
	}
	if err := r.save(t); err != nil {
		return err
	}
	r.log.Infof("installed capacity and file name of %s added to %s", rec.Label, FileName)
	return nil
}

func (r *CSVRecorder) load() (*Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f)
}

func (r *CSVRecorder) save(t *Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".energyProduction-*.csv")
	if err != nil {
		return err
	}
	if err := t.WriteCSV(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
