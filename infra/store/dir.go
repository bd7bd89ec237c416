package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/pkg/export"
)

// DirStore keeps one CSV file per series key in a directory. The file name
// is SeriesKey.FileName so artifacts can be inspected by hand.
type DirStore struct {
	dir string
}

// NewDirStore creates dir when needed.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty series directory", model.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirStore{dir: dir}, nil
}

// Path returns the file holding key.
func (s *DirStore) Path(key model.SeriesKey) string {
	return filepath.Join(s.dir, key.FileName())
}

func (s *DirStore) Get(ctx context.Context, key model.SeriesKey) (model.YieldSeries, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.YieldSeries{}, false, err
	}
	f, err := os.Open(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return model.YieldSeries{}, false, nil
	}
	if err != nil {
		return model.YieldSeries{}, false, err
	}
	defer func() { _ = f.Close() }()
	series, err := export.ReadCSV(f, key)
	if err != nil {
		return model.YieldSeries{}, false, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	return series, true, nil
}

// Put writes to a temporary file and renames it so that readers never see a
// partial artifact.
func (s *DirStore) Put(ctx context.Context, series model.YieldSeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".series-*.csv")
	if err != nil {
		return err
	}
	if err := export.WriteCSV(tmp, series); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path(series.Key))
}

func (s *DirStore) Close() error { return nil }
