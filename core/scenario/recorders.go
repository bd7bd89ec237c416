package scenario

import (
	"context"
	"errors"
)

// Recorders fans plant records out to several recorders. Every recorder is
// called even when an earlier one fails; the errors are joined.
type Recorders []ProductionRecorder

func (rs Recorders) Prepare(ctx context.Context, labels []string) error {
	var errs []error
	for _, r := range rs {
		errs = append(errs, r.Prepare(ctx, labels))
	}
	return errors.Join(errs...)
}

func (rs Recorders) Record(ctx context.Context, rec PlantRecord) error {
	var errs []error
	for _, r := range rs {
		errs = append(errs, r.Record(ctx, rec))
	}
	return errors.Join(errs...)
}
