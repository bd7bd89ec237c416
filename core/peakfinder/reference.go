package peakfinder

import (
	"context"

	"github.com/kilianp07/pvcompare/core/model"
)

// Reference is the canonical location and weather year used for the search.
type Reference struct {
	Location model.Location
	Weather  model.WeatherSeries
}

// ReferenceSource loads the canonical reference. It is called once per
// Find invocation.
type ReferenceSource interface {
	Load(ctx context.Context) (Reference, error)
}

// StaticSource serves an in-memory reference.
type StaticSource struct {
	Ref Reference
}

func (s StaticSource) Load(ctx context.Context) (Reference, error) {
	if err := ctx.Err(); err != nil {
		return Reference{}, err
	}
	return s.Ref, nil
}

// SourceFunc adapts a function to ReferenceSource.
type SourceFunc func(ctx context.Context) (Reference, error)

func (f SourceFunc) Load(ctx context.Context) (Reference, error) { return f(ctx) }
