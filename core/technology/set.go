package technology

import (
	"fmt"

	"github.com/kilianp07/pvcompare/core/model"
	"github.com/kilianp07/pvcompare/core/params"
)

// Options configure model construction.
type Options struct {
	// PSIType selects the tandem calibration; resolved once by NewSet.
	PSIType  string
	Combiner HybridCombiner
	Splitter SpectralSplitter
}

// Builder constructs one technology model from the parameter registry.
type Builder func(reg *params.Registry, opts Options) (Model, error)

var builders = map[model.Technology]Builder{
	model.TechSi: func(reg *params.Registry, _ Options) (Model, error) {
		return NewSilicon(reg.Si()), nil
	},
	model.TechCPV: func(reg *params.Registry, opts Options) (Model, error) {
		return NewHybrid(reg.CPV(), opts.Combiner), nil
	},
	model.TechPSI: func(reg *params.Registry, opts Options) (Model, error) {
		t, err := params.ParsePSIType(opts.PSIType)
		if err != nil {
			return nil, err
		}
		p, err := reg.PSI(t)
		if err != nil {
			return nil, err
		}
		return NewTandem(p, opts.Splitter), nil
	},
}

// Set holds one ready model per technology.
type Set struct {
	models map[model.Technology]Model
}

// NewSet builds every registered technology from reg.
func NewSet(reg *params.Registry, opts Options) (*Set, error) {
	if reg == nil {
		return nil, fmt.Errorf("technology: nil parameter registry")
	}
	s := &Set{models: make(map[model.Technology]Model, len(builders))}
	for tech, b := range builders {
		m, err := b(reg, opts)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", tech, err)
		}
		s.models[tech] = m
	}
	return s, nil
}

// NewSetFromModels wraps explicit models, typically test doubles.
func NewSetFromModels(models ...Model) *Set {
	s := &Set{models: make(map[model.Technology]Model, len(models))}
	for _, m := range models {
		s.models[m.Technology()] = m
	}
	return s
}

// Get returns the model registered for tag.
func (s *Set) Get(tag string) (Model, error) {
	if m, ok := s.models[model.Technology(tag)]; ok {
		return m, nil
	}
	t, err := model.ParseTechnology(tag)
	if err != nil {
		return nil, err
	}
	m, ok := s.models[t]
	if !ok {
		return nil, &model.UnsupportedTechnologyError{Tag: tag}
	}
	return m, nil
}
