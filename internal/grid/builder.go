package grid

import (
	"fmt"
	"strings"

	"go.ngs.io/pp-grid/internal/descriptor"
)

// Builder turns a descriptor into a Grid.
type Builder struct {
	desc *descriptor.Descriptor
}

// NewBuilder accepts a descriptor file path or literal text (string), a list
// of descriptor lines ([]string), a *descriptor.Descriptor or a
// map[string]any.
func NewBuilder(src any) (*Builder, error) {
	var d *descriptor.Descriptor
	switch s := src.(type) {
	case string:
		text, err := descriptor.OpenString(s)
		if err != nil {
			return nil, err
		}
		d = descriptor.Decode(text)
	case []string:
		d = descriptor.DecodeLines(s)
	case *descriptor.Descriptor:
		if s == nil {
			return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidType)
		}
		d = s.Clone()
	case map[string]any:
		var err error
		d, err = descriptor.FromMap(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	default:
		return nil, fmt.Errorf("%w: descriptor must be a string, []string, *descriptor.Descriptor or map[string]any, got %T",
			ErrInvalidType, src)
	}
	return &Builder{desc: d}, nil
}

// Descriptor returns a copy of the parsed descriptor.
func (b *Builder) Descriptor() *descriptor.Descriptor {
	return b.desc.Clone()
}

// Build returns a new grid of the variant named by gridtype.
func (b *Builder) Build() (Grid, error) {
	v, ok := b.desc.Get("gridtype")
	if !ok {
		return nil, fmt.Errorf("%w: gridtype", ErrMissingKey)
	}
	return construct(Type(v.String()), b.desc.Clone())
}

// Build parses src as NewBuilder does and builds the grid.
func Build(src any) (Grid, error) {
	b, err := NewBuilder(src)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// construct dispatches d to the constructor registered for kind. d is owned
// by the new grid.
func construct(kind Type, d *descriptor.Descriptor) (Grid, error) {
	switch kind {
	case TypeLonLat:
		return newLonLat(d)
	case TypeGaussian:
		return newGaussian(d)
	case TypeProjection:
		return newProjection(d)
	case TypeCurvilinear:
		return newCurvilinear(d)
	case TypeUnstructured:
		return newUnstructured(d)
	default:
		names := make([]string, len(SupportedTypes))
		for i, t := range SupportedTypes {
			names[i] = string(t)
		}
		return nil, fmt.Errorf("%w: unsupported gridtype %q, expected one of %s",
			ErrInvalidValue, kind, strings.Join(names, ", "))
	}
}
