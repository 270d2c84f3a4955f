package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.ngs.io/pp-grid/internal/grid"
)

// Values is a list of numbers whose missing entries (NaN) are encoded as JSON
// null.
type Values []float64

// MarshalJSON writes NaN and infinities as null.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads null entries as NaN.
func (v *Values) UnmarshalJSON(b []byte) error {
	var raw []*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	*v = out
	return nil
}

// FieldData is the wire form of a data array: row-major values and a shape.
type FieldData struct {
	Shape  []int  `json:"shape"`
	Values Values `json:"values"`
}

func (f FieldData) field() (*grid.Field, error) {
	if len(f.Shape) == 0 {
		return nil, fmt.Errorf("%w: data shape is required", ErrInvalidRequest)
	}
	data, err := grid.NewField(f.Values, f.Shape...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return data, nil
}

func fieldData(f *grid.Field) FieldData {
	shape := f.Shape
	if shape == nil {
		shape = []int{}
	}
	return FieldData{Shape: shape, Values: Values(f.Values)}
}
