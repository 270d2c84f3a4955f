// Package descriptor reads and writes the line-oriented grid descriptor format.
//
// A descriptor is a list of key=value pairs:
//
//	# regular 0.5 degree grid over central Europe
//	gridtype = lonlat
//	xfirst   = 10
//	xsize    = 4
//	xinc     = 0.5
//	yvals    = 50 51
//	           52
//
// Lines without '=' continue the value of the previous key, so long coordinate
// lists may be wrapped. Values made only of numbers are stored as numbers,
// everything else as strings.
package descriptor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a single descriptor entry. Numeric values keep Strings nil.
type Value struct {
	Numbers []float64
	Strings []string
}

// Number returns a numeric value.
func Number(vals ...float64) Value {
	return Value{Numbers: append([]float64(nil), vals...)}
}

// Text returns a string value.
func Text(vals ...string) Value {
	return Value{Strings: append([]string{}, vals...)}
}

// IsNumeric reports whether the value holds numbers.
func (v Value) IsNumeric() bool {
	return v.Strings == nil
}

// Len returns the number of tokens in the value.
func (v Value) Len() int {
	if v.IsNumeric() {
		return len(v.Numbers)
	}
	return len(v.Strings)
}

// Float returns the value as a scalar number.
func (v Value) Float() (float64, bool) {
	if !v.IsNumeric() || len(v.Numbers) != 1 {
		return 0, false
	}
	return v.Numbers[0], true
}

// Floats returns a copy of the numbers held by the value.
func (v Value) Floats() ([]float64, bool) {
	if !v.IsNumeric() || len(v.Numbers) == 0 {
		return nil, false
	}
	return append([]float64(nil), v.Numbers...), true
}

// String joins the tokens of the value with single spaces.
func (v Value) String() string {
	if !v.IsNumeric() {
		return strings.Join(v.Strings, " ")
	}
	parts := make([]string, len(v.Numbers))
	for i, f := range v.Numbers {
		parts[i] = formatNumber(f)
	}
	return strings.Join(parts, " ")
}

func (v Value) clone() Value {
	if v.IsNumeric() {
		return Value{Numbers: append([]float64(nil), v.Numbers...)}
	}
	return Value{Strings: append([]string{}, v.Strings...)}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Entry is a key and its value.
type Entry struct {
	Key   string
	Value Value
}

// Descriptor is an insertion-ordered mapping from key to Value.
type Descriptor struct {
	keys   []string
	values map[string]Value
}

// New returns an empty descriptor.
func New() *Descriptor {
	return &Descriptor{values: make(map[string]Value)}
}

// FromMap converts a plain mapping into a descriptor. Keys are sorted, with
// gridtype first, since map iteration order is random.
func FromMap(m map[string]any) (*Descriptor, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "gridtype") != (keys[j] == "gridtype") {
			return keys[i] == "gridtype"
		}
		return keys[i] < keys[j]
	})

	d := New()
	for _, k := range keys {
		v, err := toValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		d.Set(k, v)
	}
	return d, nil
}

func toValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v.clone(), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Number(float64(v)), nil
	case int32:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case string:
		return Text(v), nil
	case []float64:
		return Number(v...), nil
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return Number(out...), nil
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return Number(out...), nil
	case []string:
		return Text(v...), nil
	case []any:
		// JSON arrays decode to []any; all elements must share a kind.
		nums := make([]float64, 0, len(v))
		strs := make([]string, 0, len(v))
		for _, e := range v {
			switch ev := e.(type) {
			case float64:
				nums = append(nums, ev)
			case int:
				nums = append(nums, float64(ev))
			case string:
				strs = append(strs, ev)
			default:
				return Value{}, fmt.Errorf("unsupported list element type %T", e)
			}
		}
		if len(strs) > 0 && len(nums) > 0 {
			return Value{}, fmt.Errorf("list mixes numbers and strings")
		}
		if len(strs) > 0 {
			return Text(strs...), nil
		}
		return Number(nums...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Set stores v under key, keeping the original position of an existing key.
func (d *Descriptor) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v.clone()
}

// Get returns the value stored under key.
func (d *Descriptor) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	if !ok {
		return Value{}, false
	}
	return v.clone(), true
}

// Has reports whether key is present.
func (d *Descriptor) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Delete removes key if present.
func (d *Descriptor) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Descriptor) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of entries.
func (d *Descriptor) Len() int {
	return len(d.keys)
}

// Entries returns copies of all entries in insertion order.
func (d *Descriptor) Entries() []Entry {
	out := make([]Entry, len(d.keys))
	for i, k := range d.keys {
		out[i] = Entry{Key: k, Value: d.values[k].clone()}
	}
	return out
}

// Clone returns a deep copy.
func (d *Descriptor) Clone() *Descriptor {
	c := New()
	for _, k := range d.keys {
		c.Set(k, d.values[k])
	}
	return c
}

// Float returns the scalar number stored under key.
func (d *Descriptor) Float(key string) (float64, bool) {
	v, ok := d.values[key]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Floats returns the numbers stored under key.
func (d *Descriptor) Floats(key string) ([]float64, bool) {
	v, ok := d.values[key]
	if !ok {
		return nil, false
	}
	return v.Floats()
}

// Int returns the scalar number under key when it is integral.
func (d *Descriptor) Int(key string) (int, bool) {
	f, ok := d.Float(key)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Text returns the value under key as text. Numbers are formatted.
func (d *Descriptor) Text(key string) (string, bool) {
	v, ok := d.values[key]
	if !ok {
		return "", false
	}
	return v.String(), true
}
