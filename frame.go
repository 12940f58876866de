package pgframe

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Series is a named column with a uniform semantic type and a null mask.
// Values are stored in one backing slice per kind, selected by the type.
type Series struct {
	name   string
	typ    Type
	// inferScale widens typ.Scale from values instead of rounding to it
	inferScale bool
	bools  []bool
	ints   []int64
	floats []float64
	strs   []string
	decs   []decimal.Decimal
	times  []time.Time
	nulls  []bool
}

// NewSeries returns an empty series of the given type.
func NewSeries(name string, typ Type) *Series {
	s := &Series{name: name, typ: typ}
	if typ.Kind == DecimalKind && typ.Scale < 0 {
		s.typ.Scale = 0
		s.inferScale = true
	}
	return s
}

// Bools builds a boolean series.
func Bools(name string, vals ...bool) *Series {
	return &Series{name: name, typ: Type{Kind: BoolKind}, bools: vals, nulls: make([]bool, len(vals))}
}

// Ints builds an integer series.
func Ints(name string, vals ...int64) *Series {
	return &Series{name: name, typ: Type{Kind: IntKind}, ints: vals, nulls: make([]bool, len(vals))}
}

// Floats builds a double precision series.
func Floats(name string, vals ...float64) *Series {
	return &Series{name: name, typ: Type{Kind: FloatKind}, floats: vals, nulls: make([]bool, len(vals))}
}

// Strings builds a text series.
func Strings(name string, vals ...string) *Series {
	return &Series{name: name, typ: Type{Kind: StringKind}, strs: vals, nulls: make([]bool, len(vals))}
}

// Decimals builds a fixed-point series. The scale is the largest scale among
// the values.
func Decimals(name string, vals ...decimal.Decimal) *Series {
	scale := int32(0)
	for _, v := range vals {
		if -v.Exponent() > scale {
			scale = -v.Exponent()
		}
	}
	return &Series{name: name, typ: Type{Kind: DecimalKind, Scale: scale}, decs: vals, nulls: make([]bool, len(vals))}
}

// Times builds a timestamp series.
func Times(name string, vals ...time.Time) *Series {
	return &Series{name: name, typ: Type{Kind: TimeKind}, times: vals, nulls: make([]bool, len(vals))}
}

func (s *Series) Name() string { return s.name }
func (s *Series) Type() Type   { return s.typ }

func (s *Series) Len() int {
	return len(s.nulls)
}

// IsNull reports whether the value at i is null.
func (s *Series) IsNull(i int) bool {
	return s.nulls[i]
}

// Bool returns the value at i; the second result is false when null.
func (s *Series) Bool(i int) (bool, bool) {
	return s.bools[i], !s.nulls[i]
}

func (s *Series) Int(i int) (int64, bool) {
	return s.ints[i], !s.nulls[i]
}

func (s *Series) Float(i int) (float64, bool) {
	return s.floats[i], !s.nulls[i]
}

func (s *Series) Str(i int) (string, bool) {
	return s.strs[i], !s.nulls[i]
}

func (s *Series) Decimal(i int) (decimal.Decimal, bool) {
	return s.decs[i], !s.nulls[i]
}

func (s *Series) Time(i int) (time.Time, bool) {
	return s.times[i], !s.nulls[i]
}

// Value returns the value at i as an any, nil for null.
func (s *Series) Value(i int) any {
	if s.nulls[i] {
		return nil
	}
	switch s.typ.Kind {
	case BoolKind:
		return s.bools[i]
	case IntKind:
		return s.ints[i]
	case FloatKind:
		return s.floats[i]
	case StringKind:
		return s.strs[i]
	case DecimalKind:
		return s.decs[i]
	case TimeKind:
		return s.times[i]
	}
	return nil
}

// Values returns all values, nil for nulls.
func (s *Series) Values() []any {
	vals := make([]any, s.Len())
	for i := range vals {
		vals[i] = s.Value(i)
	}
	return vals
}

func (s *Series) appendNull() {
	switch s.typ.Kind {
	case BoolKind:
		s.bools = append(s.bools, false)
	case IntKind:
		s.ints = append(s.ints, 0)
	case FloatKind:
		s.floats = append(s.floats, 0)
	case StringKind:
		s.strs = append(s.strs, "")
	case DecimalKind:
		s.decs = append(s.decs, decimal.Decimal{})
	case TimeKind:
		s.times = append(s.times, time.Time{})
	}
	s.nulls = append(s.nulls, true)
}

// appendCell coerces v to the series type and appends it. nil appends a
// null.
func (s *Series) appendCell(v any) error {
	if v == nil {
		s.appendNull()
		return nil
	}

	switch s.typ.Kind {
	case BoolKind:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot store %T in a %s column", v, s.typ)
		}
		s.bools = append(s.bools, b)
	case IntKind:
		i, ok := asInt64(v)
		if !ok {
			return fmt.Errorf("cannot store %T in a %s column", v, s.typ)
		}
		s.ints = append(s.ints, i)
	case FloatKind:
		switch f := v.(type) {
		case float64:
			s.floats = append(s.floats, f)
		case float32:
			s.floats = append(s.floats, float64(f))
		default:
			if i, ok := asInt64(v); ok {
				s.floats = append(s.floats, float64(i))
			} else {
				return fmt.Errorf("cannot store %T in a %s column", v, s.typ)
			}
		}
	case StringKind:
		switch t := v.(type) {
		case string:
			s.strs = append(s.strs, t)
		case []byte:
			s.strs = append(s.strs, string(t))
		case [16]byte:
			s.strs = append(s.strs, formatUUID(t))
		default:
			return fmt.Errorf("cannot store %T in a %s column", v, s.typ)
		}
	case DecimalKind:
		d, err := asDecimal(v)
		if err != nil {
			return fmt.Errorf("cannot store %T in a %s column: %s", v, s.typ, err)
		}
		if s.inferScale {
			if sc := -d.Exponent(); sc > s.typ.Scale {
				s.typ.Scale = sc
			}
		} else {
			d = d.Round(s.typ.Scale)
		}
		s.decs = append(s.decs, d)
	case TimeKind:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("cannot store %T in a %s column", v, s.typ)
		}
		s.times = append(s.times, t)
	default:
		return fmt.Errorf("cannot store %T in a %s column", v, s.typ)
	}

	s.nulls = append(s.nulls, false)
	return nil
}

func asInt64(v any) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case int32:
		return int64(i), true
	case int16:
		return int64(i), true
	case int8:
		return int64(i), true
	case int:
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint8:
		return int64(i), true
	}
	return 0, false
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		return decimal.NewFromString(d)
	case float64:
		return decimal.NewFromFloat(d), nil
	case float32:
		return decimal.NewFromFloat32(d), nil
	default:
		if i, ok := asInt64(v); ok {
			return decimal.NewFromInt(i), nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("not a numeric value")
}

func formatUUID(b [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// cast converts the series to another type, returning a new series.
func (s *Series) cast(to Type) (*Series, error) {
	if s.typ == to {
		return s, nil
	}

	out := NewSeries(s.name, to)
	for i := 0; i < s.Len(); i++ {
		if err := out.appendCell(s.Value(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Frame is an in-memory typed table stored by column. Every column has the
// same length; zero rows is a valid, fully-typed frame.
type Frame struct {
	cols []*Series
}

// NewFrame builds a frame from columns, enforcing unique names and one
// shared length.
func NewFrame(cols ...*Series) (*Frame, error) {
	if len(cols) == 0 {
		return nil, ErrEmptyFrame
	}

	seen := map[string]bool{}
	for _, c := range cols {
		if seen[c.name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.name)
		}
		seen[c.name] = true

		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %s has %d rows, %s has %d", ErrMismatchedColumns, c.name, c.Len(), cols[0].name, cols[0].Len())
		}
	}

	return &Frame{cols: cols}, nil
}

// Height is the number of rows.
func (f *Frame) Height() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// Width is the number of columns.
func (f *Frame) Width() int {
	return len(f.cols)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// Column returns the named series.
func (f *Frame) Column(name string) (*Series, error) {
	for _, c := range f.cols {
		if c.name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, name)
}

// Select returns a frame restricted to the named columns, in the given
// order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Series, 0, len(names))
	for _, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return NewFrame(cols...)
}

// Cast returns a frame with the named columns converted to the given types.
// Columns not named in the schema are carried unchanged.
func (f *Frame) Cast(schema Schema) (*Frame, error) {
	for name := range schema {
		if _, err := f.Column(name); err != nil {
			return nil, err
		}
	}

	cols := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		to, ok := schema[c.name]
		if !ok {
			cols[i] = c
			continue
		}
		cast, err := c.cast(to)
		if err != nil {
			return nil, err
		}
		cols[i] = cast
	}
	return NewFrame(cols...)
}

// Row returns the values of row i across columns, nil for nulls.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.cols))
	for j, c := range f.cols {
		row[j] = c.Value(i)
	}
	return row
}
