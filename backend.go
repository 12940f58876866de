package pgframe

import (
	"context"
	"fmt"
)

// Kind is used to represent the semantic type of a column.
type Kind uint

const (
	// BoolKind is used for columns having boolean data
	BoolKind Kind = iota
	// IntKind is used for columns having integer data, widened to 64 bits
	IntKind
	// FloatKind is used for columns having double precision data
	FloatKind
	// StringKind is used for columns having textual data
	StringKind
	// DecimalKind is used for columns having exact fixed-point data
	DecimalKind
	// TimeKind is used for columns having timestamp data
	TimeKind
)

func (k Kind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case IntKind:
		return "i64"
	case FloatKind:
		return "f64"
	case StringKind:
		return "str"
	case DecimalKind:
		return "decimal"
	case TimeKind:
		return "datetime"
	default:
		return "Error"
	}
}

// Type is a column type. Scale is only meaningful for DecimalKind, where it
// is the number of digits after the decimal point. A negative Scale means
// the scale is not declared and must be inferred from values.
type Type struct {
	Kind  Kind
	Scale int32
}

func (t Type) String() string {
	if t.Kind == DecimalKind {
		if t.Scale < 0 {
			return "decimal[*,?]"
		}
		return fmt.Sprintf("decimal[*,%d]", t.Scale)
	}
	return t.Kind.String()
}

// pgType returns the postgres type name used when casting an array
// parameter holding this column's values.
func (t Type) pgType() string {
	switch t.Kind {
	case BoolKind:
		return "BOOLEAN"
	case IntKind:
		return "BIGINT"
	case FloatKind:
		return "DOUBLE PRECISION"
	case StringKind:
		return "TEXT"
	case DecimalKind:
		return "NUMERIC"
	case TimeKind:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// ResultColumn contains the metadata of a result column.
type ResultColumn struct {
	Type Type
	Name string
}

// Schema maps column names to declared types, overriding inference. Used
// with Frame.Cast.
type Schema map[string]Type

// Arg is a named bind argument. The value may be a scalar or a sequence;
// sequences bind as arrays usable in `= ANY(:name)` membership tests.
type Arg struct {
	Name  string
	Value any
}

// Named builds an Arg. Arguments are an explicit ordered mapping; placeholder
// positions are assigned by first occurrence in the query text.
func Named(name string, value any) Arg {
	return Arg{Name: name, Value: value}
}

type insertConfig struct {
	keyCols      []string
	returnCols   []string
	returnSchema Schema
}

// InsertOption configures an Insert call.
type InsertOption func(*insertConfig)

// KeyColumns declares the conflict target. Conflicting rows are merged
// instead of duplicated: non-key columns are updated when their values
// actually differ, and only inserted or updated rows are returned.
func KeyColumns(cols ...string) InsertOption {
	return func(c *insertConfig) {
		c.keyCols = cols
	}
}

// ReturnColumns requests the post-operation values of the named columns for
// the affected rows.
func ReturnColumns(cols ...string) InsertOption {
	return func(c *insertConfig) {
		c.returnCols = cols
	}
}

// ReturnSchema overrides the types of returned columns, e.g. pinning a
// numeric column to a scale the result metadata does not declare.
func ReturnSchema(s Schema) InsertOption {
	return func(c *insertConfig) {
		c.returnSchema = s
	}
}

// DB is the call surface shared by the postgres client and the in-memory
// engine.
type DB interface {
	// Fetch executes a query with named :param placeholders and returns the
	// result as a Frame. Statements that produce no row description (e.g. a
	// bare DELETE) return a nil frame; statements that produce one but match
	// no rows return a typed zero-row frame.
	Fetch(ctx context.Context, query string, args ...Arg) (*Frame, error)

	// Insert bulk-writes a frame into a table as a single statement,
	// optionally upserting on declared key columns. The returned frame is
	// nil unless ReturnColumns was given.
	Insert(ctx context.Context, f *Frame, table string, opts ...InsertOption) (*Frame, error)
}
