package pgframe

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var identifierRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func sanitizeIdentifier(name string) (string, error) {
	if !identifierRegexp.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

// encodeInsert emits a single column-major bulk write:
//
//	INSERT INTO t (cols) SELECT * FROM UNNEST($1::T[], ...) <conflict> [RETURNING cols]
//
// One array parameter is bound per column. Without key columns, conflicting
// rows are skipped (ON CONFLICT DO NOTHING). With key columns, non-key
// columns of conflicting rows are updated, guarded so rows whose values did
// not change are untouched. Only inserted or updated rows reach RETURNING.
func encodeInsert(f *Frame, table string, keyCols, returnCols []string) (string, []any, error) {
	tableSQL, err := sanitizeIdentifier(table)
	if err != nil {
		return "", nil, err
	}

	names := f.Columns()
	isKey := map[string]bool{}
	for _, k := range keyCols {
		if _, err := f.Column(k); err != nil {
			return "", nil, fmt.Errorf("%w: %q", ErrKeyColumns, k)
		}
		isKey[k] = true
	}

	colSQLs := make([]string, len(names))
	fillers := make([]string, len(names))
	vals := make([]any, len(names))
	for i, name := range names {
		colSQL, err := sanitizeIdentifier(name)
		if err != nil {
			return "", nil, err
		}
		colSQLs[i] = colSQL

		col, _ := f.Column(name)
		fillers[i] = fmt.Sprintf("$%d::%s[]", i+1, col.Type().pgType())
		vals[i] = col.arrayValue()
	}

	conflict := "ON CONFLICT DO NOTHING"
	if len(keyCols) > 0 {
		keySQLs := make([]string, len(keyCols))
		for i, k := range keyCols {
			keySQLs[i], _ = sanitizeIdentifier(k)
		}

		var sets, changed []string
		for i, name := range names {
			if isKey[name] {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", colSQLs[i], colSQLs[i]))
			changed = append(changed, fmt.Sprintf("%s.%s != EXCLUDED.%s", tableSQL, colSQLs[i], colSQLs[i]))
		}

		if len(sets) == 0 {
			// Every column is a key column, nothing to merge.
			conflict = fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(keySQLs, ", "))
		} else {
			conflict = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s WHERE %s",
				strings.Join(keySQLs, ", "), strings.Join(sets, ", "), strings.Join(changed, " OR "))
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) SELECT * FROM UNNEST(%s) %s",
		tableSQL, strings.Join(colSQLs, ", "), strings.Join(fillers, ", "), conflict)

	if len(returnCols) > 0 {
		returnSQLs := make([]string, len(returnCols))
		for i, r := range returnCols {
			returnSQLs[i], err = sanitizeIdentifier(r)
			if err != nil {
				return "", nil, err
			}
		}
		query = fmt.Sprintf("%s RETURNING %s", query, strings.Join(returnSQLs, ", "))
	}

	return query, vals, nil
}

// arrayValue returns the column as a value bindable as a postgres array.
// Columns with nulls bind as pointer slices.
func (s *Series) arrayValue() any {
	hasNull := false
	for _, n := range s.nulls {
		if n {
			hasNull = true
			break
		}
	}

	if !hasNull {
		switch s.typ.Kind {
		case BoolKind:
			return s.bools
		case IntKind:
			return s.ints
		case FloatKind:
			return s.floats
		case StringKind:
			return s.strs
		case DecimalKind:
			return s.decs
		case TimeKind:
			return s.times
		}
		return nil
	}

	switch s.typ.Kind {
	case BoolKind:
		return ptrSlice(s.bools, s.nulls)
	case IntKind:
		return ptrSlice(s.ints, s.nulls)
	case FloatKind:
		return ptrSlice(s.floats, s.nulls)
	case StringKind:
		return ptrSlice(s.strs, s.nulls)
	case DecimalKind:
		return ptrSlice(s.decs, s.nulls)
	case TimeKind:
		return ptrSlice(s.times, s.nulls)
	}
	return nil
}

func ptrSlice[T bool | int64 | float64 | string | decimal.Decimal | time.Time](vals []T, nulls []bool) []*T {
	out := make([]*T, len(vals))
	for i := range vals {
		if nulls[i] {
			continue
		}
		v := vals[i]
		out[i] = &v
	}
	return out
}
