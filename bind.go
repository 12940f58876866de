package pgframe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// bindNamed rewrites :name placeholders to $n positional parameters and
// returns the positional values. Positions are assigned by first occurrence
// of each distinct placeholder. Placeholders inside string literals, quoted
// identifiers, comments and :: casts are left alone.
func bindNamed(query string, args []Arg) (string, []any, error) {
	supplied := map[string]any{}
	for _, a := range args {
		if _, ok := supplied[a.Name]; ok {
			return "", nil, &BindError{Name: a.Name, Msg: "duplicate argument"}
		}
		supplied[a.Name] = a.Value
	}

	position := map[string]int{}
	var order []string

	var out strings.Builder
	out.Grow(len(query))

	i := 0
	for i < len(query) {
		c := query[i]

		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(query, i, c)
			out.WriteString(query[i:end])
			i = end
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end == -1 {
				end = len(query)
			} else {
				end += i
			}
			out.WriteString(query[i:end])
			i = end
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end == -1 {
				end = len(query)
			} else {
				end += i + 4
			}
			out.WriteString(query[i:end])
			i = end
		case c == ':' && i+1 < len(query) && query[i+1] == ':':
			out.WriteString("::")
			i += 2
		case c == ':' && i+1 < len(query) && isIdentStart(query[i+1]):
			j := i + 1
			for j < len(query) && isIdentChar(query[j]) {
				j++
			}
			name := query[i+1 : j]

			pos, ok := position[name]
			if !ok {
				pos = len(order)
				position[name] = pos
				order = append(order, name)
			}

			out.WriteByte('$')
			out.WriteString(strconv.Itoa(pos + 1))
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}

	vals := make([]any, len(order))
	for pos, name := range order {
		raw, ok := supplied[name]
		if !ok {
			return "", nil, &BindError{Name: name, Msg: "no argument supplied for placeholder"}
		}

		v, err := normalizeBindValue(raw)
		if err != nil {
			return "", nil, &BindError{Name: name, Msg: err.Error()}
		}
		vals[pos] = v
	}

	for _, a := range args {
		if _, ok := position[a.Name]; !ok {
			return "", nil, &BindError{Name: a.Name, Msg: "argument has no placeholder in query"}
		}
	}

	return out.String(), vals, nil
}

// skipQuoted returns the index just past a quoted region starting at i.
// Quote escapes are via doubled characters, not backslash.
func skipQuoted(s string, i int, quote byte) int {
	j := i + 1
	for j < len(s) {
		if s[j] == quote {
			if j+1 < len(s) && s[j+1] == quote {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return j
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// normalizeBindValue widens scalars to the types the client and the memory
// engine agree on, and converts sequences (including a Series) to typed
// slices bindable as arrays.
func normalizeBindValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, int64, float64, decimal.Decimal, time.Time,
		[]bool, []string, []int64, []float64, []decimal.Decimal, []time.Time:
		return t, nil
	case float32:
		return float64(t), nil
	case []int:
		out := make([]int64, len(t))
		for i, x := range t {
			out[i] = int64(x)
		}
		return out, nil
	case []int32:
		out := make([]int64, len(t))
		for i, x := range t {
			out[i] = int64(x)
		}
		return out, nil
	case *Series:
		return seriesBindValue(t)
	}

	if i, ok := asInt64(v); ok {
		return i, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func seriesBindValue(s *Series) (any, error) {
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			return nil, fmt.Errorf("series %q contains nulls", s.Name())
		}
	}

	switch s.typ.Kind {
	case BoolKind:
		return s.bools, nil
	case IntKind:
		return s.ints, nil
	case FloatKind:
		return s.floats, nil
	case StringKind:
		return s.strs, nil
	case DecimalKind:
		return s.decs, nil
	case TimeKind:
		return s.times, nil
	}
	return nil, fmt.Errorf("series %q has unsupported type %s", s.Name(), s.typ)
}
