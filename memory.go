package pgframe

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/petar/GoLLRB/llrb"
	"github.com/shopspring/decimal"
)

type memRow struct {
	cells []any
}

// indexItem keys a row by its encoded primary key for the LLRB index.
type indexItem struct {
	key string
	row *memRow
}

func (it indexItem) Less(than llrb.Item) bool {
	return it.key < than.(indexItem).key
}

type memTable struct {
	name    string
	columns []string
	types   []Type
	keyCols []string
	rows    []*memRow
	index   *llrb.LLRB
}

func (t *memTable) columnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *memTable) keyOf(cells []any, keyCols []string) string {
	parts := make([]string, len(keyCols))
	for i, k := range keyCols {
		parts[i] = formatKeyCell(cells[t.columnIndex(k)])
	}
	return strings.Join(parts, "\x00")
}

func formatKeyCell(v any) string {
	switch c := v.(type) {
	case nil:
		return "\x00null"
	case bool:
		return strconv.FormatBool(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case string:
		return c
	case decimal.Decimal:
		return c.String()
	case time.Time:
		return strconv.FormatInt(c.UnixNano(), 10)
	}
	return fmt.Sprintf("%v", v)
}

// lookup finds an existing row whose conflictCols equal the candidate
// cells, using the primary key index when the conflict target is the
// primary key.
func (t *memTable) lookup(conflictCols []string, cells []any) *memRow {
	if t.index != nil && sameColumns(conflictCols, t.keyCols) {
		item := t.index.Get(indexItem{key: t.keyOf(cells, t.keyCols)})
		if item == nil {
			return nil
		}
		return item.(indexItem).row
	}

	for _, row := range t.rows {
		match := true
		for _, c := range conflictCols {
			i := t.columnIndex(c)
			a, b := row.cells[i], cells[i]
			if a == nil || b == nil {
				match = false
				break
			}
			cmp, err := compareValues(a, b)
			if err != nil || cmp != 0 {
				match = false
				break
			}
		}
		if match {
			return row
		}
	}
	return nil
}

func (t *memTable) project(rows []*memRow, names []string) (*Frame, error) {
	cols := make([]ResultColumn, len(names))
	idx := make([]int, len(names))
	for i, name := range names {
		j := t.columnIndex(name)
		if j == -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, name)
		}
		idx[i] = j
		cols[i] = ResultColumn{Name: name, Type: t.types[j]}
	}

	raw := make([][]any, len(rows))
	for r, row := range rows {
		cells := make([]any, len(names))
		for i, j := range idx {
			cells[i] = row.cells[j]
		}
		raw[r] = cells
	}

	return materialize(cols, raw, nil)
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Memory is an in-memory engine implementing DB. It executes the dialect
// the postgres client emits, so it is a drop-in backend for tests and
// demos without a server.
type Memory struct {
	mu     sync.Mutex
	tables map[string]*memTable
}

func NewMemory() *Memory {
	return &Memory{
		tables: map[string]*memTable{},
	}
}

// Tables returns the table names, sorted.
func (m *Memory) Tables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a frame describing the named table's columns.
func (m *Memory) Describe(name string) (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[name]
	if !ok {
		return nil, ErrTableDoesNotExist
	}

	var names, types []string
	var keys []bool
	for i, c := range t.columns {
		names = append(names, c)
		types = append(types, t.types[i].String())
		isKey := false
		for _, k := range t.keyCols {
			if k == c {
				isKey = true
			}
		}
		keys = append(keys, isKey)
	}

	return NewFrame(
		Strings("column", names...),
		Strings("type", types...),
		Bools("primary key", keys...),
	)
}

func (m *Memory) Fetch(ctx context.Context, query string, args ...Arg) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sql, vals, err := bindNamed(query, args)
	if err != nil {
		return nil, err
	}

	parser := Parser{HelpMessagesDisabled: true}
	ast, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result *Frame
	for _, stmt := range ast.Statements {
		result, err = m.execStatement(stmt, vals)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (m *Memory) Insert(ctx context.Context, f *Frame, table string, opts ...InsertOption) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg insertConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	// The in-memory engine executes the same statement the postgres
	// client would send.
	sql, vals, err := encodeInsert(f, table, cfg.keyCols, cfg.returnCols)
	if err != nil {
		return nil, err
	}

	parser := Parser{HelpMessagesDisabled: true}
	ast, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	frame, err := m.execStatement(ast.Statements[0], vals)
	if err != nil || frame == nil || cfg.returnSchema == nil {
		return frame, err
	}
	return frame.Cast(cfg.returnSchema)
}

func (m *Memory) execStatement(stmt *Statement, vals []any) (*Frame, error) {
	switch stmt.Kind {
	case SelectKind:
		return m.execSelect(stmt.SelectStatement, vals)
	case InsertKind:
		return m.execInsert(stmt.InsertStatement, vals)
	case DeleteKind:
		return m.execDelete(stmt.DeleteStatement, vals)
	case CreateTableKind:
		return nil, m.execCreateTable(stmt.CreateTableStatement)
	}
	return nil, fmt.Errorf("unsupported statement")
}

func (m *Memory) execCreateTable(crt *CreateTableStatement) error {
	if _, ok := m.tables[crt.name]; ok {
		return ErrTableAlreadyExists
	}

	t := &memTable{name: crt.name}
	for _, col := range crt.cols {
		t.columns = append(t.columns, col.name)
		t.types = append(t.types, col.typ)
		if col.primaryKey {
			t.keyCols = append(t.keyCols, col.name)
		}
	}

	if len(t.keyCols) > 0 {
		t.index = llrb.New()
	}

	m.tables[crt.name] = t
	return nil
}

func (m *Memory) execSelect(slct *SelectStatement, vals []any) (*Frame, error) {
	t, ok := m.tables[slct.table]
	if !ok {
		return nil, ErrTableDoesNotExist
	}

	var names []string
	for _, item := range slct.items {
		if item.asterisk {
			names = append(names, t.columns...)
			continue
		}
		if t.columnIndex(item.column) == -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, item.column)
		}
		names = append(names, item.column)
	}

	var matched []*memRow
	for _, row := range t.rows {
		ok, err := evalPredicate(slct.where, evalEnv{t: t, row: row.cells, vals: vals})
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	if slct.orderBy != nil {
		idx := t.columnIndex(slct.orderBy.column)
		if idx == -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, slct.orderBy.column)
		}

		var sortErr error
		sort.SliceStable(matched, func(i, j int) bool {
			cmp, err := compareNullable(matched[i].cells[idx], matched[j].cells[idx])
			if err != nil && sortErr == nil {
				sortErr = err
			}
			if slct.orderBy.desc {
				return cmp > 0
			}
			return cmp < 0
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}

	if slct.limit != nil && int64(len(matched)) > *slct.limit {
		matched = matched[:*slct.limit]
	}

	return t.project(matched, names)
}

func (m *Memory) execDelete(del *DeleteStatement, vals []any) (*Frame, error) {
	t, ok := m.tables[del.table]
	if !ok {
		return nil, ErrTableDoesNotExist
	}

	var kept, removed []*memRow
	for _, row := range t.rows {
		ok, err := evalPredicate(del.where, evalEnv{t: t, row: row.cells, vals: vals})
		if err != nil {
			return nil, err
		}
		if ok {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}

	t.rows = kept
	if t.index != nil {
		for _, row := range removed {
			t.index.Delete(indexItem{key: t.keyOf(row.cells, t.keyCols)})
		}
	}

	if len(del.returning) > 0 {
		return t.project(removed, del.returning)
	}
	return nil, nil
}

func (m *Memory) execInsert(inst *InsertStatement, vals []any) (*Frame, error) {
	t, ok := m.tables[inst.table]
	if !ok {
		return nil, ErrTableDoesNotExist
	}

	cols := inst.cols
	if len(cols) == 0 {
		cols = t.columns
	}

	colIdx := make([]int, len(cols))
	for i, c := range cols {
		j := t.columnIndex(c)
		if j == -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, c)
		}
		colIdx[i] = j
	}

	input, err := m.insertInput(inst, t, len(cols), vals)
	if err != nil {
		return nil, err
	}

	conflictCols := t.keyCols
	if inst.conflict != nil && len(inst.conflict.keyCols) > 0 {
		conflictCols = inst.conflict.keyCols
	}

	var returned []*memRow
	for _, in := range input {
		cells := make([]any, len(t.columns))
		for i, v := range in {
			j := colIdx[i]
			coerced, err := coerceCell(v, t.types[j])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", t.columns[j], err)
			}
			cells[j] = coerced
		}

		var existing *memRow
		if len(conflictCols) > 0 {
			existing = t.lookup(conflictCols, cells)
		}

		if existing == nil {
			row := &memRow{cells: cells}
			t.rows = append(t.rows, row)
			if t.index != nil {
				t.index.ReplaceOrInsert(indexItem{key: t.keyOf(cells, t.keyCols), row: row})
			}
			returned = append(returned, row)
			continue
		}

		if inst.conflict == nil {
			return nil, ErrDuplicateKey
		}
		if !inst.conflict.doUpdate {
			continue
		}

		env := evalEnv{t: t, row: existing.cells, excluded: cells, vals: vals}
		pass, err := evalPredicate(inst.conflict.where, env)
		if err != nil {
			return nil, err
		}
		if !pass {
			continue
		}

		oldKey := ""
		if t.index != nil {
			oldKey = t.keyOf(existing.cells, t.keyCols)
		}

		for _, a := range inst.conflict.assignments {
			j := t.columnIndex(a.column)
			if j == -1 {
				return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, a.column)
			}
			v, err := evalExpression(&a.value, env)
			if err != nil {
				return nil, err
			}
			coerced, err := coerceCell(v, t.types[j])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", a.column, err)
			}
			existing.cells[j] = coerced
		}

		if t.index != nil {
			if newKey := t.keyOf(existing.cells, t.keyCols); newKey != oldKey {
				t.index.Delete(indexItem{key: oldKey})
				t.index.ReplaceOrInsert(indexItem{key: newKey, row: existing})
			}
		}

		returned = append(returned, existing)
	}

	if len(inst.returning) > 0 {
		return t.project(returned, inst.returning)
	}
	return nil, nil
}

// insertInput materializes the incoming rows of an insert, in statement
// column order: either the zipped UNNEST arrays or the evaluated VALUES
// tuples.
func (m *Memory) insertInput(inst *InsertStatement, t *memTable, width int, vals []any) ([][]any, error) {
	if inst.unnest != nil {
		if len(inst.unnest) != width {
			return nil, ErrMismatchedColumns
		}

		arrays := make([][]any, len(inst.unnest))
		for i, p := range inst.unnest {
			if p.param < 1 || p.param > len(vals) {
				return nil, fmt.Errorf("parameter $%d out of range", p.param)
			}
			arr, err := arrayValues(vals[p.param-1])
			if err != nil {
				return nil, err
			}
			if i > 0 && len(arr) != len(arrays[0]) {
				return nil, ErrMismatchedColumns
			}
			arrays[i] = arr
		}

		var input [][]any
		for r := 0; r < len(arrays[0]); r++ {
			row := make([]any, width)
			for i := range arrays {
				row[i] = arrays[i][r]
			}
			input = append(input, row)
		}
		return input, nil
	}

	var input [][]any
	for _, tuple := range inst.values {
		if len(tuple) != width {
			return nil, ErrMismatchedColumns
		}
		row := make([]any, width)
		for i := range tuple {
			v, err := evalExpression(&tuple[i], evalEnv{t: t, vals: vals})
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		input = append(input, row)
	}
	return input, nil
}

// coerceCell converts a value to a column's storage type the way postgres
// would on assignment, rounding decimals to the declared scale.
func coerceCell(v any, typ Type) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch typ.Kind {
	case BoolKind:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case IntKind:
		if i, ok := asInt64(v); ok {
			return i, nil
		}
		if d, ok := v.(decimal.Decimal); ok && d.IsInteger() {
			return d.IntPart(), nil
		}
	case FloatKind:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		case decimal.Decimal:
			return f.InexactFloat64(), nil
		}
		if i, ok := asInt64(v); ok {
			return float64(i), nil
		}
	case StringKind:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case DecimalKind:
		d, err := asDecimal(v)
		if err == nil {
			if typ.Scale >= 0 {
				d = d.Round(typ.Scale)
			}
			return d, nil
		}
	case TimeKind:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}

	return nil, fmt.Errorf("cannot store %T in a %s column", v, typ)
}

type evalEnv struct {
	t        *memTable
	row      []any
	excluded []any
	vals     []any
}

func evalPredicate(exp *expression, env evalEnv) (bool, error) {
	if exp == nil {
		return true, nil
	}

	v, err := evalExpression(exp, env)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: predicate is not boolean", ErrInvalidOperands)
	}
	return b, nil
}

func evalExpression(exp *expression, env evalEnv) (any, error) {
	switch exp.kind {
	case literalKind:
		return literalValue(exp.literal)

	case columnKind:
		ref := exp.column
		cells := env.row
		switch {
		case ref.qualifier == "excluded":
			if env.excluded == nil {
				return nil, fmt.Errorf("%w: EXCLUDED outside conflict clause", ErrInvalidOperands)
			}
			cells = env.excluded
		case ref.qualifier != "" && ref.qualifier != env.t.name:
			return nil, fmt.Errorf("%w: %s", ErrTableDoesNotExist, ref.qualifier)
		}

		i := env.t.columnIndex(ref.name)
		if i == -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnDoesNotExist, ref.name)
		}
		if cells == nil {
			return nil, fmt.Errorf("%w: no row in scope", ErrInvalidOperands)
		}
		return cells[i], nil

	case bindKind:
		if exp.param < 1 || exp.param > len(env.vals) {
			return nil, fmt.Errorf("parameter $%d out of range", exp.param)
		}
		return env.vals[exp.param-1], nil

	case anyKind:
		return nil, fmt.Errorf("%w: ANY outside comparison", ErrInvalidOperands)

	case binaryKind:
		return evalBinary(exp.binary, env)
	}

	return nil, fmt.Errorf("%w: unsupported expression", ErrInvalidOperands)
}

func evalBinary(be *binaryExpression, env evalEnv) (any, error) {
	if be.op.kind == keywordKind {
		a, err := evalPredicate(&be.a, env)
		if err != nil {
			return nil, err
		}
		b, err := evalPredicate(&be.b, env)
		if err != nil {
			return nil, err
		}

		switch keyword(be.op.value) {
		case andKeyword:
			return a && b, nil
		case orKeyword:
			return a || b, nil
		}
		return nil, fmt.Errorf("%w: operator %s", ErrInvalidOperands, be.op.value)
	}

	// x = ANY($n) membership
	if be.b.kind == anyKind {
		if symbol(be.op.value) != eqSymbol {
			return nil, fmt.Errorf("%w: %s ANY", ErrInvalidOperands, be.op.value)
		}

		lhs, err := evalExpression(&be.a, env)
		if err != nil {
			return nil, err
		}
		if lhs == nil {
			return nil, nil
		}
		if be.b.param < 1 || be.b.param > len(env.vals) {
			return nil, fmt.Errorf("parameter $%d out of range", be.b.param)
		}
		arr, err := arrayValues(env.vals[be.b.param-1])
		if err != nil {
			return nil, err
		}

		for _, elem := range arr {
			if elem == nil {
				continue
			}
			cmp, err := compareValues(lhs, elem)
			if err != nil {
				return nil, err
			}
			if cmp == 0 {
				return true, nil
			}
		}
		return false, nil
	}

	a, err := evalExpression(&be.a, env)
	if err != nil {
		return nil, err
	}
	b, err := evalExpression(&be.b, env)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		// Comparison against null is null.
		return nil, nil
	}

	cmp, err := compareValues(a, b)
	if err != nil {
		return nil, err
	}

	switch symbol(be.op.value) {
	case eqSymbol:
		return cmp == 0, nil
	case neqSymbol:
		return cmp != 0, nil
	case ltSymbol:
		return cmp < 0, nil
	case lteSymbol:
		return cmp <= 0, nil
	case gtSymbol:
		return cmp > 0, nil
	case gteSymbol:
		return cmp >= 0, nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrInvalidOperands, be.op.value)
}

func literalValue(t *token) (any, error) {
	switch t.kind {
	case numericKind:
		if strings.ContainsAny(t.value, ".e") {
			return decimal.NewFromString(t.value)
		}
		i, err := strconv.ParseInt(t.value, 10, 64)
		if err != nil {
			return nil, err
		}
		return i, nil
	case stringKind:
		return t.value, nil
	case boolKind:
		return t.value == "true", nil
	case nullKind:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: literal %s", ErrInvalidOperands, t.value)
}

// compareValues compares two non-nil cells, widening across the numeric
// types so e.g. an int64 literal compares against a decimal column.
func compareValues(a, b any) (int, error) {
	ad, aIsDec := a.(decimal.Decimal)
	bd, bIsDec := b.(decimal.Decimal)
	if aIsDec || bIsDec {
		var err error
		if !aIsDec {
			ad, err = asDecimal(a)
			if err != nil {
				return 0, fmt.Errorf("%w: %T and %T", ErrInvalidOperands, a, b)
			}
		}
		if !bIsDec {
			bd, err = asDecimal(b)
			if err != nil {
				return 0, fmt.Errorf("%w: %T and %T", ErrInvalidOperands, a, b)
			}
		}
		return ad.Cmp(bd), nil
	}

	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)
	if aIsFloat || bIsFloat {
		if !aIsFloat {
			ai, ok := asInt64(a)
			if !ok {
				return 0, fmt.Errorf("%w: %T and %T", ErrInvalidOperands, a, b)
			}
			af = float64(ai)
		}
		if !bIsFloat {
			bi, ok := asInt64(b)
			if !ok {
				return 0, fmt.Errorf("%w: %T and %T", ErrInvalidOperands, a, b)
			}
			bf = float64(bi)
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		}
		return 0, nil
	}

	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			}
			return 0, nil
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case !av && bv:
				return -1, nil
			case av && !bv:
				return 1, nil
			}
			return 0, nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1, nil
			case av.After(bv):
				return 1, nil
			}
			return 0, nil
		}
	}

	return 0, fmt.Errorf("%w: %T and %T", ErrInvalidOperands, a, b)
}

// compareNullable orders nulls first, for ORDER BY.
func compareNullable(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	return compareValues(a, b)
}

func arrayValues(v any) ([]any, error) {
	switch arr := v.(type) {
	case []any:
		return arr, nil
	case []bool:
		return toAnySlice(arr), nil
	case []int64:
		return toAnySlice(arr), nil
	case []float64:
		return toAnySlice(arr), nil
	case []string:
		return toAnySlice(arr), nil
	case []decimal.Decimal:
		return toAnySlice(arr), nil
	case []time.Time:
		return toAnySlice(arr), nil
	case []*bool:
		return fromPtrSlice(arr), nil
	case []*int64:
		return fromPtrSlice(arr), nil
	case []*float64:
		return fromPtrSlice(arr), nil
	case []*string:
		return fromPtrSlice(arr), nil
	case []*decimal.Decimal:
		return fromPtrSlice(arr), nil
	case []*time.Time:
		return fromPtrSlice(arr), nil
	}
	return nil, fmt.Errorf("%w: %T is not an array", ErrInvalidOperands, v)
}

func toAnySlice[T any](vals []T) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func fromPtrSlice[T any](vals []*T) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
