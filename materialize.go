package pgframe

import "fmt"

// materialize converts a raw tabular result into a Frame, preserving row
// order and per-column type. A schema overrides the declared column types
// before any cell is read, so e.g. an undeclared numeric can be pinned to a
// scale.
func materialize(cols []ResultColumn, rows [][]any, schema Schema) (*Frame, error) {
	series := make([]*Series, len(cols))
	for i, col := range cols {
		typ := col.Type
		if schema != nil {
			if override, ok := schema[col.Name]; ok {
				typ = override
			}
		}
		series[i] = NewSeries(col.Name, typ)
	}

	for _, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("%w: row has %d cells, result has %d columns", ErrMismatchedColumns, len(row), len(cols))
		}
		for i, cell := range row {
			if err := series[i].appendCell(cell); err != nil {
				return nil, &MaterializeError{Column: cols[i].Name, Msg: err.Error()}
			}
		}
	}

	return NewFrame(series...)
}
