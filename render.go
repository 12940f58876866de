package pgframe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Render writes a frame as a table, headed by its shape. Headers carry the
// column type, e.g. "price (decimal[*,2])".
func (f *Frame) Render(w io.Writer) {
	fmt.Fprintf(w, "shape: (%d, %d)\n", f.Height(), f.Width())

	table := tablewriter.NewWriter(w)

	header := make([]string, f.Width())
	for i, s := range f.cols {
		header[i] = fmt.Sprintf("%s (%s)", s.Name(), s.Type())
	}
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	for r := 0; r < f.Height(); r++ {
		row := make([]string, f.Width())
		for i, s := range f.cols {
			row[i] = renderCell(s, r)
		}
		table.Append(row)
	}

	table.Render()
}

func (f *Frame) String() string {
	var sb strings.Builder
	f.Render(&sb)
	return sb.String()
}

func renderCell(s *Series, r int) string {
	if s.IsNull(r) {
		return "null"
	}

	switch v := s.Value(r).(type) {
	case string:
		return v
	case decimal.Decimal:
		if s.Type().Scale >= 0 {
			return v.StringFixed(s.Type().Scale)
		}
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
