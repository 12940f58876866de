package pgframe

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	f, err := NewFrame(
		Ints("id", 1, 2),
		Strings("name", "beans", "rice"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Height())
	assert.Equal(t, 2, f.Width())
	assert.Equal(t, []string{"id", "name"}, f.Columns())
	assert.Equal(t, []any{int64(2), "rice"}, f.Row(1))

	_, err = NewFrame()
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = NewFrame(Ints("id", 1), Ints("id", 2))
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewFrame(Ints("id", 1), Strings("name", "a", "b"))
	assert.ErrorIs(t, err, ErrMismatchedColumns)
}

func TestDecimalsScaleInference(t *testing.T) {
	s := Decimals("price",
		decimal.RequireFromString("1.9"),
		decimal.RequireFromString("69.42"),
	)
	assert.Equal(t, Type{Kind: DecimalKind, Scale: 2}, s.Type())

	v, ok := s.Decimal(1)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("69.42")))
	assert.Equal(t, "69.42", v.String())
}

func TestAppendCellDecimal(t *testing.T) {
	// Declared scale rounds
	fixed := NewSeries("price", Type{Kind: DecimalKind, Scale: 2})
	require.NoError(t, fixed.appendCell(decimal.RequireFromString("1.999")))
	v, _ := fixed.Decimal(0)
	assert.Equal(t, "2.00", v.StringFixed(2))

	// Undeclared scale widens to the values
	inferred := NewSeries("price", Type{Kind: DecimalKind, Scale: -1})
	require.NoError(t, inferred.appendCell(decimal.RequireFromString("1.5")))
	require.NoError(t, inferred.appendCell(decimal.RequireFromString("1.999")))
	assert.Equal(t, int32(3), inferred.Type().Scale)
	v, _ = inferred.Decimal(1)
	assert.Equal(t, "1.999", v.String())
}

func TestAppendCellCoercions(t *testing.T) {
	ints := NewSeries("n", Type{Kind: IntKind})
	require.NoError(t, ints.appendCell(int32(7)))
	require.NoError(t, ints.appendCell(7))
	assert.Error(t, ints.appendCell("seven"))

	floats := NewSeries("x", Type{Kind: FloatKind})
	require.NoError(t, floats.appendCell(float32(1.5)))
	require.NoError(t, floats.appendCell(int64(2)))
	v, _ := floats.Float(1)
	assert.Equal(t, 2.0, v)

	strs := NewSeries("s", Type{Kind: StringKind})
	require.NoError(t, strs.appendCell([]byte("bytes")))
	require.NoError(t, strs.appendCell([16]byte{}))
	u, _ := strs.Str(1)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", u)
}

func TestFrameSelectAndCast(t *testing.T) {
	f, err := NewFrame(
		Ints("id", 1, 2),
		Strings("name", "beans", "rice"),
		Ints("qty", 5, 10),
	)
	require.NoError(t, err)

	sub, err := f.Select("qty", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"qty", "id"}, sub.Columns())

	_, err = f.Select("nope")
	assert.ErrorIs(t, err, ErrColumnDoesNotExist)

	cast, err := f.Cast(Schema{"qty": {Kind: DecimalKind, Scale: 2}})
	require.NoError(t, err)
	qty, err := cast.Column("qty")
	require.NoError(t, err)
	assert.Equal(t, Type{Kind: DecimalKind, Scale: 2}, qty.Type())
	v, _ := qty.Decimal(1)
	assert.Equal(t, "10.00", v.StringFixed(2))

	_, err = f.Cast(Schema{"nope": {Kind: IntKind}})
	assert.ErrorIs(t, err, ErrColumnDoesNotExist)
}

func TestSeriesNulls(t *testing.T) {
	s := NewSeries("x", Type{Kind: IntKind})
	require.NoError(t, s.appendCell(int64(1)))
	require.NoError(t, s.appendCell(nil))

	assert.False(t, s.IsNull(0))
	assert.True(t, s.IsNull(1))

	_, ok := s.Int(1)
	assert.False(t, ok)
	assert.Equal(t, []any{int64(1), nil}, s.Values())
}
