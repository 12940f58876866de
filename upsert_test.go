package pgframe

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInsert(t *testing.T) {
	f, err := NewFrame(
		Ints("id", 1, 2),
		Strings("name", "beans", "rice"),
		Decimals("price", decimal.RequireFromString("1.99"), decimal.RequireFromString("2.49")),
	)
	require.NoError(t, err)

	sql, vals, err := encodeInsert(f, "item", nil, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "item" ("id", "name", "price") SELECT * FROM UNNEST($1::BIGINT[], $2::TEXT[], $3::NUMERIC[]) ON CONFLICT DO NOTHING`,
		sql)
	require.Len(t, vals, 3)
	assert.Equal(t, []int64{1, 2}, vals[0])
	assert.Equal(t, []string{"beans", "rice"}, vals[1])

	sql, _, err = encodeInsert(f, "item", []string{"id"}, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "item" ("id", "name", "price") SELECT * FROM UNNEST($1::BIGINT[], $2::TEXT[], $3::NUMERIC[]) `+
			`ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name", "price" = EXCLUDED."price" `+
			`WHERE "item"."name" != EXCLUDED."name" OR "item"."price" != EXCLUDED."price"`,
		sql)

	sql, _, err = encodeInsert(f, "item", []string{"id"}, []string{"id", "name"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, ` RETURNING "id", "name"`), sql)
}

func TestEncodeInsertAllKeyColumns(t *testing.T) {
	f, err := NewFrame(Ints("a", 1), Ints("b", 2))
	require.NoError(t, err)

	// Nothing to merge when every column is a key column
	sql, _, err := encodeInsert(f, "pair", []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "pair" ("a", "b") SELECT * FROM UNNEST($1::BIGINT[], $2::BIGINT[]) ON CONFLICT ("a", "b") DO NOTHING`,
		sql)
}

func TestEncodeInsertErrors(t *testing.T) {
	f, err := NewFrame(Ints("id", 1))
	require.NoError(t, err)

	_, _, err = encodeInsert(f, "item; drop table", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, _, err = encodeInsert(f, "item", []string{"nope"}, nil)
	assert.ErrorIs(t, err, ErrKeyColumns)

	_, _, err = encodeInsert(f, "item", nil, []string{"bad name"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestEncodeInsertNullArrays(t *testing.T) {
	s := NewSeries("id", Type{Kind: IntKind})
	require.NoError(t, s.appendCell(int64(1)))
	s.appendNull()
	f, err := NewFrame(s)
	require.NoError(t, err)

	_, vals, err := encodeInsert(f, "item", nil, nil)
	require.NoError(t, err)
	arr, ok := vals[0].([]*int64)
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.Equal(t, int64(1), *arr[0])
	assert.Nil(t, arr[1])
}
