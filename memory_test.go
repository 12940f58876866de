package pgframe

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func itemTable(t *testing.T, db *Memory) {
	t.Helper()
	_, err := db.Fetch(context.Background(), `CREATE TABLE item (
		id BIGINT PRIMARY KEY,
		name TEXT,
		price NUMERIC(12, 2),
		in_stock BOOLEAN
	)`)
	require.NoError(t, err)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	items, err := NewFrame(
		Ints("id", 1, 2, 3),
		Strings("name", "beans", "rice", "beanie"),
		Decimals("price", dec("1.99"), dec("2.49"), dec("69.42")),
		Bools("in_stock", true, true, false),
	)
	require.NoError(t, err)

	ret, err := db.Insert(ctx, items, "item")
	require.NoError(t, err)
	assert.Nil(t, ret)

	f, err := db.Fetch(ctx,
		"SELECT id, name, price FROM item WHERE id = :id",
		Arg{Name: "id", Value: 3})
	require.NoError(t, err)
	require.Equal(t, 1, f.Height())

	name, err := f.Column("name")
	require.NoError(t, err)
	v, ok := name.Str(0)
	assert.True(t, ok)
	assert.Equal(t, "beanie", v)

	price, err := f.Column("price")
	require.NoError(t, err)
	assert.Equal(t, Type{Kind: DecimalKind, Scale: 2}, price.Type())
	p, ok := price.Decimal(0)
	assert.True(t, ok)
	assert.True(t, p.Equal(dec("69.42")))
	assert.Equal(t, "69.42", p.String())
}

func TestMemoryFetchAny(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	items, err := NewFrame(
		Ints("id", 1, 2, 3),
		Strings("name", "beans", "rice", "beanie"),
		Decimals("price", dec("1.99"), dec("2.49"), dec("69.42")),
		Bools("in_stock", true, true, false),
	)
	require.NoError(t, err)
	_, err = db.Insert(ctx, items, "item")
	require.NoError(t, err)

	f, err := db.Fetch(ctx,
		"SELECT id FROM item WHERE id = ANY(:ids) ORDER BY id DESC",
		Arg{Name: "ids", Value: []int64{1, 3}})
	require.NoError(t, err)
	id, err := f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(1)}, id.Values())

	// An empty sequence matches nothing but keeps the result typed
	f, err = db.Fetch(ctx,
		"SELECT id, name FROM item WHERE id = ANY(:ids)",
		Arg{Name: "ids", Value: []int64{}})
	require.NoError(t, err)
	assert.Equal(t, 0, f.Height())
	assert.Equal(t, 2, f.Width())
	id, err = f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, Type{Kind: IntKind}, id.Type())
}

func TestMemoryConflictHandling(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	items, err := NewFrame(
		Ints("id", 1, 2, 3),
		Strings("name", "beans", "rice", "beanie"),
		Decimals("price", dec("1.99"), dec("2.49"), dec("69.42")),
		Bools("in_stock", true, true, false),
	)
	require.NoError(t, err)
	_, err = db.Insert(ctx, items, "item")
	require.NoError(t, err)

	// Without key columns conflicting rows are skipped; only the new row
	// comes back.
	skip, err := NewFrame(
		Ints("id", 3, 4),
		Strings("name", "bogus", "socks"),
		Decimals("price", dec("0.01"), dec("7.00")),
		Bools("in_stock", true, true),
	)
	require.NoError(t, err)
	ret, err := db.Insert(ctx, skip, "item", ReturnColumns("id"))
	require.NoError(t, err)
	id, err := ret.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(4)}, id.Values())

	// Row 3 kept its original values
	f, err := db.Fetch(ctx, "SELECT name FROM item WHERE id = :id", Arg{Name: "id", Value: 3})
	require.NoError(t, err)
	name, err := f.Column("name")
	require.NoError(t, err)
	v, _ := name.Str(0)
	assert.Equal(t, "beanie", v)

	// With key columns conflicting rows are merged, but only rows that
	// actually change (or are new) come back. Row 4 is re-sent unchanged.
	upsert, err := NewFrame(
		Ints("id", 3, 4, 5),
		Strings("name", "beanie", "socks", "hat"),
		Decimals("price", dec("59.99"), dec("7.00"), dec("3.50")),
		Bools("in_stock", false, true, true),
	)
	require.NoError(t, err)
	ret, err = db.Insert(ctx, upsert, "item", KeyColumns("id"), ReturnColumns("id", "price"))
	require.NoError(t, err)
	id, err = ret.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(5)}, id.Values())

	price, err := ret.Column("price")
	require.NoError(t, err)
	p, _ := price.Decimal(0)
	assert.True(t, p.Equal(dec("59.99")))
}

func TestMemoryInsertReturnSchema(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	items, err := NewFrame(
		Ints("id", 9),
		Strings("name", "bulk"),
		Decimals("price", dec("1.5")),
		Bools("in_stock", true),
	)
	require.NoError(t, err)

	ret, err := db.Insert(ctx, items, "item",
		ReturnColumns("id", "price"),
		ReturnSchema(Schema{"price": {Kind: DecimalKind, Scale: 4}}))
	require.NoError(t, err)

	price, err := ret.Column("price")
	require.NoError(t, err)
	assert.Equal(t, Type{Kind: DecimalKind, Scale: 4}, price.Type())
	v, _ := price.Decimal(0)
	assert.Equal(t, "1.5000", v.StringFixed(4))
}

func TestMemoryDeleteReturning(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	items, err := NewFrame(
		Ints("id", 1, 2, 3),
		Strings("name", "beans", "rice", "beanie"),
		Decimals("price", dec("1.99"), dec("2.49"), dec("69.42")),
		Bools("in_stock", true, true, false),
	)
	require.NoError(t, err)
	_, err = db.Insert(ctx, items, "item")
	require.NoError(t, err)

	f, err := db.Fetch(ctx,
		"DELETE FROM item WHERE in_stock = :in_stock RETURNING id, name",
		Arg{Name: "in_stock", Value: false})
	require.NoError(t, err)
	require.Equal(t, 1, f.Height())
	id, err := f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3)}, id.Values())

	// Without RETURNING a delete yields no frame
	f, err = db.Fetch(ctx, "DELETE FROM item WHERE id = :id", Arg{Name: "id", Value: 1})
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = db.Fetch(ctx, "SELECT id FROM item ORDER BY id")
	require.NoError(t, err)
	id, err = f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2)}, id.Values())
}

func TestMemoryDeleteAny(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	items, err := NewFrame(
		Ints("id", 1, 2, 3),
		Strings("name", "beans", "rice", "beanie"),
		Decimals("price", dec("1.99"), dec("2.49"), dec("69.42")),
		Bools("in_stock", true, true, false),
	)
	require.NoError(t, err)
	_, err = db.Insert(ctx, items, "item")
	require.NoError(t, err)

	// Ids that are absent are simply not matched
	f, err := db.Fetch(ctx,
		"DELETE FROM item WHERE id = ANY(:ids) RETURNING id",
		Arg{Name: "ids", Value: []int64{1, 3, 99}})
	require.NoError(t, err)
	id, err := f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3)}, id.Values())

	f, err = db.Fetch(ctx, "SELECT id FROM item")
	require.NoError(t, err)
	id, err = f.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2)}, id.Values())
}

func TestMemoryValuesInsert(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()

	f, err := db.Fetch(ctx, `
		CREATE TABLE users (id INT PRIMARY KEY, name TEXT);
		INSERT INTO users (id, name) VALUES (1, 'Admin'), (2, 'Bob');
		SELECT name FROM users ORDER BY id LIMIT 1;
	`)
	require.NoError(t, err)
	name, err := f.Column("name")
	require.NoError(t, err)
	assert.Equal(t, []any{"Admin"}, name.Values())

	// A plain insert on a taken key fails
	_, err = db.Fetch(ctx, "INSERT INTO users (id, name) VALUES (1, 'Dupe')")
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryErrors(t *testing.T) {
	ctx := context.Background()
	db := NewMemory()
	itemTable(t, db)

	_, err := db.Fetch(ctx, "SELECT id FROM nope")
	assert.ErrorIs(t, err, ErrTableDoesNotExist)

	_, err = db.Fetch(ctx, "SELECT nope FROM item")
	assert.ErrorIs(t, err, ErrColumnDoesNotExist)

	_, err = db.Fetch(ctx, "CREATE TABLE item (id INT)")
	assert.ErrorIs(t, err, ErrTableAlreadyExists)

	f, err := NewFrame(Ints("id", 1))
	require.NoError(t, err)
	_, err = db.Insert(ctx, f, "nope")
	assert.ErrorIs(t, err, ErrTableDoesNotExist)
}

func TestMemoryDescribe(t *testing.T) {
	db := NewMemory()
	itemTable(t, db)

	assert.Equal(t, []string{"item"}, db.Tables())

	f, err := db.Describe("item")
	require.NoError(t, err)
	col, err := f.Column("column")
	require.NoError(t, err)
	assert.Equal(t, []any{"id", "name", "price", "in_stock"}, col.Values())

	key, err := f.Column("primary key")
	require.NoError(t, err)
	assert.Equal(t, []any{true, false, false, false}, key.Values())

	_, err = db.Describe("nope")
	assert.ErrorIs(t, err, ErrTableDoesNotExist)
}
