package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/WolfEYc/pgframe"
)

func main() {
	ctx := context.Background()
	db := pgframe.NewMemory()

	_, err := db.Fetch(ctx, `CREATE TABLE item (
		id BIGINT PRIMARY KEY,
		name TEXT,
		price NUMERIC(12, 2),
		in_stock BOOLEAN
	)`)
	if err != nil {
		panic(err)
	}

	items, err := pgframe.NewFrame(
		pgframe.Ints("id", 1, 2, 3),
		pgframe.Strings("name", "beans", "rice", "beanie"),
		pgframe.Decimals("price",
			decimal.RequireFromString("1.99"),
			decimal.RequireFromString("2.49"),
			decimal.RequireFromString("69.42"),
		),
		pgframe.Bools("in_stock", true, true, false),
	)
	if err != nil {
		panic(err)
	}

	if _, err := db.Insert(ctx, items, "item"); err != nil {
		panic(err)
	}

	one, err := db.Fetch(ctx,
		"SELECT id, name, price FROM item WHERE id = :id",
		pgframe.Named("id", 3))
	if err != nil {
		panic(err)
	}
	fmt.Print(one)

	some, err := db.Fetch(ctx,
		"SELECT id, name FROM item WHERE id = ANY(:ids) ORDER BY id",
		pgframe.Named("ids", []int64{1, 3}))
	if err != nil {
		panic(err)
	}
	fmt.Print(some)

	// Re-send item 3 with a new price plus a new item 4. Only changed and
	// new rows come back.
	restock, err := pgframe.NewFrame(
		pgframe.Ints("id", 3, 4),
		pgframe.Strings("name", "beanie", "socks"),
		pgframe.Decimals("price",
			decimal.RequireFromString("59.99"),
			decimal.RequireFromString("7.00"),
		),
		pgframe.Bools("in_stock", true, false),
	)
	if err != nil {
		panic(err)
	}

	changed, err := db.Insert(ctx, restock, "item",
		pgframe.KeyColumns("id"),
		pgframe.ReturnColumns("id", "name", "price"))
	if err != nil {
		panic(err)
	}
	fmt.Print(changed)

	gone, err := db.Fetch(ctx,
		"DELETE FROM item WHERE in_stock = :in_stock RETURNING id, name",
		pgframe.Arg{Name: "in_stock", Value: false})
	if err != nil {
		panic(err)
	}
	fmt.Print(gone)
}
