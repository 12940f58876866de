package pgframe

import (
	"context"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PG is a postgres client implementing DB over a shared pool. It is safe for
// concurrent use; each call is a single statement and is independently
// atomic.
type PG struct {
	q    Querier
	pool *pgxpool.Pool
}

// Open connects a pool to the given url. The shopspring decimal codec is
// registered on every pooled connection so numeric values round-trip
// exactly. Close releases the pool.
func Open(ctx context.Context, url string) (*PG, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	return &PG{q: pool, pool: pool}, nil
}

// NewPG wraps an existing querier (a pool, connection or transaction).
// Closing is the caller's concern.
func NewPG(q Querier) *PG {
	pg := &PG{q: q}
	if pool, ok := q.(*pgxpool.Pool); ok {
		pg.pool = pool
	}
	return pg
}

// Close releases the underlying pool, if the client owns one.
func (pg *PG) Close() {
	if pg.pool != nil {
		pg.pool.Close()
	}
}

func (pg *PG) Fetch(ctx context.Context, query string, args ...Arg) (*Frame, error) {
	sql, vals, err := bindNamed(query, args)
	if err != nil {
		return nil, err
	}
	return pg.query(ctx, sql, vals, nil)
}

func (pg *PG) Insert(ctx context.Context, f *Frame, table string, opts ...InsertOption) (*Frame, error) {
	var cfg insertConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sql, vals, err := encodeInsert(f, table, cfg.keyCols, cfg.returnCols)
	if err != nil {
		return nil, err
	}

	if len(cfg.returnCols) == 0 {
		_, err := pg.q.Exec(ctx, sql, vals...)
		return nil, err
	}

	return pg.query(ctx, sql, vals, cfg.returnSchema)
}

func (pg *PG) query(ctx context.Context, sql string, vals []any, schema Schema) (*Frame, error) {
	rows, err := pg.q.Query(ctx, sql, vals...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	if len(fds) == 0 {
		// No row description, e.g. a statement without RETURNING.
		rows.Close()
		return nil, rows.Err()
	}

	cols := make([]ResultColumn, len(fds))
	for i, fd := range fds {
		cols[i] = ResultColumn{
			Name: fd.Name,
			Type: oidType(fd.DataTypeOID, fd.TypeModifier),
		}
	}

	var raw [][]any
	for rows.Next() {
		vs, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range vs {
			vs[i] = normalizeWireValue(v)
		}
		raw = append(raw, vs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return materialize(cols, raw, schema)
}

// oidType maps a wire type to a column type. The numeric scale comes from
// the type modifier when the result column declares one.
func oidType(oid uint32, mod int32) Type {
	switch oid {
	case pgtype.BoolOID:
		return Type{Kind: BoolKind}
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return Type{Kind: IntKind}
	case pgtype.Float4OID, pgtype.Float8OID:
		return Type{Kind: FloatKind}
	case pgtype.NumericOID:
		scale := int32(-1)
		if mod >= 4 {
			scale = (mod - 4) & 0xffff
		}
		return Type{Kind: DecimalKind, Scale: scale}
	case pgtype.TimestampOID, pgtype.TimestamptzOID, pgtype.DateOID:
		return Type{Kind: TimeKind}
	default:
		return Type{Kind: StringKind}
	}
}

// normalizeWireValue converts driver-level values the materializer does not
// speak, e.g. a pgtype.Numeric scanned on a connection without the decimal
// codec.
func normalizeWireValue(v any) any {
	if n, ok := v.(pgtype.Numeric); ok {
		if !n.Valid {
			return nil
		}
		return decimal.NewFromBigInt(n.Int, n.Exp)
	}
	return v
}
