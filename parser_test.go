package pgframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelect(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	ast, err := parser.Parse("SELECT id, name FROM item WHERE id = ANY($1) ORDER BY id DESC LIMIT 10")
	require.NoError(t, err)
	require.Len(t, ast.Statements, 1)

	stmt := ast.Statements[0]
	require.Equal(t, SelectKind, stmt.Kind)
	assert.Equal(t,
		`SELECT "id", "name" FROM "item" WHERE ("id" = ANY($1)) ORDER BY "id" DESC LIMIT 10;`,
		stmt.GenerateCode())

	ast, err = parser.Parse("SELECT * FROM item WHERE price >= $1 AND in_stock = true")
	require.NoError(t, err)
	slct := ast.Statements[0].SelectStatement
	require.Len(t, slct.items, 1)
	assert.True(t, slct.items[0].asterisk)
	require.NotNil(t, slct.where)
	assert.Equal(t, binaryKind, slct.where.kind)
	assert.Equal(t, "and", slct.where.binary.op.value)
}

func TestParseDelete(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	ast, err := parser.Parse("DELETE FROM item WHERE in_stock = $1 RETURNING id, name")
	require.NoError(t, err)
	stmt := ast.Statements[0]
	require.Equal(t, DeleteKind, stmt.Kind)

	del := stmt.DeleteStatement
	assert.Equal(t, "item", del.table)
	require.NotNil(t, del.where)
	assert.Equal(t, []string{"id", "name"}, del.returning)
}

func TestParseCreateTable(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	ast, err := parser.Parse(`CREATE TABLE item (
		id BIGINT PRIMARY KEY,
		name TEXT,
		price NUMERIC(12, 2),
		stocked TIMESTAMP
	)`)
	require.NoError(t, err)
	stmt := ast.Statements[0]
	require.Equal(t, CreateTableKind, stmt.Kind)

	crt := stmt.CreateTableStatement
	assert.Equal(t, "item", crt.name)
	require.Len(t, crt.cols, 4)
	assert.True(t, crt.cols[0].primaryKey)
	assert.Equal(t, Type{Kind: IntKind}, crt.cols[0].typ)
	assert.Equal(t, Type{Kind: DecimalKind, Scale: 2}, crt.cols[2].typ)
	assert.Equal(t, Type{Kind: TimeKind}, crt.cols[3].typ)

	// A bare NUMERIC leaves the scale open
	ast, err = parser.Parse("CREATE TABLE m (v NUMERIC)")
	require.NoError(t, err)
	assert.Equal(t, Type{Kind: DecimalKind, Scale: -1}, ast.Statements[0].CreateTableStatement.cols[0].typ)
}

func TestParseValuesInsert(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	ast, err := parser.Parse("INSERT INTO users (id, name) VALUES (1, 'Admin'), (2, null)")
	require.NoError(t, err)
	inst := ast.Statements[0].InsertStatement
	assert.Equal(t, "users", inst.table)
	assert.Equal(t, []string{"id", "name"}, inst.cols)
	require.Len(t, inst.values, 2)
	assert.Equal(t, literalKind, inst.values[0][1].kind)
	assert.Equal(t, "Admin", inst.values[0][1].literal.value)
	assert.Equal(t, nullKind, inst.values[1][1].literal.kind)
	assert.Nil(t, inst.conflict)
}

func TestParseEncodedInsert(t *testing.T) {
	f, err := NewFrame(Ints("id", 1), Strings("name", "x"))
	require.NoError(t, err)
	sql, _, err := encodeInsert(f, "item", []string{"id"}, []string{"id"})
	require.NoError(t, err)

	parser := Parser{HelpMessagesDisabled: true}
	ast, err := parser.Parse(sql)
	require.NoError(t, err)

	stmt := ast.Statements[0]
	require.Equal(t, InsertKind, stmt.Kind)
	inst := stmt.InsertStatement

	assert.Equal(t, "item", inst.table)
	assert.Equal(t, []string{"id", "name"}, inst.cols)

	require.Len(t, inst.unnest, 2)
	assert.Equal(t, 1, inst.unnest[0].param)
	assert.Equal(t, IntKind, inst.unnest[0].typ.Kind)
	assert.Equal(t, 2, inst.unnest[1].param)
	assert.Equal(t, StringKind, inst.unnest[1].typ.Kind)

	require.NotNil(t, inst.conflict)
	assert.True(t, inst.conflict.doUpdate)
	assert.Equal(t, []string{"id"}, inst.conflict.keyCols)
	require.Len(t, inst.conflict.assignments, 1)
	assert.Equal(t, "name", inst.conflict.assignments[0].column)
	value := inst.conflict.assignments[0].value
	require.Equal(t, columnKind, value.kind)
	assert.Equal(t, "excluded", value.column.qualifier)
	require.NotNil(t, inst.conflict.where)

	assert.Equal(t, []string{"id"}, inst.returning)
}

func TestParseDoNothingInsert(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	ast, err := parser.Parse(`INSERT INTO "item" ("id") SELECT * FROM UNNEST($1::BIGINT[]) ON CONFLICT DO NOTHING`)
	require.NoError(t, err)
	inst := ast.Statements[0].InsertStatement
	require.NotNil(t, inst.conflict)
	assert.False(t, inst.conflict.doUpdate)
	assert.Empty(t, inst.conflict.keyCols)
}

func TestParseMultipleStatements(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	ast, err := parser.Parse("SELECT id FROM a; SELECT id FROM b;")
	require.NoError(t, err)
	assert.Len(t, ast.Statements, 2)

	_, err = parser.Parse("SELECT id FROM a SELECT id FROM b")
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	parser := Parser{HelpMessagesDisabled: true}

	for _, source := range []string{
		"",
		"SELECT",
		"SELECT id item",
		"INSERT INTO item",
		"DELETE item",
		"CREATE TABLE item (id)",
	} {
		_, err := parser.Parse(source)
		assert.Error(t, err, source)
	}
}
