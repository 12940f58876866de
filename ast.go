package pgframe

import (
	"fmt"
	"strings"
)

type expressionKind uint

const (
	literalKind expressionKind = iota
	columnKind
	bindKind
	anyKind
	binaryKind
)

type binaryExpression struct {
	a  expression
	b  expression
	op token
}

func (be binaryExpression) generateCode() string {
	return fmt.Sprintf("(%s %s %s)", be.a.generateCode(), be.op.value, be.b.generateCode())
}

// columnRef is a possibly qualified column reference. The qualifier is a
// table name or "excluded" inside an ON CONFLICT DO UPDATE clause.
type columnRef struct {
	qualifier string
	name      string
}

type expression struct {
	literal *token
	column  *columnRef
	binary  *binaryExpression
	// param is the 1-based positional parameter index for bindKind and
	// anyKind expressions
	param int
	kind  expressionKind
}

func (e expression) generateCode() string {
	switch e.kind {
	case literalKind:
		if e.literal.kind == stringKind {
			return fmt.Sprintf("'%s'", e.literal.value)
		}
		return e.literal.value
	case columnKind:
		if e.column.qualifier == "excluded" {
			return fmt.Sprintf("EXCLUDED.\"%s\"", e.column.name)
		}
		if e.column.qualifier != "" {
			return fmt.Sprintf("\"%s\".\"%s\"", e.column.qualifier, e.column.name)
		}
		return fmt.Sprintf("\"%s\"", e.column.name)
	case bindKind:
		return fmt.Sprintf("$%d", e.param)
	case anyKind:
		return fmt.Sprintf("ANY($%d)", e.param)
	case binaryKind:
		return e.binary.generateCode()
	}

	return ""
}

type selectItem struct {
	asterisk bool
	column   string
}

type orderByClause struct {
	column string
	desc   bool
}

type SelectStatement struct {
	items   []selectItem
	table   string
	where   *expression
	orderBy *orderByClause
	limit   *int64
}

func (ss SelectStatement) GenerateCode() string {
	items := []string{}
	for _, i := range ss.items {
		if i.asterisk {
			items = append(items, "*")
		} else {
			items = append(items, fmt.Sprintf("\"%s\"", i.column))
		}
	}

	code := fmt.Sprintf("SELECT %s FROM \"%s\"", strings.Join(items, ", "), ss.table)
	if ss.where != nil {
		code += " WHERE " + ss.where.generateCode()
	}
	if ss.orderBy != nil {
		code += fmt.Sprintf(" ORDER BY \"%s\"", ss.orderBy.column)
		if ss.orderBy.desc {
			code += " DESC"
		}
	}
	if ss.limit != nil {
		code += fmt.Sprintf(" LIMIT %d", *ss.limit)
	}
	return code + ";"
}

type DeleteStatement struct {
	table     string
	where     *expression
	returning []string
}

func (ds DeleteStatement) GenerateCode() string {
	code := fmt.Sprintf("DELETE FROM \"%s\"", ds.table)
	if ds.where != nil {
		code += " WHERE " + ds.where.generateCode()
	}
	if len(ds.returning) > 0 {
		code += " RETURNING " + quoteJoin(ds.returning)
	}
	return code + ";"
}

// unnestParam is one array parameter of a bulk insert, with the element
// type it is cast to.
type unnestParam struct {
	param int
	typ   Type
}

type assignment struct {
	column string
	value  expression
}

// conflictClause models ON CONFLICT handling. Without doUpdate conflicting
// rows are skipped; with doUpdate the assignments are applied to the
// existing row when the optional where guard passes.
type conflictClause struct {
	keyCols     []string
	doUpdate    bool
	assignments []assignment
	where       *expression
}

type InsertStatement struct {
	table string
	cols  []string
	// unnest holds the column-major array parameters of a bulk insert;
	// values holds literal row tuples of a VALUES insert. Exactly one of
	// the two is set.
	unnest    []unnestParam
	values    [][]expression
	conflict  *conflictClause
	returning []string
}

func (is InsertStatement) GenerateCode() string {
	code := fmt.Sprintf("INSERT INTO \"%s\"", is.table)
	if len(is.cols) > 0 {
		code += fmt.Sprintf(" (%s)", quoteJoin(is.cols))
	}

	if is.unnest != nil {
		fillers := []string{}
		for _, p := range is.unnest {
			fillers = append(fillers, fmt.Sprintf("$%d::%s[]", p.param, p.typ.pgType()))
		}
		code += fmt.Sprintf(" SELECT * FROM UNNEST(%s)", strings.Join(fillers, ", "))
	} else {
		rows := []string{}
		for _, row := range is.values {
			exps := []string{}
			for _, e := range row {
				exps = append(exps, e.generateCode())
			}
			rows = append(rows, fmt.Sprintf("(%s)", strings.Join(exps, ", ")))
		}
		code += " VALUES " + strings.Join(rows, ", ")
	}

	if is.conflict != nil {
		code += " ON CONFLICT"
		if len(is.conflict.keyCols) > 0 {
			code += fmt.Sprintf(" (%s)", quoteJoin(is.conflict.keyCols))
		}
		if !is.conflict.doUpdate {
			code += " DO NOTHING"
		} else {
			sets := []string{}
			for _, a := range is.conflict.assignments {
				sets = append(sets, fmt.Sprintf("\"%s\" = %s", a.column, a.value.generateCode()))
			}
			code += " DO UPDATE SET " + strings.Join(sets, ", ")
			if is.conflict.where != nil {
				code += " WHERE " + is.conflict.where.generateCode()
			}
		}
	}

	if len(is.returning) > 0 {
		code += " RETURNING " + quoteJoin(is.returning)
	}
	return code + ";"
}

type columnDefinition struct {
	name       string
	typ        Type
	primaryKey bool
}

type CreateTableStatement struct {
	name string
	cols []columnDefinition
}

func (cts CreateTableStatement) GenerateCode() string {
	cols := []string{}
	for _, col := range cts.cols {
		spec := fmt.Sprintf("\"%s\" %s", col.name, typeSQL(col.typ))
		if col.primaryKey {
			spec += " PRIMARY KEY"
		}
		cols = append(cols, spec)
	}
	return fmt.Sprintf("CREATE TABLE \"%s\" (%s);", cts.name, strings.Join(cols, ", "))
}

func typeSQL(t Type) string {
	if t.Kind == DecimalKind && t.Scale >= 0 {
		return fmt.Sprintf("NUMERIC(38, %d)", t.Scale)
	}
	return t.pgType()
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("\"%s\"", n)
	}
	return strings.Join(quoted, ", ")
}

type AstKind uint

const (
	SelectKind AstKind = iota
	InsertKind
	DeleteKind
	CreateTableKind
)

type Statement struct {
	SelectStatement      *SelectStatement
	InsertStatement      *InsertStatement
	DeleteStatement      *DeleteStatement
	CreateTableStatement *CreateTableStatement
	Kind                 AstKind
}

func (s Statement) GenerateCode() string {
	switch s.Kind {
	case SelectKind:
		return s.SelectStatement.GenerateCode()
	case InsertKind:
		return s.InsertStatement.GenerateCode()
	case DeleteKind:
		return s.DeleteStatement.GenerateCode()
	case CreateTableKind:
		return s.CreateTableStatement.GenerateCode()
	}

	return "?unknown?"
}

type Ast struct {
	Statements []*Statement
}
