package pgframe

import (
	"errors"
	"fmt"
	"strconv"
)

func tokenFromKeyword(k keyword) token {
	return token{
		kind:  keywordKind,
		value: string(k),
	}
}

func tokenFromSymbol(s symbol) token {
	return token{
		kind:  symbolKind,
		value: string(s),
	}
}

func expectToken(tokens []*token, cursor uint, t token) bool {
	if cursor >= uint(len(tokens)) {
		return false
	}

	return t.equals(tokens[cursor])
}

func parseToken(tokens []*token, initialCursor uint, kind tokenKind) (*token, uint, bool) {
	cursor := initialCursor

	if cursor >= uint(len(tokens)) {
		return nil, initialCursor, false
	}

	current := tokens[cursor]
	if current.kind == kind {
		return current, cursor + 1, true
	}

	return nil, initialCursor, false
}

type Parser struct {
	HelpMessagesDisabled bool
}

func (p Parser) helpMessage(tokens []*token, cursor uint, msg string) {
	if p.HelpMessagesDisabled || len(tokens) == 0 {
		return
	}

	var c *token
	if cursor < uint(len(tokens)) {
		c = tokens[cursor]
	} else {
		c = tokens[cursor-1]
	}

	fmt.Printf("[%d,%d]: %s, got: %s\n", c.loc.line, c.loc.col, msg, c.value)
}

// parseTerm parses a non-binary expression: a literal, a parameter, an
// ANY($n) membership target, a possibly qualified column reference, or a
// parenthesized expression.
func (p Parser) parseTerm(tokens []*token, initialCursor uint) (*expression, uint, bool) {
	cursor := initialCursor
	if cursor >= uint(len(tokens)) {
		return nil, initialCursor, false
	}

	current := tokens[cursor]

	if expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
		exp, newCursor, ok := p.parseExpression(tokens, cursor+1, 0)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected expression")
			return nil, initialCursor, false
		}
		cursor = newCursor

		if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected right paren")
			return nil, initialCursor, false
		}
		return exp, cursor + 1, true
	}

	if current.kind == parameterKind {
		index, err := strconv.Atoi(current.value)
		if err != nil {
			return nil, initialCursor, false
		}
		return &expression{param: index, kind: bindKind}, cursor + 1, true
	}

	if expectToken(tokens, cursor, tokenFromKeyword(anyKeyword)) {
		cursor++
		if !expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected left paren after ANY")
			return nil, initialCursor, false
		}
		cursor++

		param, newCursor, ok := parseToken(tokens, cursor, parameterKind)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected parameter inside ANY")
			return nil, initialCursor, false
		}
		cursor = newCursor

		if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected right paren")
			return nil, initialCursor, false
		}

		index, err := strconv.Atoi(param.value)
		if err != nil {
			return nil, initialCursor, false
		}
		return &expression{param: index, kind: anyKind}, cursor + 1, true
	}

	if expectToken(tokens, cursor, tokenFromKeyword(excludedKeyword)) {
		cursor++
		if !expectToken(tokens, cursor, tokenFromSymbol(dotSymbol)) {
			p.helpMessage(tokens, cursor, "Expected dot after EXCLUDED")
			return nil, initialCursor, false
		}
		cursor++

		name, newCursor, ok := parseToken(tokens, cursor, identifierKind)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected column name")
			return nil, initialCursor, false
		}
		return &expression{column: &columnRef{qualifier: "excluded", name: name.value}, kind: columnKind}, newCursor, true
	}

	if current.kind == identifierKind {
		cursor++
		ref := &columnRef{name: current.value}
		if expectToken(tokens, cursor, tokenFromSymbol(dotSymbol)) {
			name, newCursor, ok := parseToken(tokens, cursor+1, identifierKind)
			if !ok {
				p.helpMessage(tokens, cursor+1, "Expected column name after dot")
				return nil, initialCursor, false
			}
			ref = &columnRef{qualifier: current.value, name: name.value}
			cursor = newCursor
		}
		return &expression{column: ref, kind: columnKind}, cursor, true
	}

	switch current.kind {
	case numericKind, stringKind, boolKind, nullKind:
		return &expression{literal: current, kind: literalKind}, cursor + 1, true
	}

	return nil, initialCursor, false
}

// parseExpression parses a term followed by binary operators using the
// tokens' binding power; higher power binds tighter. Parsing stops at any
// token that is not a binary operator.
func (p Parser) parseExpression(tokens []*token, initialCursor uint, minBp uint) (*expression, uint, bool) {
	exp, cursor, ok := p.parseTerm(tokens, initialCursor)
	if !ok {
		return nil, initialCursor, false
	}

	for cursor < uint(len(tokens)) {
		current := tokens[cursor]
		bp := current.bindingPower()
		if bp == 0 || bp < minBp {
			break
		}

		op := *current
		b, newCursor, ok := p.parseExpression(tokens, cursor+1, bp+1)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected expression after operator")
			return nil, initialCursor, false
		}
		cursor = newCursor

		exp = &expression{
			binary: &binaryExpression{a: *exp, b: *b, op: op},
			kind:   binaryKind,
		}
	}

	return exp, cursor, true
}

// ident [, ident ...]
func parseIdentifierList(tokens []*token, initialCursor uint) ([]string, uint, bool) {
	cursor := initialCursor

	var names []string
	for {
		if len(names) > 0 {
			if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
				break
			}
			cursor++
		}

		id, newCursor, ok := parseToken(tokens, cursor, identifierKind)
		if !ok {
			return nil, initialCursor, false
		}
		cursor = newCursor

		names = append(names, id.value)
	}

	return names, cursor, true
}

// BOOLEAN | SMALLINT | INT | BIGINT | REAL | DOUBLE PRECISION | TEXT |
// TIMESTAMP | NUMERIC[(precision, scale)]
func (p Parser) parseTypeName(tokens []*token, initialCursor uint) (Type, uint, bool) {
	cursor := initialCursor
	if cursor >= uint(len(tokens)) {
		return Type{}, initialCursor, false
	}

	current := tokens[cursor]
	if current.kind != keywordKind {
		return Type{}, initialCursor, false
	}
	cursor++

	switch keyword(current.value) {
	case booleanKeyword:
		return Type{Kind: BoolKind}, cursor, true
	case smallintKeyword, intKeyword, bigintKeyword:
		return Type{Kind: IntKind}, cursor, true
	case realKeyword, doublePrecisionKeyword:
		return Type{Kind: FloatKind}, cursor, true
	case textKeyword:
		return Type{Kind: StringKind}, cursor, true
	case timestampKeyword:
		return Type{Kind: TimeKind}, cursor, true
	case numericKeyword:
		typ := Type{Kind: DecimalKind, Scale: -1}
		if !expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
			return typ, cursor, true
		}
		cursor++

		// precision, unused beyond validation
		if _, newCursor, ok := parseToken(tokens, cursor, numericKind); !ok {
			p.helpMessage(tokens, cursor, "Expected numeric precision")
			return Type{}, initialCursor, false
		} else {
			cursor = newCursor
		}

		if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
			p.helpMessage(tokens, cursor, "Expected comma")
			return Type{}, initialCursor, false
		}
		cursor++

		scale, newCursor, ok := parseToken(tokens, cursor, numericKind)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected numeric scale")
			return Type{}, initialCursor, false
		}
		cursor = newCursor

		s, err := strconv.ParseInt(scale.value, 10, 32)
		if err != nil {
			return Type{}, initialCursor, false
		}
		typ.Scale = int32(s)

		if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected right paren")
			return Type{}, initialCursor, false
		}
		return typ, cursor + 1, true
	}

	return Type{}, initialCursor, false
}

// SELECT * | ident [, ...] FROM ident [WHERE expression]
// [ORDER BY ident [ASC|DESC]] [LIMIT numeric]
func (p Parser) parseSelectStatement(tokens []*token, initialCursor uint) (*SelectStatement, uint, bool) {
	cursor := initialCursor
	if !expectToken(tokens, cursor, tokenFromKeyword(selectKeyword)) {
		return nil, initialCursor, false
	}
	cursor++

	slct := SelectStatement{}

	for {
		if len(slct.items) > 0 {
			if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
				break
			}
			cursor++
		}

		if expectToken(tokens, cursor, tokenFromSymbol(asteriskSymbol)) {
			slct.items = append(slct.items, selectItem{asterisk: true})
			cursor++
			continue
		}

		id, newCursor, ok := parseToken(tokens, cursor, identifierKind)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected select item")
			return nil, initialCursor, false
		}
		cursor = newCursor
		slct.items = append(slct.items, selectItem{column: id.value})
	}

	if !expectToken(tokens, cursor, tokenFromKeyword(fromKeyword)) {
		p.helpMessage(tokens, cursor, "Expected FROM")
		return nil, initialCursor, false
	}
	cursor++

	table, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		p.helpMessage(tokens, cursor, "Expected table name")
		return nil, initialCursor, false
	}
	cursor = newCursor
	slct.table = table.value

	if expectToken(tokens, cursor, tokenFromKeyword(whereKeyword)) {
		where, newCursor, ok := p.parseExpression(tokens, cursor+1, 0)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected WHERE expression")
			return nil, initialCursor, false
		}
		cursor = newCursor
		slct.where = where
	}

	if expectToken(tokens, cursor, tokenFromKeyword(orderByKeyword)) {
		col, newCursor, ok := parseToken(tokens, cursor+1, identifierKind)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected ORDER BY column")
			return nil, initialCursor, false
		}
		cursor = newCursor

		ob := orderByClause{column: col.value}
		if expectToken(tokens, cursor, tokenFromKeyword(ascKeyword)) {
			cursor++
		} else if expectToken(tokens, cursor, tokenFromKeyword(descKeyword)) {
			ob.desc = true
			cursor++
		}
		slct.orderBy = &ob
	}

	if expectToken(tokens, cursor, tokenFromKeyword(limitKeyword)) {
		num, newCursor, ok := parseToken(tokens, cursor+1, numericKind)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected LIMIT count")
			return nil, initialCursor, false
		}
		cursor = newCursor

		n, err := strconv.ParseInt(num.value, 10, 64)
		if err != nil {
			return nil, initialCursor, false
		}
		slct.limit = &n
	}

	return &slct, cursor, true
}

// DELETE FROM ident [WHERE expression] [RETURNING ident [, ...]]
func (p Parser) parseDeleteStatement(tokens []*token, initialCursor uint) (*DeleteStatement, uint, bool) {
	cursor := initialCursor
	if !expectToken(tokens, cursor, tokenFromKeyword(deleteKeyword)) {
		return nil, initialCursor, false
	}
	cursor++

	if !expectToken(tokens, cursor, tokenFromKeyword(fromKeyword)) {
		p.helpMessage(tokens, cursor, "Expected FROM")
		return nil, initialCursor, false
	}
	cursor++

	table, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		p.helpMessage(tokens, cursor, "Expected table name")
		return nil, initialCursor, false
	}
	cursor = newCursor

	del := DeleteStatement{table: table.value}

	if expectToken(tokens, cursor, tokenFromKeyword(whereKeyword)) {
		where, newCursor, ok := p.parseExpression(tokens, cursor+1, 0)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected WHERE expression")
			return nil, initialCursor, false
		}
		cursor = newCursor
		del.where = where
	}

	if expectToken(tokens, cursor, tokenFromKeyword(returningKeyword)) {
		names, newCursor, ok := parseIdentifierList(tokens, cursor+1)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected RETURNING columns")
			return nil, initialCursor, false
		}
		cursor = newCursor
		del.returning = names
	}

	return &del, cursor, true
}

// INSERT INTO ident (ident [, ...])
// VALUES (expression [, ...]) [, ...] |
// SELECT * FROM UNNEST($n::type[] [, ...])
// [ON CONFLICT [(ident [, ...])] DO NOTHING |
//  ON CONFLICT (ident [, ...]) DO UPDATE SET ident = expression [, ...]
//  [WHERE expression]]
// [RETURNING ident [, ...]]
func (p Parser) parseInsertStatement(tokens []*token, initialCursor uint) (*InsertStatement, uint, bool) {
	cursor := initialCursor
	if !expectToken(tokens, cursor, tokenFromKeyword(insertKeyword)) {
		return nil, initialCursor, false
	}
	cursor++

	if !expectToken(tokens, cursor, tokenFromKeyword(intoKeyword)) {
		p.helpMessage(tokens, cursor, "Expected INTO")
		return nil, initialCursor, false
	}
	cursor++

	table, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		p.helpMessage(tokens, cursor, "Expected table name")
		return nil, initialCursor, false
	}
	cursor = newCursor

	inst := InsertStatement{table: table.value}

	if expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
		cols, newCursor, ok := parseIdentifierList(tokens, cursor+1)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected column names")
			return nil, initialCursor, false
		}
		cursor = newCursor

		if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected right paren")
			return nil, initialCursor, false
		}
		cursor++
		inst.cols = cols
	}

	switch {
	case expectToken(tokens, cursor, tokenFromKeyword(valuesKeyword)):
		cursor++
		for {
			if len(inst.values) > 0 {
				if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
					break
				}
				cursor++
			}

			if !expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
				p.helpMessage(tokens, cursor, "Expected left paren")
				return nil, initialCursor, false
			}
			cursor++

			var row []expression
			for {
				if len(row) > 0 {
					if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
						break
					}
					cursor++
				}

				exp, newCursor, ok := p.parseExpression(tokens, cursor, 0)
				if !ok {
					p.helpMessage(tokens, cursor, "Expected expression")
					return nil, initialCursor, false
				}
				cursor = newCursor
				row = append(row, *exp)
			}

			if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
				p.helpMessage(tokens, cursor, "Expected right paren")
				return nil, initialCursor, false
			}
			cursor++
			inst.values = append(inst.values, row)
		}

	case expectToken(tokens, cursor, tokenFromKeyword(selectKeyword)):
		cursor++
		if !expectToken(tokens, cursor, tokenFromSymbol(asteriskSymbol)) {
			p.helpMessage(tokens, cursor, "Expected asterisk")
			return nil, initialCursor, false
		}
		cursor++
		if !expectToken(tokens, cursor, tokenFromKeyword(fromKeyword)) {
			p.helpMessage(tokens, cursor, "Expected FROM")
			return nil, initialCursor, false
		}
		cursor++
		if !expectToken(tokens, cursor, tokenFromKeyword(unnestKeyword)) {
			p.helpMessage(tokens, cursor, "Expected UNNEST")
			return nil, initialCursor, false
		}
		cursor++
		if !expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected left paren")
			return nil, initialCursor, false
		}
		cursor++

		for {
			if len(inst.unnest) > 0 {
				if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
					break
				}
				cursor++
			}

			param, newCursor, ok := parseToken(tokens, cursor, parameterKind)
			if !ok {
				p.helpMessage(tokens, cursor, "Expected parameter")
				return nil, initialCursor, false
			}
			cursor = newCursor

			if !expectToken(tokens, cursor, tokenFromSymbol(castSymbol)) {
				p.helpMessage(tokens, cursor, "Expected cast")
				return nil, initialCursor, false
			}
			cursor++

			typ, newCursor, ok := p.parseTypeName(tokens, cursor)
			if !ok {
				p.helpMessage(tokens, cursor, "Expected array element type")
				return nil, initialCursor, false
			}
			cursor = newCursor

			if !expectToken(tokens, cursor, tokenFromSymbol(leftBracketSymbol)) ||
				!expectToken(tokens, cursor+1, tokenFromSymbol(rightBracketSymbol)) {
				p.helpMessage(tokens, cursor, "Expected array brackets")
				return nil, initialCursor, false
			}
			cursor += 2

			index, err := strconv.Atoi(param.value)
			if err != nil {
				return nil, initialCursor, false
			}
			inst.unnest = append(inst.unnest, unnestParam{param: index, typ: typ})
		}

		if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
			p.helpMessage(tokens, cursor, "Expected right paren")
			return nil, initialCursor, false
		}
		cursor++

	default:
		p.helpMessage(tokens, cursor, "Expected VALUES or UNNEST select")
		return nil, initialCursor, false
	}

	if expectToken(tokens, cursor, tokenFromKeyword(onConflictKeyword)) {
		cursor++
		conflict := conflictClause{}

		if expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
			keys, newCursor, ok := parseIdentifierList(tokens, cursor+1)
			if !ok {
				p.helpMessage(tokens, cursor+1, "Expected conflict target columns")
				return nil, initialCursor, false
			}
			cursor = newCursor

			if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
				p.helpMessage(tokens, cursor, "Expected right paren")
				return nil, initialCursor, false
			}
			cursor++
			conflict.keyCols = keys
		}

		switch {
		case expectToken(tokens, cursor, tokenFromKeyword(doNothingKeyword)):
			cursor++

		case expectToken(tokens, cursor, tokenFromKeyword(doUpdateSetKeyword)):
			cursor++
			conflict.doUpdate = true

			for {
				if len(conflict.assignments) > 0 {
					if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
						break
					}
					cursor++
				}

				col, newCursor, ok := parseToken(tokens, cursor, identifierKind)
				if !ok {
					p.helpMessage(tokens, cursor, "Expected assignment column")
					return nil, initialCursor, false
				}
				cursor = newCursor

				if !expectToken(tokens, cursor, tokenFromSymbol(eqSymbol)) {
					p.helpMessage(tokens, cursor, "Expected equals")
					return nil, initialCursor, false
				}
				cursor++

				exp, newCursor, ok := p.parseExpression(tokens, cursor, 0)
				if !ok {
					p.helpMessage(tokens, cursor, "Expected assignment value")
					return nil, initialCursor, false
				}
				cursor = newCursor

				conflict.assignments = append(conflict.assignments, assignment{column: col.value, value: *exp})
			}

			if expectToken(tokens, cursor, tokenFromKeyword(whereKeyword)) {
				where, newCursor, ok := p.parseExpression(tokens, cursor+1, 0)
				if !ok {
					p.helpMessage(tokens, cursor+1, "Expected guard expression")
					return nil, initialCursor, false
				}
				cursor = newCursor
				conflict.where = where
			}

		default:
			p.helpMessage(tokens, cursor, "Expected DO NOTHING or DO UPDATE SET")
			return nil, initialCursor, false
		}

		inst.conflict = &conflict
	}

	if expectToken(tokens, cursor, tokenFromKeyword(returningKeyword)) {
		names, newCursor, ok := parseIdentifierList(tokens, cursor+1)
		if !ok {
			p.helpMessage(tokens, cursor+1, "Expected RETURNING columns")
			return nil, initialCursor, false
		}
		cursor = newCursor
		inst.returning = names
	}

	return &inst, cursor, true
}

// CREATE TABLE ident (ident type [PRIMARY KEY] [, ...])
func (p Parser) parseCreateTableStatement(tokens []*token, initialCursor uint) (*CreateTableStatement, uint, bool) {
	cursor := initialCursor
	if !expectToken(tokens, cursor, tokenFromKeyword(createKeyword)) {
		return nil, initialCursor, false
	}
	cursor++

	if !expectToken(tokens, cursor, tokenFromKeyword(tableKeyword)) {
		return nil, initialCursor, false
	}
	cursor++

	name, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		p.helpMessage(tokens, cursor, "Expected table name")
		return nil, initialCursor, false
	}
	cursor = newCursor

	if !expectToken(tokens, cursor, tokenFromSymbol(leftParenSymbol)) {
		p.helpMessage(tokens, cursor, "Expected left parenthesis")
		return nil, initialCursor, false
	}
	cursor++

	crt := CreateTableStatement{name: name.value}
	for {
		if len(crt.cols) > 0 {
			if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
				break
			}
			cursor++
		}

		id, newCursor, ok := parseToken(tokens, cursor, identifierKind)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected column name")
			return nil, initialCursor, false
		}
		cursor = newCursor

		typ, newCursor, ok := p.parseTypeName(tokens, cursor)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected column type")
			return nil, initialCursor, false
		}
		cursor = newCursor

		def := columnDefinition{name: id.value, typ: typ}
		if expectToken(tokens, cursor, tokenFromKeyword(primarykeyKeyword)) {
			def.primaryKey = true
			cursor++
		}

		crt.cols = append(crt.cols, def)
	}

	if !expectToken(tokens, cursor, tokenFromSymbol(rightParenSymbol)) {
		p.helpMessage(tokens, cursor, "Expected right parenthesis")
		return nil, initialCursor, false
	}
	cursor++

	return &crt, cursor, true
}

func (p Parser) parseStatement(tokens []*token, initialCursor uint) (*Statement, uint, bool) {
	cursor := initialCursor

	slct, newCursor, ok := p.parseSelectStatement(tokens, cursor)
	if ok {
		return &Statement{
			Kind:            SelectKind,
			SelectStatement: slct,
		}, newCursor, true
	}

	inst, newCursor, ok := p.parseInsertStatement(tokens, cursor)
	if ok {
		return &Statement{
			Kind:            InsertKind,
			InsertStatement: inst,
		}, newCursor, true
	}

	del, newCursor, ok := p.parseDeleteStatement(tokens, cursor)
	if ok {
		return &Statement{
			Kind:            DeleteKind,
			DeleteStatement: del,
		}, newCursor, true
	}

	crtTbl, newCursor, ok := p.parseCreateTableStatement(tokens, cursor)
	if ok {
		return &Statement{
			Kind:                 CreateTableKind,
			CreateTableStatement: crtTbl,
		}, newCursor, true
	}

	return nil, initialCursor, false
}

// Parse lexes and parses a source string holding one or more statements
// separated by semicolons.
func (p Parser) Parse(source string) (*Ast, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	a := Ast{}
	cursor := uint(0)
	for cursor < uint(len(tokens)) {
		stmt, newCursor, ok := p.parseStatement(tokens, cursor)
		if !ok {
			p.helpMessage(tokens, cursor, "Expected statement")
			return nil, errors.New("Failed to parse, expected statement")
		}
		cursor = newCursor

		a.Statements = append(a.Statements, stmt)

		atLeastOneSemicolon := false
		for expectToken(tokens, cursor, tokenFromSymbol(semicolonSymbol)) {
			cursor++
			atLeastOneSemicolon = true
		}

		if cursor < uint(len(tokens)) && !atLeastOneSemicolon {
			p.helpMessage(tokens, cursor, "Expected semi-colon delimiter between statements")
			return nil, errors.New("Missing semi-colon between statements")
		}
	}

	if len(a.Statements) == 0 {
		return nil, errors.New("Failed to parse, no statements")
	}

	return &a, nil
}
