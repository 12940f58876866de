package pgframe

import (
	"fmt"
	"strings"
)

// location of the token in source code
type location struct {
	line uint
	col  uint
}

// for storing SQL reserved keywords
type keyword string

const (
	selectKeyword          keyword = "select"
	deleteKeyword          keyword = "delete"
	insertKeyword          keyword = "insert"
	createKeyword          keyword = "create"
	tableKeyword           keyword = "table"
	fromKeyword            keyword = "from"
	intoKeyword            keyword = "into"
	valuesKeyword          keyword = "values"
	whereKeyword           keyword = "where"
	andKeyword             keyword = "and"
	orKeyword              keyword = "or"
	anyKeyword             keyword = "any"
	orderByKeyword         keyword = "order by"
	limitKeyword           keyword = "limit"
	ascKeyword             keyword = "asc"
	descKeyword            keyword = "desc"
	returningKeyword       keyword = "returning"
	unnestKeyword          keyword = "unnest"
	onConflictKeyword      keyword = "on conflict"
	doNothingKeyword       keyword = "do nothing"
	doUpdateSetKeyword     keyword = "do update set"
	excludedKeyword        keyword = "excluded"
	primarykeyKeyword      keyword = "primary key"
	trueKeyword            keyword = "true"
	falseKeyword           keyword = "false"
	nullKeyword            keyword = "null"
	booleanKeyword         keyword = "boolean"
	smallintKeyword        keyword = "smallint"
	intKeyword             keyword = "int"
	bigintKeyword          keyword = "bigint"
	realKeyword            keyword = "real"
	doublePrecisionKeyword keyword = "double precision"
	textKeyword            keyword = "text"
	numericKeyword         keyword = "numeric"
	timestampKeyword       keyword = "timestamp"
)

// for storing SQL syntax
type symbol string

const (
	semicolonSymbol    symbol = ";"
	asteriskSymbol     symbol = "*"
	commaSymbol        symbol = ","
	leftParenSymbol    symbol = "("
	rightParenSymbol   symbol = ")"
	leftBracketSymbol  symbol = "["
	rightBracketSymbol symbol = "]"
	eqSymbol           symbol = "="
	neqSymbol          symbol = "<>"
	neqSymbol2         symbol = "!="
	ltSymbol           symbol = "<"
	lteSymbol          symbol = "<="
	gtSymbol           symbol = ">"
	gteSymbol          symbol = ">="
	castSymbol         symbol = "::"
	dotSymbol          symbol = "."
)

type tokenKind uint

const (
	keywordKind tokenKind = iota
	symbolKind
	identifierKind
	stringKind
	numericKind
	boolKind
	nullKind
	parameterKind
)

type token struct {
	value string
	kind  tokenKind
	loc   location
}

func (t token) bindingPower() uint {
	switch t.kind {
	case keywordKind:
		switch keyword(t.value) {
		case andKeyword:
			fallthrough
		case orKeyword:
			return 1
		}
	case symbolKind:
		switch symbol(t.value) {
		case eqSymbol:
			fallthrough
		case neqSymbol:
			return 2

		case ltSymbol:
			fallthrough
		case gtSymbol:
			return 3

		case lteSymbol:
			fallthrough
		case gteSymbol:
			return 4
		}
	}

	return 0
}

func (t *token) equals(other *token) bool {
	return t.value == other.value && t.kind == other.kind
}

// cursor indicates the current position of the lexer
type cursor struct {
	pointer uint
	loc     location
}

// longestMatch iterates through a source string starting at the given
// cursor to find the longest matching substring among the provided
// options
func longestMatch(source string, ic cursor, options []string) string {
	var value []byte
	var skipList []int
	var match string

	cur := ic

	for cur.pointer < uint(len(source)) {

		value = append(value, strings.ToLower(string(source[cur.pointer]))...)
		cur.pointer++

	match:
		for i, option := range options {
			for _, skip := range skipList {
				if i == skip {
					continue match
				}
			}

			// Deal with cases like INT vs INTO
			if option == string(value) {
				skipList = append(skipList, i)
				if len(option) > len(match) {
					match = option
				}

				continue
			}

			sharesPrefix := string(value) == option[:cur.pointer-ic.pointer]
			tooLong := len(value) > len(option)
			if tooLong || !sharesPrefix {
				skipList = append(skipList, i)
			}
		}

		if len(skipList) == len(options) {
			break
		}
	}

	return match
}

func lexComment(source string, ic cursor) (*token, cursor, bool) {
	cur := ic

	if strings.HasPrefix(source[cur.pointer:], "--") {
		for cur.pointer < uint(len(source)) && source[cur.pointer] != '\n' {
			cur.pointer++
			cur.loc.col++
		}
		return nil, cur, true
	}

	if strings.HasPrefix(source[cur.pointer:], "/*") {
		end := strings.Index(source[cur.pointer:], "*/")
		if end == -1 {
			return nil, ic, false
		}
		cur.pointer += uint(end) + 2
		cur.loc.col += uint(end) + 2
		return nil, cur, true
	}

	return nil, ic, false
}

func lexSymbol(source string, ic cursor) (*token, cursor, bool) {
	c := source[ic.pointer]
	cur := ic
	// Will get overwritten later if not an ignored syntax
	cur.pointer++
	cur.loc.col++

	switch c {
	// Syntax that should be thrown away
	case '\n':
		cur.loc.line++
		cur.loc.col = 0
		fallthrough
	case '\t':
		fallthrough
	case '\r':
		fallthrough
	case ' ':
		return nil, cur, true
	}

	// Syntax that should be kept
	symbols := []symbol{
		castSymbol,
		eqSymbol,
		neqSymbol,
		neqSymbol2,
		ltSymbol,
		lteSymbol,
		gtSymbol,
		gteSymbol,
		commaSymbol,
		leftParenSymbol,
		rightParenSymbol,
		leftBracketSymbol,
		rightBracketSymbol,
		semicolonSymbol,
		asteriskSymbol,
		dotSymbol,
	}

	var options []string
	for _, s := range symbols {
		options = append(options, string(s))
	}

	// Use `ic`, not `cur`
	match := longestMatch(source, ic, options)
	// Unknown character
	if match == "" {
		return nil, ic, false
	}

	cur.pointer = ic.pointer + uint(len(match))
	cur.loc.col = ic.loc.col + uint(len(match))

	// != is rewritten as <>: https://www.postgresql.org/docs/9.5/functions-comparison.html
	if match == string(neqSymbol2) {
		match = string(neqSymbol)
	}

	return &token{
		value: match,
		loc:   ic.loc,
		kind:  symbolKind,
	}, cur, true
}

func lexKeyword(source string, ic cursor) (*token, cursor, bool) {
	cur := ic
	keywords := []keyword{
		selectKeyword,
		deleteKeyword,
		insertKeyword,
		createKeyword,
		tableKeyword,
		fromKeyword,
		intoKeyword,
		valuesKeyword,
		whereKeyword,
		andKeyword,
		orKeyword,
		anyKeyword,
		orderByKeyword,
		limitKeyword,
		ascKeyword,
		descKeyword,
		returningKeyword,
		unnestKeyword,
		onConflictKeyword,
		doNothingKeyword,
		doUpdateSetKeyword,
		excludedKeyword,
		primarykeyKeyword,
		trueKeyword,
		falseKeyword,
		nullKeyword,
		booleanKeyword,
		smallintKeyword,
		intKeyword,
		bigintKeyword,
		realKeyword,
		doublePrecisionKeyword,
		textKeyword,
		numericKeyword,
		timestampKeyword,
	}

	var options []string
	for _, k := range keywords {
		options = append(options, string(k))
	}

	match := longestMatch(source, ic, options)
	if match == "" {
		return nil, ic, false
	}

	// A keyword must not run into the middle of an identifier, e.g. the
	// "int" in "intensity".
	end := ic.pointer + uint(len(match))
	if end < uint(len(source)) && isIdentChar(source[end]) {
		return nil, ic, false
	}

	cur.pointer = end
	cur.loc.col = ic.loc.col + uint(len(match))

	kind := keywordKind
	if match == string(trueKeyword) || match == string(falseKeyword) {
		kind = boolKind
	}

	if match == string(nullKeyword) {
		kind = nullKind
	}

	return &token{
		value: match,
		kind:  kind,
		loc:   ic.loc,
	}, cur, true
}

func lexNumeric(source string, ic cursor) (*token, cursor, bool) {
	cur := ic

	periodFound := false
	expMarkerFound := false

	for ; cur.pointer < uint(len(source)); cur.pointer++ {
		c := source[cur.pointer]
		cur.loc.col++

		isDigit := c >= '0' && c <= '9'
		isPeriod := c == '.'
		isExpMarker := c == 'e'

		// Must start with a digit
		if cur.pointer == ic.pointer {
			if !isDigit {
				return nil, ic, false
			}
			continue
		}

		if isPeriod {
			if periodFound {
				return nil, ic, false
			}

			periodFound = true
			continue
		}

		if isExpMarker {
			if expMarkerFound {
				return nil, ic, false
			}

			// No periods allowed after expMarker
			periodFound = true
			expMarkerFound = true

			// expMarker must be followed by digits
			if cur.pointer == uint(len(source)-1) {
				return nil, ic, false
			}

			cNext := source[cur.pointer+1]
			if cNext == '-' || cNext == '+' {
				cur.pointer++
				cur.loc.col++
			}
			continue
		}

		if !isDigit {
			break
		}
	}

	// No characters accumulated
	if cur.pointer == ic.pointer {
		return nil, ic, false
	}

	return &token{
		value: source[ic.pointer:cur.pointer],
		loc:   ic.loc,
		kind:  numericKind,
	}, cur, true
}

// lexParameter lexes a positional parameter like $1.
func lexParameter(source string, ic cursor) (*token, cursor, bool) {
	cur := ic

	if source[cur.pointer] != '$' {
		return nil, ic, false
	}
	cur.pointer++
	cur.loc.col++

	start := cur.pointer
	for cur.pointer < uint(len(source)) && source[cur.pointer] >= '0' && source[cur.pointer] <= '9' {
		cur.pointer++
		cur.loc.col++
	}

	if cur.pointer == start {
		return nil, ic, false
	}

	return &token{
		value: source[start:cur.pointer],
		loc:   ic.loc,
		kind:  parameterKind,
	}, cur, true
}

// lexCharacterDelimited looks through a source string starting at the
// given cursor to find a start- and end- delimiter. The delimiter can
// be escaped be preceeding the delimiter with itself.
func lexCharacterDelimited(source string, ic cursor, delimiter byte) (*token, cursor, bool) {
	cur := ic

	if len(source[cur.pointer:]) == 0 {
		return nil, ic, false
	}

	if source[cur.pointer] != delimiter {
		return nil, ic, false
	}

	cur.loc.col++
	cur.pointer++

	var value []byte
	for ; cur.pointer < uint(len(source)); cur.pointer++ {
		c := source[cur.pointer]

		if c == delimiter {
			// SQL escapes are via double characters, not backslash.
			if cur.pointer+1 >= uint(len(source)) || source[cur.pointer+1] != delimiter {
				cur.pointer++
				cur.loc.col++
				return &token{
					value: string(value),
					loc:   ic.loc,
					kind:  stringKind,
				}, cur, true
			}
			value = append(value, delimiter)
			cur.pointer++
			cur.loc.col++
		}

		value = append(value, c)
		cur.loc.col++
	}

	return nil, ic, false
}

func lexIdentifier(source string, ic cursor) (*token, cursor, bool) {
	// Handle separately if is a double-quoted identifier
	if token, newCursor, ok := lexCharacterDelimited(source, ic, '"'); ok {
		token.kind = identifierKind
		return token, newCursor, true
	}

	cur := ic

	c := source[cur.pointer]
	if !isIdentStart(c) {
		return nil, ic, false
	}
	cur.pointer++
	cur.loc.col++

	value := []byte{c}
	for ; cur.pointer < uint(len(source)); cur.pointer++ {
		c = source[cur.pointer]

		if isIdentChar(c) {
			value = append(value, c)
			cur.loc.col++
			continue
		}

		break
	}

	return &token{
		// Unquoted identifiers are case-insensitive
		value: strings.ToLower(string(value)),
		loc:   ic.loc,
		kind:  identifierKind,
	}, cur, true
}

func lexString(source string, ic cursor) (*token, cursor, bool) {
	return lexCharacterDelimited(source, ic, '\'')
}

type lexerFn func(string, cursor) (*token, cursor, bool)

// lex splits an input string into a list of tokens. This process
// can be divided into following tasks:
//
// 1. Instantiating a cursor with pointing to the start of the string
//
// 2. Execute all the lexers in series.
//
// 3. If any of the lexer generate a token then add the token to the
// token slice, update the cursor and restart the process from the new
// cursor location.
func lex(source string) ([]*token, error) {
	var tokens []*token
	cur := cursor{}

lex:
	for cur.pointer < uint(len(source)) {
		lexers := []lexerFn{lexComment, lexKeyword, lexSymbol, lexString, lexNumeric, lexParameter, lexIdentifier}
		for _, l := range lexers {
			if token, newCursor, ok := l(source, cur); ok {
				cur = newCursor

				// Omit nil tokens for valid, but empty syntax like newlines
				if token != nil {
					tokens = append(tokens, token)
				}

				continue lex
			}
		}

		hint := ""
		if len(tokens) > 0 {
			hint = " after " + tokens[len(tokens)-1].value
		}
		return nil, fmt.Errorf("Unable to lex token%s, at %d:%d", hint, cur.loc.line, cur.loc.col)
	}

	return tokens, nil
}
