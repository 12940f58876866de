package pgframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexNumeric(t *testing.T) {
	tests := []struct {
		number bool
		value  string
	}{
		{number: true, value: "105"},
		{number: true, value: "105.456"},
		{number: true, value: "1e5"},
		{number: true, value: "1.5e-3"},
		{number: false, value: ".5"},
		{number: false, value: "e5"},
		{number: false, value: "ten"},
	}

	for _, test := range tests {
		tok, _, ok := lexNumeric(test.value, cursor{})
		assert.Equal(t, test.number, ok, test.value)
		if ok {
			assert.Equal(t, test.value, tok.value, test.value)
		}
	}
}

func TestLexParameter(t *testing.T) {
	tok, _, ok := lexParameter("$12", cursor{})
	require.True(t, ok)
	assert.Equal(t, "12", tok.value)
	assert.Equal(t, parameterKind, tok.kind)

	_, _, ok = lexParameter("$", cursor{})
	assert.False(t, ok)
}

func TestLexString(t *testing.T) {
	tok, _, ok := lexString("'it''s'", cursor{})
	require.True(t, ok)
	assert.Equal(t, "it's", tok.value)
	assert.Equal(t, stringKind, tok.kind)

	_, _, ok = lexString("'unterminated", cursor{})
	assert.False(t, ok)
}

func TestLex(t *testing.T) {
	type tk struct {
		value string
		kind  tokenKind
	}
	tests := []struct {
		source string
		tokens []tk
	}{
		{
			source: "SELECT id FROM item WHERE price >= 1.99 -- trailing",
			tokens: []tk{
				{"select", keywordKind},
				{"id", identifierKind},
				{"from", keywordKind},
				{"item", identifierKind},
				{"where", keywordKind},
				{"price", identifierKind},
				{">=", symbolKind},
				{"1.99", numericKind},
			},
		},
		{
			// Compound keywords lex as one token
			source: `ON CONFLICT ("id") DO UPDATE SET`,
			tokens: []tk{
				{"on conflict", keywordKind},
				{"(", symbolKind},
				{"id", identifierKind},
				{")", symbolKind},
				{"do update set", keywordKind},
			},
		},
		{
			source: "$1::BIGINT[]",
			tokens: []tk{
				{"1", parameterKind},
				{"::", symbolKind},
				{"bigint", keywordKind},
				{"[", symbolKind},
				{"]", symbolKind},
			},
		},
		{
			// != is the same operator as <>
			source: "a != b /* block */ <> c",
			tokens: []tk{
				{"a", identifierKind},
				{"<>", symbolKind},
				{"b", identifierKind},
				{"<>", symbolKind},
				{"c", identifierKind},
			},
		},
		{
			// A keyword must not swallow an identifier prefix
			source: "SELECT intensity FROM readings",
			tokens: []tk{
				{"select", keywordKind},
				{"intensity", identifierKind},
				{"from", keywordKind},
				{"readings", identifierKind},
			},
		},
		{
			// Quoted identifiers keep their case
			source: `SELECT "Name" FROM "Item"`,
			tokens: []tk{
				{"select", keywordKind},
				{"Name", identifierKind},
				{"from", keywordKind},
				{"Item", identifierKind},
			},
		},
		{
			source: "true false null",
			tokens: []tk{
				{"true", boolKind},
				{"false", boolKind},
				{"null", nullKind},
			},
		},
	}

	for _, test := range tests {
		tokens, err := lex(test.source)
		require.NoError(t, err, test.source)
		require.Len(t, tokens, len(test.tokens), test.source)
		for i, expected := range test.tokens {
			assert.Equal(t, expected.value, tokens[i].value, test.source)
			assert.Equal(t, expected.kind, tokens[i].kind, test.source)
		}
	}
}

func TestLexError(t *testing.T) {
	_, err := lex("SELECT @")
	assert.Error(t, err)
}
