package token_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"

	"github.com/lukeod/lscl/internal/token"
)

func TestKindStringKnown(t *testing.T) {
	assert.Equal(t, "if", token.KindString(token.If))
	assert.Equal(t, "SELECTOR_ELEMENT", token.KindString(token.SelectorElement))
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown(9999)", token.KindString(token.Kind(9999)))
}

func TestKeywordsPromoteBarewords(t *testing.T) {
	for word, kind := range token.Keywords {
		assert.Equal(t, kind, token.Keywords[word])
	}
	assert.Len(t, token.Keywords, 8)
}

func TestTokenIs(t *testing.T) {
	tok := token.Token{Kind: token.Bareword, Value: "host", Pos: lexer.Position{Line: 1, Column: 1}}
	assert.True(t, tok.Is(token.Bareword))
	assert.False(t, tok.Is(token.Number))
}

func TestTokenStringTruncatesLongValues(t *testing.T) {
	tok := token.Token{Kind: token.DQuot, Value: "this value is definitely over twenty characters long", Pos: lexer.Position{Line: 1, Column: 1}}
	assert.Contains(t, tok.String(), "...")
}
