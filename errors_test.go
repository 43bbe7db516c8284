package lscl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukeod/lscl"
)

func TestDecodePositionOnSyntaxError(t *testing.T) {
	_, err := lscl.Parse("hello => @@@")
	require.Error(t, err)

	line, column, offset, ok := lscl.DecodePosition(err)
	assert.True(t, ok)
	assert.Equal(t, 1, line)
	assert.Greater(t, column, 1)
	assert.Greater(t, offset, 0)
}

func TestDecodePositionOnNonLsclError(t *testing.T) {
	_, _, _, ok := lscl.DecodePosition(assertError{})
	assert.False(t, ok)
}

func TestTokenKindOnUnexpectedToken(t *testing.T) {
	_, err := lscl.Parse("host => =>")
	require.Error(t, err)
	kind, ok := lscl.TokenKind(err)
	assert.True(t, ok)
	assert.NotEmpty(t, kind)
}

func TestOffendingStringOnUnrenderableValue(t *testing.T) {
	raw := "bad\x00\"'value"
	_, err := lscl.Render(lscl.Str(raw))
	require.Error(t, err)
	s, ok := lscl.OffendingString(err)
	assert.True(t, ok)
	assert.Equal(t, raw, s)
}

func TestOffendingSelectorElementWhenEscapingDisabled(t *testing.T) {
	sel := lscl.Selector{Names: []string{"a,b"}}
	_, err := lscl.Render(sel)
	require.Error(t, err)
	segment, ok := lscl.OffendingSelectorElement(err)
	assert.True(t, ok)
	assert.Equal(t, "a,b", segment)
}

type assertError struct{}

func (assertError) Error() string { return "not an lscl error" }
