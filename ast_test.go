package lscl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lukeod/lscl"
)

func TestMappingSetPreservesInsertionOrderAndLastWins(t *testing.T) {
	m := lscl.NewMapping()
	m.Set("a", lscl.Int(1))
	m.Set("b", lscl.Int(2))
	m.Set("a", lscl.Int(3))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, lscl.Int(3), v)
	assert.Equal(t, 2, m.Len())
}

func TestMappingGetMissing(t *testing.T) {
	m := lscl.NewMapping()
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestConditionsDefaultNilVsEmptyDistinction(t *testing.T) {
	noDefault := lscl.Conditions{Branches: []lscl.Branch{{Condition: lscl.Int(1), Body: nil}}}
	assert.Nil(t, noDefault.Default)

	empty := []lscl.Node{}
	withEmptyDefault := lscl.Conditions{
		Branches: []lscl.Branch{{Condition: lscl.Int(1), Body: nil}},
		Default:  &empty,
	}
	assert.NotNil(t, withEmptyDefault.Default)
	assert.Empty(t, *withEmptyDefault.Default)
}

func TestRValueTypesAreAlsoConditions(t *testing.T) {
	var _ lscl.Condition = lscl.Int(1)
	var _ lscl.Condition = lscl.Decimal("1.5")
	var _ lscl.Condition = lscl.Str("x")
	var _ lscl.Condition = lscl.List{lscl.Int(1)}
	var _ lscl.Condition = lscl.Selector{Names: []string{"a"}}
	var _ lscl.Condition = lscl.MethodCall{Name: "f"}
	var _ lscl.Condition = &lscl.Pattern{Source: "a"}
}
