package lscl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukeod/lscl"
)

func TestRenderNestedMapping(t *testing.T) {
	// S4
	m := lscl.NewMapping()
	m.Set("hello.world", lscl.Int(42))
	out, err := lscl.Render([]lscl.Node{lscl.Attribute{Name: "hello", Value: m}})
	require.NoError(t, err)
	assert.Equal(t, "hello => {\n  \"hello.world\" => 42\n}\n", out)
}

func TestRenderSelectorPercentEscaping(t *testing.T) {
	// S5
	sel := lscl.Selector{Names: []string{"[%%01%]", "hello, world"}}
	out, err := lscl.Render(sel, lscl.WithFieldReferenceEscapeStyle(lscl.EscapePercent))
	require.NoError(t, err)
	assert.Equal(t, "[%5B%%2501%%5D][hello%2C world]", out)
}

func TestRenderConditionsWithEmptyDefault(t *testing.T) {
	// S6
	empty := []lscl.Node{}
	node := lscl.Conditions{
		Branches: []lscl.Branch{{Condition: lscl.Comparison{Op: lscl.CompareEq, First: lscl.Int(1), Second: lscl.Int(2)}}},
		Default:  &empty,
	}
	out, err := lscl.Render(node)
	require.NoError(t, err)
	assert.Equal(t, "if 1 == 2 {}\nelse {}\n", out)
}

func TestRenderConnectiveSingleChildCollapses(t *testing.T) {
	cond := lscl.Connective{Op: lscl.ConnectiveAnd, Conditions: []lscl.Condition{lscl.Int(1)}}
	out, err := lscl.Render(cond)
	require.NoError(t, err)
	assert.Equal(t, "1", out)
}

func TestRenderConnectiveWithNestedConnectiveParenthesizes(t *testing.T) {
	cond := lscl.Connective{
		Op: lscl.ConnectiveOr,
		Conditions: []lscl.Condition{
			lscl.Connective{Op: lscl.ConnectiveAnd, Conditions: []lscl.Condition{lscl.Int(1), lscl.Int(2)}},
			lscl.Int(3),
		},
	}
	out, err := lscl.Render(lscl.Not{Condition: cond})
	require.NoError(t, err)
	assert.Equal(t, "!((1 and 2) or 3)", out)
}

func TestRenderNotSelectorCollapsesBrackets(t *testing.T) {
	out, err := lscl.Render(lscl.Not{Condition: lscl.Selector{Names: []string{"a", "b"}}})
	require.NoError(t, err)
	assert.Equal(t, "![a][b]", out)
}

func TestRenderEmptyListAndMapping(t *testing.T) {
	out, err := lscl.Render(lscl.List{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	out, err = lscl.Render(lscl.NewMapping())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
}

func TestRenderBoolAsBareword(t *testing.T) {
	out, err := lscl.Render(lscl.Bool(true))
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestRenderLiteralPassthrough(t *testing.T) {
	out, err := lscl.Render(lscl.Literal("${ENV_VAR}"))
	require.NoError(t, err)
	assert.Equal(t, "${ENV_VAR}\n", out)
}

func TestRenderStringPrefersDoubleQuotesUnlessContainsDouble(t *testing.T) {
	out, err := lscl.Render(lscl.Str(`has "double"`))
	require.NoError(t, err)
	assert.Equal(t, "'has \"double\"'\n", out)
}

func TestRenderStringRejectsBothQuoteKindsByDefault(t *testing.T) {
	_, err := lscl.Render(lscl.Str(`both "double" and 'single'`))
	require.Error(t, err)
}

func TestRenderStringEscapesSupportedAllowsBothQuoteKinds(t *testing.T) {
	out, err := lscl.Render(lscl.Str(`both "double" and 'single'`), lscl.WithEscapesSupported(true))
	require.NoError(t, err)
	assert.Contains(t, out, `\"`)
}

func TestRenderBlockEmptyBody(t *testing.T) {
	out, err := lscl.Render(lscl.Block{Name: "stdin"})
	require.NoError(t, err)
	assert.Equal(t, "stdin {}\n", out)
}

func TestRenderRoundTrip(t *testing.T) {
	source := `filter {
  if [type] == "syslog" {
    grok {
      match => { "message" => "%{SYSLOGLINE}" }
    }
  } else {
    drop {}
  }
}
`
	nodes, err := lscl.Parse(source)
	require.NoError(t, err)

	rendered, err := lscl.Render(nodes)
	require.NoError(t, err)

	reparsed, err := lscl.Parse(rendered)
	require.NoError(t, err)

	assert.Equal(t, nodes, reparsed)
}

func TestRenderDataRoundTripsThroughParse(t *testing.T) {
	values := []lscl.Data{
		lscl.Int(42),
		lscl.Decimal("3.14"),
		lscl.Str("a bareword-ish string"),
		lscl.List{lscl.Int(1), lscl.Int(2)},
	}
	for _, v := range values {
		rendered, err := lscl.Render([]lscl.Node{lscl.Attribute{Name: "x", Value: v}})
		require.NoError(t, err)

		nodes, err := lscl.Parse(rendered)
		require.NoError(t, err)
		assert.Equal(t, v, nodes[0].(lscl.Attribute).Value)
	}
}
