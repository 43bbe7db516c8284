package lscl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lukeod/lscl/internal/lexer"
	"github.com/lukeod/lscl/internal/token"
)

// Option configures Parse.
type Option func(*parseOptions)

type parseOptions struct {
	trailingCommas bool
}

// WithTrailingCommas allows a trailing comma before the closing bracket of a
// list, or before the closing parenthesis of a method call's argument list.
// Disabled by default, matching the reference grammar.
func WithTrailingCommas(accept bool) Option {
	return func(o *parseOptions) { o.trailingCommas = accept }
}

// tokenStream wraps a Lexer with a one-token pushback buffer, so a parsing
// function can look at a token, decide it belongs to an inner production,
// and hand it back for that production to consume first.
type tokenStream struct {
	lx       *lexer.Lexer
	buffered *token.Token
}

func newTokenStream(lx *lexer.Lexer) *tokenStream {
	return &tokenStream{lx: lx}
}

func (ts *tokenStream) Next() (token.Token, error) {
	if ts.buffered != nil {
		tok := *ts.buffered
		ts.buffered = nil
		return tok, nil
	}
	return ts.lx.Next()
}

func (ts *tokenStream) Peek() (token.Token, error) {
	if ts.buffered != nil {
		return *ts.buffered, nil
	}
	tok, err := ts.lx.Next()
	if err != nil {
		return token.Token{}, err
	}
	ts.buffered = &tok
	return tok, nil
}

func (ts *tokenStream) Pushback(tok token.Token) {
	ts.buffered = &tok
}

// Parse decodes LSCL source text into a sequence of top-level Nodes.
func Parse(source string, opts ...Option) ([]Node, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	ts := newTokenStream(lexer.New(source))
	nodes, _, err := parseContent(ts, o, token.End)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func isStringToken(k token.Kind) bool {
	switch k {
	case token.SelectorElement, token.DQuot, token.SQuot, token.Pattern, token.Bareword, token.DigitBareword:
		return true
	}
	return false
}

func numericData(raw string) Data {
	if strings.Contains(raw, ".") {
		return Decimal(raw)
	}
	n, _ := strconv.ParseInt(raw, 10, 64)
	return Int(n)
}

func numericRValue(raw string) RValue {
	return numericData(raw).(RValue)
}

// parseData parses a single Data value. The leading token has not yet been
// consumed.
func parseData(ts *tokenStream, opts parseOptions) (Data, error) {
	tok, err := ts.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case token.Bareword, token.SQuot, token.DQuot:
		return Str(tok.Value), nil
	case token.Number:
		return numericData(tok.Value), nil
	case token.SelectorElement:
		inner := newTokenStream(lexer.NewAt(tok.Value, tok.Pos.Line, tok.Pos.Column+1, tok.Pos.Offset+1))
		value, err := parseData(inner, opts)
		if err != nil {
			return nil, err
		}
		return List{value}, nil
	case token.LBracket:
		return parseDataList(ts, opts)
	case token.LBrace:
		return parseDataMapping(ts, opts)
	default:
		return nil, unexpectedTokenError(tok)
	}
}

func parseDataList(ts *tokenStream, opts parseOptions) (List, error) {
	lst := List{}
	seenOne := false
	for {
		tok, err := ts.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.RBracket {
			if seenOne && !opts.trailingCommas {
				return nil, decodeError(tok.Pos.Line, tok.Pos.Column, tok.Pos.Offset, "trailing commas have been disabled")
			}
			ts.Next()
			return lst, nil
		}
		value, err := parseData(ts, opts)
		if err != nil {
			return nil, err
		}
		lst = append(lst, value)
		seenOne = true

		sep, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if sep.Kind == token.RBracket {
			return lst, nil
		}
		if sep.Kind == token.Comma {
			continue
		}
		return nil, unexpectedTokenError(sep)
	}
}

func parseDataMapping(ts *tokenStream, opts parseOptions) (*Mapping, error) {
	m := NewMapping()
	for {
		tok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.RBrace {
			return m, nil
		}
		if !isStringToken(tok.Kind) {
			return nil, unexpectedTokenError(tok)
		}
		key := tok.Value

		arrow, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if arrow.Kind != token.FatArrow {
			return nil, unexpectedTokenError(arrow)
		}

		value, err := parseData(ts, opts)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
}

// parseRValue parses a single RValue. The leading token has not yet been
// consumed.
func parseRValue(ts *tokenStream, opts parseOptions) (RValue, error) {
	tok, err := ts.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case token.SQuot, token.DQuot:
		return Str(tok.Value), nil
	case token.Pattern:
		return compilePattern(tok.Value), nil
	case token.Number:
		return numericRValue(tok.Value), nil
	case token.SelectorElement:
		names := []string{tok.Value}
		for {
			peek, err := ts.Peek()
			if err != nil {
				return nil, err
			}
			if peek.Kind != token.SelectorElement {
				break
			}
			ts.Next()
			names = append(names, peek.Value)
		}
		return Selector{Names: names}, nil
	case token.LBracket:
		return parseDataList(ts, opts)
	case token.Bareword:
		lparen, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if lparen.Kind != token.LParen {
			return nil, unexpectedTokenError(lparen)
		}
		args, err := parseMethodArgs(ts, opts)
		if err != nil {
			return nil, err
		}
		return MethodCall{Name: tok.Value, Args: args}, nil
	default:
		return nil, unexpectedTokenError(tok)
	}
}

func parseMethodArgs(ts *tokenStream, opts parseOptions) ([]RValue, error) {
	var args []RValue
	seenOne := false
	for {
		tok, err := ts.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.RParen {
			if seenOne && !opts.trailingCommas {
				return nil, decodeError(tok.Pos.Line, tok.Pos.Column, tok.Pos.Offset, "trailing commas have been disabled")
			}
			ts.Next()
			return args, nil
		}
		value, err := parseRValue(ts, opts)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
		seenOne = true

		sep, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if sep.Kind == token.RParen {
			return args, nil
		}
		if sep.Kind == token.Comma {
			continue
		}
		return nil, unexpectedTokenError(sep)
	}
}

func compilePattern(source string) *Pattern {
	re, err := regexp.Compile(source)
	if err != nil {
		return &Pattern{Source: source}
	}
	return &Pattern{Source: source, Regexp: re}
}

// parseSelectorChain collects one or more consecutive SELECTOR_ELEMENT
// tokens into a Selector, given the first element has already been
// consumed.
func parseSelectorChain(ts *tokenStream, first string) (Selector, error) {
	names := []string{first}
	for {
		peek, err := ts.Peek()
		if err != nil {
			return Selector{}, err
		}
		if peek.Kind != token.SelectorElement {
			return Selector{Names: names}, nil
		}
		ts.Next()
		names = append(names, peek.Value)
	}
}

// parseAtom parses one condition atom (a negation, a parenthesized
// sub-condition, or an rvalue possibly combined by an infix operator into a
// comparison/membership/match condition), plus the token immediately
// following it.
func parseAtom(ts *tokenStream, opts parseOptions) (Condition, token.Token, error) {
	tok, err := ts.Next()
	if err != nil {
		return nil, token.Token{}, err
	}

	switch tok.Kind {
	case token.Bang:
		inner, err := ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}
		switch inner.Kind {
		case token.LParen:
			cond, err := parseCondition(ts, opts, token.RParen)
			if err != nil {
				return nil, token.Token{}, err
			}
			following, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			return Not{Condition: cond}, following, nil
		case token.SelectorElement:
			sel, err := parseSelectorChain(ts, inner.Value)
			if err != nil {
				return nil, token.Token{}, err
			}
			following, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			return Not{Condition: sel}, following, nil
		default:
			return nil, token.Token{}, unexpectedTokenError(inner)
		}

	case token.LParen:
		cond, err := parseCondition(ts, opts, token.RParen)
		if err != nil {
			return nil, token.Token{}, err
		}
		following, err := ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}
		return cond, following, nil

	default:
		ts.Pushback(tok)
		first, err := parseRValue(ts, opts)
		if err != nil {
			return nil, token.Token{}, err
		}
		op, err := ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}

		switch op.Kind {
		case token.In:
			second, err := parseRValue(ts, opts)
			if err != nil {
				return nil, token.Token{}, err
			}
			following, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			return Membership{Op: MembershipIn, Needle: first, Haystack: second}, following, nil

		case token.Not:
			inTok, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			if inTok.Kind != token.In {
				return nil, token.Token{}, unexpectedTokenError(inTok)
			}
			second, err := parseRValue(ts, opts)
			if err != nil {
				return nil, token.Token{}, err
			}
			following, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			return Membership{Op: MembershipNotIn, Needle: first, Haystack: second}, following, nil

		case token.Eq, token.NotEq, token.Lte, token.Gte, token.Lt, token.Gt:
			second, err := parseRValue(ts, opts)
			if err != nil {
				return nil, token.Token{}, err
			}
			following, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			return Comparison{Op: compareOpFor(op.Kind), First: first, Second: second}, following, nil

		case token.MatchOp, token.NotMatch:
			patTok, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			if patTok.Kind != token.SQuot && patTok.Kind != token.DQuot && patTok.Kind != token.Pattern {
				return nil, token.Token{}, unexpectedTokenError(patTok)
			}
			following, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			mop := MatchMatches
			if op.Kind == token.NotMatch {
				mop = MatchNotMatches
			}
			return Match{Op: mop, Value: first, Pattern: compilePattern(patTok.Value)}, following, nil

		default:
			cond, ok := first.(Condition)
			if !ok {
				return nil, token.Token{}, unexpectedTokenError(op)
			}
			return cond, op, nil
		}
	}
}

func compareOpFor(k token.Kind) CompareOp {
	switch k {
	case token.Eq:
		return CompareEq
	case token.NotEq:
		return CompareNotEq
	case token.Lte:
		return CompareLte
	case token.Gte:
		return CompareGte
	case token.Lt:
		return CompareLt
	default:
		return CompareGt
	}
}

func connectiveOpFor(k token.Kind) ConnectiveOp {
	switch k {
	case token.And:
		return ConnectiveAnd
	case token.Or:
		return ConnectiveOr
	case token.Xor:
		return ConnectiveXor
	default:
		return ConnectiveNand
	}
}

// parseCondition parses a sequence of atoms joined left-to-right by
// and/or/xor/nand connectives, terminated by endKind (not consumed by the
// caller; parseCondition consumes it).
//
// The grammar is precedence-free: a connective change wraps everything
// parsed so far as the sole initial child of a freshly started connective of
// the new kind, rather than merging into a common top-level list. Repeating
// the same connective simply grows its child list.
func parseCondition(ts *tokenStream, opts parseOptions, endKind token.Kind) (Condition, error) {
	var current *Connective
	var latest Condition

	for {
		atom, following, err := parseAtom(ts, opts)
		if err != nil {
			return nil, err
		}

		if current != nil {
			current.Conditions = append(current.Conditions, atom)
			latest = *current
		} else {
			latest = atom
		}

		if following.Kind == endKind {
			return latest, nil
		}

		switch following.Kind {
		case token.And, token.Or, token.Xor, token.Nand:
			op := connectiveOpFor(following.Kind)
			if current != nil && current.Op == op {
				continue
			}
			current = &Connective{Op: op, Conditions: []Condition{latest}}
		default:
			return nil, unexpectedTokenError(following)
		}
	}
}

// parseContent parses a sequence of top-level Nodes (blocks, attributes,
// and conditional branches), terminated by endKind. The terminating token is
// consumed here and returned alongside the Nodes.
func parseContent(ts *tokenStream, opts parseOptions, endKind token.Kind) ([]Node, token.Token, error) {
	var nodes []Node

	tok, err := ts.Next()
	if err != nil {
		return nil, token.Token{}, err
	}

	for tok.Kind != endKind {
		if tok.Kind == token.If {
			node, next, err := parseConditionsNode(ts, opts)
			if err != nil {
				return nil, token.Token{}, err
			}
			nodes = append(nodes, node)
			tok = next
			continue
		}

		var name string
		switch tok.Kind {
		case token.Number:
			name = tok.Value
		case token.Bareword, token.DigitBareword:
			name = tok.Value
		default:
			return nil, token.Token{}, unexpectedTokenError(tok)
		}

		opTok, err := ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}

		switch opTok.Kind {
		case token.LBrace:
			body, _, err := parseContent(ts, opts, token.RBrace)
			if err != nil {
				return nil, token.Token{}, err
			}
			nodes = append(nodes, Block{Name: name, Content: body})
		case token.FatArrow:
			value, err := parseData(ts, opts)
			if err != nil {
				return nil, token.Token{}, err
			}
			nodes = append(nodes, Attribute{Name: name, Value: value})
		default:
			return nil, token.Token{}, unexpectedTokenError(opTok)
		}

		tok, err = ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}
	}

	return nodes, tok, nil
}

// parseConditionsNode parses one `if ... { } else if ... { } else { }` chain
// (the leading `if` keyword has already been consumed), returning the
// resulting Conditions node and the lookahead token that follows it.
func parseConditionsNode(ts *tokenStream, opts parseOptions) (Node, token.Token, error) {
	cond, err := parseCondition(ts, opts, token.LBrace)
	if err != nil {
		return nil, token.Token{}, err
	}
	body, _, err := parseContent(ts, opts, token.RBrace)
	if err != nil {
		return nil, token.Token{}, err
	}

	branches := []Branch{{Condition: cond, Body: body}}
	var def *[]Node

	for {
		next, err := ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}
		if next.Kind != token.Else {
			return Conditions{Branches: branches, Default: def}, next, nil
		}

		afterElse, err := ts.Next()
		if err != nil {
			return nil, token.Token{}, err
		}
		switch afterElse.Kind {
		case token.LBrace:
			defaultBody, _, err := parseContent(ts, opts, token.RBrace)
			if err != nil {
				return nil, token.Token{}, err
			}
			def = &defaultBody
			lookahead, err := ts.Next()
			if err != nil {
				return nil, token.Token{}, err
			}
			return Conditions{Branches: branches, Default: def}, lookahead, nil
		case token.If:
			elseIfCond, err := parseCondition(ts, opts, token.LBrace)
			if err != nil {
				return nil, token.Token{}, err
			}
			elseIfBody, _, err := parseContent(ts, opts, token.RBrace)
			if err != nil {
				return nil, token.Token{}, err
			}
			branches = append(branches, Branch{Condition: elseIfCond, Body: elseIfBody})
			continue
		default:
			return nil, token.Token{}, unexpectedTokenError(afterElse)
		}
	}
}
