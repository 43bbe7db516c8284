// Package lscl implements a bidirectional codec for the Logstash
// Configuration Language: a lexer and recursive-descent parser from source
// text to a typed AST, a renderer from AST back to canonical source text,
// and a thin adapter projecting the AST into the Logstash filter-pipeline
// domain model.
package lscl

import "regexp"

// Data is the payload type of an Attribute: integers, decimals, strings,
// ordered lists, ordered mappings, plus two renderer-only conveniences
// (Literal and Bool) that Parse never produces.
type Data interface {
	isData()
}

// RValue is the payload type used inside conditions: a superset of Data
// minus mappings (and minus the renderer-only Literal/Bool), plus
// Selector, MethodCall, and Pattern.
type RValue interface {
	isRValue()
}

// Condition is the boolean-expression sub-language used in `if` branches.
type Condition interface {
	isCondition()
}

// Node is an element of Content: a Block, an Attribute, or a Conditions
// branch tree.
type Node interface {
	isContent()
}

// Int is a signed integer Data/RValue value.
type Int int64

func (Int) isData()      {}
func (Int) isRValue()    {}
func (Int) isCondition() {}

// Decimal is an exact fixed-point Data/RValue value. The raw lexeme is
// preserved verbatim so that round-tripping reproduces trailing zeros and
// other textual detail the reference grammar requires.
type Decimal string

func (Decimal) isData()      {}
func (Decimal) isRValue()    {}
func (Decimal) isCondition() {}

// Str is a string Data/RValue value.
type Str string

func (Str) isData()      {}
func (Str) isRValue()    {}
func (Str) isCondition() {}

// List is an ordered list of Data, itself usable as Data or RValue.
type List []Data

func (List) isData()      {}
func (List) isRValue()    {}
func (List) isCondition() {}

// Literal is an opaque passthrough Data value: the renderer emits its
// content verbatim, with no quoting, escaping, or validation. Parse never
// produces one; it exists so programmatically constructed ASTs can inject
// Logstash-side expressions the codec does not otherwise model.
type Literal string

func (Literal) isData() {}

// Bool is a renderer-only convenience that emits as the bareword `true` or
// `false`. Parse never produces a Bool (a bare `true`/`false` lexes and
// parses as a Str).
type Bool bool

func (Bool) isData() {}

// Mapping is an ordered, string-keyed map of Data. Insertion order is
// preserved for rendering stability; re-assigning an existing key keeps
// that key's original position but replaces its value (last-wins), mirroring
// a plain assignment into a Python dict.
type Mapping struct {
	keys   []string
	values map[string]Data
}

func (*Mapping) isData() {}

// NewMapping returns an empty ordered Mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Data)}
}

// Set assigns key to value, appending key to the insertion order only if it
// is not already present.
func (m *Mapping) Set(key string, value Data) {
	if m.values == nil {
		m.values = make(map[string]Data)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Mapping) Get(key string) (Data, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Selector is a non-empty ordered sequence of field-path segments.
type Selector struct {
	Names []string
}

func (Selector) isRValue()    {}
func (Selector) isCondition() {}

// MethodCall is a named invocation of a host-provided function inside a
// condition.
type MethodCall struct {
	Name string
	Args []RValue
}

func (MethodCall) isRValue()   {}
func (MethodCall) isCondition() {}

// Pattern is a compiled regular expression literal. Source is always
// preserved even when the pattern could not be compiled by the host regex
// engine (conditions are never evaluated by this codec, so a Pattern that
// fails to compile is not itself an error).
type Pattern struct {
	Source string
	Regexp *regexp.Regexp
}

func (*Pattern) isRValue()    {}
func (*Pattern) isCondition() {}

// CompareOp identifies a comparison operator.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareNotEq
	CompareLt
	CompareLte
	CompareGt
	CompareGte
)

// Comparison is a `==`, `!=`, `<`, `<=`, `>`, or `>=` condition.
type Comparison struct {
	Op     CompareOp
	First  RValue
	Second RValue
}

func (Comparison) isCondition() {}

// MembershipOp identifies a membership operator.
type MembershipOp int

const (
	MembershipIn MembershipOp = iota
	MembershipNotIn
)

// Membership is an `in` or `not in` condition.
type Membership struct {
	Op       MembershipOp
	Needle   RValue
	Haystack RValue
}

func (Membership) isCondition() {}

// MatchOp identifies a regex-match operator.
type MatchOp int

const (
	MatchMatches MatchOp = iota
	MatchNotMatches
)

// Match is an `=~` or `!~` condition.
type Match struct {
	Op      MatchOp
	Value   RValue
	Pattern *Pattern
}

func (Match) isCondition() {}

// ConnectiveOp identifies a logical connective.
type ConnectiveOp int

const (
	ConnectiveAnd ConnectiveOp = iota
	ConnectiveOr
	ConnectiveXor
	ConnectiveNand
)

// Connective is an `and`/`or`/`xor`/`nand` combination of child conditions.
type Connective struct {
	Op         ConnectiveOp
	Conditions []Condition
}

func (Connective) isCondition() {}

// Not is a unary negation of a condition.
type Not struct {
	Condition Condition
}

func (Not) isCondition() {}

// Block is a named structural container with a Content body.
type Block struct {
	Name    string
	Content []Node
}

func (Block) isContent() {}

// Attribute is a named Data value.
type Attribute struct {
	Name  string
	Value Data
}

func (Attribute) isContent() {}

// Branch is one (condition, body) arm of a Conditions node.
type Branch struct {
	Condition Condition
	Body      []Node
}

// Conditions is a non-empty ordered list of (Condition, Content) branches
// and an optional default Content. Default distinguishes "no default"
// (nil) from "empty default body `{}`" (non-nil, zero-length) via a
// pointer.
type Conditions struct {
	Branches []Branch
	Default  *[]Node
}

func (Conditions) isContent() {}
