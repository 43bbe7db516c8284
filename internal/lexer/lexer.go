package lexer

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/lukeod/lscl/internal/token"
)

// master is the single combined pattern driving tokenization. Alternatives
// are tried in declaration order and the first one that matches at the
// current position wins, mirroring the reference grammar's ordered regex
// dispatch. digitbareword is listed ahead of number: its pattern requires an
// internal letter/underscore, so it never matches a value number could also
// match, but it must still run first so a digit- or dash-leading name (e.g.
// "0auth") isn't cut short by number's leading-digits-only match.
var master = regexp.MustCompile(
	`^(?:` +
		`(?P<comment>#[^\n]*)` +
		`|(?P<selector>\[[^\[\],]+\])` +
		`|(?P<symbol>=>|==|!=|<=|>=|=~|!~|<|>|\{|\}|\[|\]|\(|\)|!|,)` +
		`|(?P<dquot>"(?:\\.|[^"])*")` +
		`|(?P<squot>'(?:\\.|[^'])*')` +
		`|(?P<pattern>/(?:\\.|[^/])*/)` +
		`|(?P<digitbareword>[0-9]+[A-Za-z_][A-Za-z0-9_-]*|-[0-9]*[A-Za-z_][A-Za-z0-9_-]*)` +
		`|(?P<number>-?[0-9]+(?:\.[0-9]*)?)` +
		`|(?P<bareword>[A-Za-z_][A-Za-z0-9_]*)` +
		`)`,
)

var whitespace = regexp.MustCompile(`^[ \t\r\n]+`)

var symbolKinds = map[string]token.Kind{
	"=>": token.FatArrow,
	"==": token.Eq,
	"!=": token.NotEq,
	"<=": token.Lte,
	">=": token.Gte,
	"<":  token.Lt,
	">":  token.Gt,
	"=~": token.MatchOp,
	"!~": token.NotMatch,
	"{":  token.LBrace,
	"}":  token.RBrace,
	"[":  token.LBracket,
	"]":  token.RBracket,
	"(":  token.LParen,
	")":  token.RParen,
	"!":  token.Bang,
	",":  token.Comma,
}

// escapeChars maps the character following a backslash in a quoted string to
// its decoded value. Any other escaped character decodes to the literal two
// characters (backslash preserved).
var escapeChars = map[byte]byte{
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'0':  0,
}

// Lexer tokenizes LSCL source text, producing tokens terminated by a
// synthetic END token.
type Lexer struct {
	remaining string
	tracker   Tracker
	ended     bool
}

// New returns a Lexer positioned at the start of input.
func New(input string) *Lexer {
	return &Lexer{remaining: input, tracker: NewTracker()}
}

// NewAt returns a Lexer whose Tracker begins at an arbitrary position, used
// to re-lex a substring (such as a selector element's bracket interior) in
// the context of its enclosing source.
func NewAt(input string, line, column, offset int) *Lexer {
	return &Lexer{remaining: input, tracker: NewTrackerAt(line, column, offset)}
}

func (l *Lexer) pos() lexer.Position {
	return lexer.Position{Line: l.tracker.Line, Column: l.tracker.Column, Offset: l.tracker.Offset}
}

func decodeErr(pos lexer.Position, msg string) error {
	return oops.
		Code("LSCL_DECODE").
		With("line", pos.Line).
		With("column", pos.Column).
		With("offset", pos.Offset).
		Errorf("%s", msg)
}

// Next returns the next token in the stream. Once input is exhausted it
// returns an END token on every subsequent call.
func (l *Lexer) Next() (token.Token, error) {
	for {
		if m := whitespace.FindString(l.remaining); m != "" {
			l.tracker.Consume(m)
			l.remaining = l.remaining[len(m):]
			continue
		}

		if l.remaining == "" {
			break
		}

		loc := master.FindStringSubmatchIndex(l.remaining)
		if loc == nil {
			prefix := l.remaining
			if len(prefix) > 30 {
				prefix = prefix[:30]
			}
			return token.Token{}, decodeErr(l.pos(), "unrecognized input near \""+prefix+"\"")
		}

		names := master.SubexpNames()
		var kind string
		var text string
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			kind = name
			text = l.remaining[loc[2*i]:loc[2*i+1]]
			break
		}

		startPos := l.pos()
		l.tracker.Consume(text)
		l.remaining = l.remaining[loc[1]:]

		if kind == "comment" {
			continue
		}

		return l.buildToken(kind, text, startPos)
	}

	l.ended = true
	return token.Token{Kind: token.End, Pos: l.pos()}, nil
}

func (l *Lexer) buildToken(kind, text string, pos lexer.Position) (token.Token, error) {
	switch kind {
	case "selector":
		return token.Token{Kind: token.SelectorElement, Value: text[1 : len(text)-1], Pos: pos}, nil
	case "symbol":
		return token.Token{Kind: symbolKinds[text], Value: text, Pos: pos}, nil
	case "dquot":
		return token.Token{Kind: token.DQuot, Value: unescapeString(text[1 : len(text)-1]), Pos: pos}, nil
	case "squot":
		return token.Token{Kind: token.SQuot, Value: unescapeString(text[1 : len(text)-1]), Pos: pos}, nil
	case "pattern":
		return token.Token{Kind: token.Pattern, Value: unescapePattern(text[1 : len(text)-1]), Pos: pos}, nil
	case "number":
		return token.Token{Kind: token.Number, Value: text, Pos: pos}, nil
	case "bareword":
		if kw, ok := token.Keywords[text]; ok {
			return token.Token{Kind: kw, Value: text, Pos: pos}, nil
		}
		return token.Token{Kind: token.Bareword, Value: text, Pos: pos}, nil
	case "digitbareword":
		return token.Token{Kind: token.DigitBareword, Value: text, Pos: pos}, nil
	default:
		return token.Token{}, decodeErr(pos, "internal lexer error: unmatched group")
	}
}

// unescapeString decodes the backslash-escape sequences used in DQUOT/SQUOT
// string bodies.
func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		if decoded, ok := escapeChars[next]; ok {
			b.WriteByte(decoded)
		} else {
			b.WriteByte('\\')
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// unescapePattern decodes only the `\/` escape; every other backslash
// sequence is preserved verbatim for the regex engine to interpret.
func unescapePattern(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i < len(s)-1 && s[i+1] == '/' {
			b.WriteByte('/')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
