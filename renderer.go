package lscl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lukeod/lscl/internal/token"
)

// FieldReferenceEscapeStyle controls how forbidden characters inside a
// selector segment are escaped when rendering a Selector.
type FieldReferenceEscapeStyle int

const (
	// EscapeNone fails rendering if a segment contains '[', ']', or ','.
	EscapeNone FieldReferenceEscapeStyle = iota
	// EscapePercent escapes using %XX URL-style triples.
	EscapePercent
	// EscapeAmpersand escapes using &#NN; HTML-entity-style sequences.
	EscapeAmpersand
)

// RenderOption configures Render.
type RenderOption func(*renderOptions)

type renderOptions struct {
	escapesSupported bool
	fieldRefStyle    FieldReferenceEscapeStyle
}

// WithEscapesSupported controls whether a string that cannot be represented
// without NUL, CR, or both quote kinds together is rendered best-effort
// (true) or rejected with a string-rendering error (false, the default).
func WithEscapesSupported(supported bool) RenderOption {
	return func(o *renderOptions) { o.escapesSupported = supported }
}

// WithFieldReferenceEscapeStyle selects how forbidden characters in selector
// segments are escaped.
func WithFieldReferenceEscapeStyle(style FieldReferenceEscapeStyle) RenderOption {
	return func(o *renderOptions) { o.fieldRefStyle = style }
}

var barewordPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]+$`)

var stringEscapeReplacements = map[byte]string{
	'\\': `\\`,
	'"':  `\"`,
	'\'': `\'`,
	0:    `\0`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
}

// Render renders an AST node, a raw Data value, or a slice of Nodes back
// into LSCL source text.
func Render(node any, opts ...RenderOption) (string, error) {
	var o renderOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch v := node.(type) {
	case []Node:
		return renderContent(v, "", o)
	case Node:
		return renderContent([]Node{v}, "", o)
	case Data:
		return renderData(v, "", o)
	case Condition:
		return renderCondition(v, o)
	case RValue:
		return renderRValue(v, o)
	default:
		return "", fmt.Errorf("lscl: cannot render value of type %T", node)
	}
}

func renderString(raw string, useBarewords bool, o renderOptions) (string, error) {
	if _, isKeyword := token.Keywords[raw]; useBarewords && !isKeyword && barewordPattern.MatchString(raw) {
		return raw, nil
	}

	hasDouble := strings.ContainsRune(raw, '"')
	hasSingle := strings.ContainsRune(raw, '\'')
	hasNUL := strings.IndexByte(raw, 0) >= 0
	hasCR := strings.ContainsRune(raw, '\r')

	if !o.escapesSupported && (hasNUL || hasCR || (hasDouble && hasSingle)) {
		return "", stringRenderingError(raw)
	}

	quote := byte('"')
	if hasDouble && !hasSingle {
		quote = '\''
	}

	var b strings.Builder
	b.WriteByte(quote)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == quote || c == '\\' || c == 0 || c == '\n' || c == '\r' || c == '\t' {
			b.WriteString(stringEscapeReplacements[c])
			continue
		}
		b.WriteByte(c)
	}
	b.WriteByte(quote)
	return b.String(), nil
}

func renderPattern(p *Pattern) string {
	escaped := strings.ReplaceAll(p.Source, "/", `\/`)
	return "/" + escaped + "/"
}

func escapeSelectorSegment(segment string, o renderOptions) (string, error) {
	if !strings.ContainsAny(segment, "[],") {
		return segment, nil
	}

	switch o.fieldRefStyle {
	case EscapePercent:
		s := percentEscapeExisting.ReplaceAllString(segment, "%25$1")
		s = strings.NewReplacer("[", "%5B", "]", "%5D", ",", "%2C").Replace(s)
		return s, nil
	case EscapeAmpersand:
		s := ampersandEscapeExisting.ReplaceAllString(segment, "&#38;#$1;")
		s = strings.NewReplacer("[", "&#91;", "]", "&#93;", ",", "&#44;").Replace(s)
		return s, nil
	default:
		return "", selectorElementRenderingError(segment)
	}
}

var percentEscapeExisting = regexp.MustCompile(`%([0-9A-Fa-f]{2})`)
var ampersandEscapeExisting = regexp.MustCompile(`&#([0-9]+);`)

func renderSelector(sel Selector, o renderOptions) (string, error) {
	var b strings.Builder
	for _, name := range sel.Names {
		escaped, err := escapeSelectorSegment(name, o)
		if err != nil {
			return "", err
		}
		b.WriteByte('[')
		b.WriteString(escaped)
		b.WriteByte(']')
	}
	return b.String(), nil
}

// renderData renders a Data value. prefix is the indentation already in
// effect at the point of rendering; the result always ends in "\n".
func renderData(content Data, prefix string, o renderOptions) (string, error) {
	switch v := content.(type) {
	case *Mapping:
		if v == nil || v.Len() == 0 {
			return "{}\n", nil
		}
		var b strings.Builder
		b.WriteString("{\n")
		for _, key := range v.Keys() {
			value, _ := v.Get(key)
			keyStr, err := renderString(key, true, o)
			if err != nil {
				return "", err
			}
			valStr, err := renderData(value, prefix+"  ", o)
			if err != nil {
				return "", err
			}
			b.WriteString(prefix + "  " + keyStr + " => " + valStr)
		}
		b.WriteString(prefix + "}\n")
		return b.String(), nil

	case List:
		if len(v) == 0 {
			return "[]\n", nil
		}
		var b strings.Builder
		b.WriteString("[\n")
		for i, elem := range v {
			rendered, err := renderData(elem, prefix+"  ", o)
			if err != nil {
				return "", err
			}
			rendered = strings.TrimSuffix(rendered, "\n")
			b.WriteString(prefix + "  " + rendered)
			if i < len(v)-1 {
				b.WriteString(",\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(prefix + "]\n")
		return b.String(), nil

	case Int:
		return strconv.FormatInt(int64(v), 10) + "\n", nil

	case Decimal:
		return string(v) + "\n", nil

	case Bool:
		if v {
			return "true\n", nil
		}
		return "false\n", nil

	case Literal:
		return string(v) + "\n", nil

	case Str:
		rendered, err := renderString(string(v), true, o)
		if err != nil {
			return "", err
		}
		return rendered + "\n", nil

	default:
		return "", fmt.Errorf("lscl: cannot render data of type %T", content)
	}
}

// renderRValue renders an RValue (never permitted to collapse to a
// bareword, unlike Data strings).
func renderRValue(content RValue, o renderOptions) (string, error) {
	switch v := content.(type) {
	case Selector:
		return renderSelector(v, o)
	case MethodCall:
		parts := make([]string, len(v.Args))
		for i, arg := range v.Args {
			rendered, err := renderRValue(arg, o)
			if err != nil {
				return "", err
			}
			parts[i] = rendered
		}
		return v.Name + "(" + strings.Join(parts, ", ") + ")", nil
	case Str:
		return renderString(string(v), false, o)
	case Int:
		return strconv.FormatInt(int64(v), 10), nil
	case Decimal:
		return string(v), nil
	case List:
		rendered, err := renderData(v, "", o)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(rendered, "\n"), nil
	case *Pattern:
		return renderPattern(v), nil
	default:
		return "", fmt.Errorf("lscl: cannot render rvalue of type %T", content)
	}
}

func isConnective(c Condition) (Connective, bool) {
	conn, ok := c.(Connective)
	return conn, ok
}

var connectiveOpWord = map[ConnectiveOp]string{
	ConnectiveAnd:  " and ",
	ConnectiveOr:   " or ",
	ConnectiveXor:  " xor ",
	ConnectiveNand: " nand ",
}

// renderCondition renders a Condition.
func renderCondition(content Condition, o renderOptions) (string, error) {
	switch v := content.(type) {
	case Connective:
		if len(v.Conditions) == 1 {
			return renderCondition(v.Conditions[0], o)
		}
		parts := make([]string, len(v.Conditions))
		for i, cond := range v.Conditions {
			rendered, err := renderCondition(cond, o)
			if err != nil {
				return "", err
			}
			if _, nested := isConnective(cond); nested {
				rendered = "(" + rendered + ")"
			}
			parts[i] = rendered
		}
		return strings.Join(parts, connectiveOpWord[v.Op]), nil

	case Not:
		if sel, ok := v.Condition.(Selector); ok {
			rendered, err := renderSelector(sel, o)
			if err != nil {
				return "", err
			}
			return "!" + rendered, nil
		}
		rendered, err := renderCondition(v.Condition, o)
		if err != nil {
			return "", err
		}
		return "!(" + rendered + ")", nil

	case Membership:
		needle, err := renderRValue(v.Needle, o)
		if err != nil {
			return "", err
		}
		haystack, err := renderRValue(v.Haystack, o)
		if err != nil {
			return "", err
		}
		op := " in "
		if v.Op == MembershipNotIn {
			op = " not in "
		}
		return needle + op + haystack, nil

	case Comparison:
		first, err := renderRValue(v.First, o)
		if err != nil {
			return "", err
		}
		second, err := renderRValue(v.Second, o)
		if err != nil {
			return "", err
		}
		return first + " " + comparisonOpWord(v.Op) + " " + second, nil

	case Match:
		value, err := renderRValue(v.Value, o)
		if err != nil {
			return "", err
		}
		op := " =~ "
		if v.Op == MatchNotMatches {
			op = " !~ "
		}
		return value + op + renderPattern(v.Pattern), nil

	default:
		if rv, ok := content.(RValue); ok {
			return renderRValue(rv, o)
		}
		return "", fmt.Errorf("lscl: cannot render condition of type %T", content)
	}
}

func comparisonOpWord(op CompareOp) string {
	switch op {
	case CompareEq:
		return "=="
	case CompareNotEq:
		return "!="
	case CompareLt:
		return "<"
	case CompareLte:
		return "<="
	case CompareGt:
		return ">"
	default:
		return ">="
	}
}

// renderContent renders a sequence of top-level Nodes.
func renderContent(nodes []Node, prefix string, o renderOptions) (string, error) {
	var b strings.Builder
	for _, node := range nodes {
		switch v := node.(type) {
		case Block:
			if len(v.Content) > 0 {
				body, err := renderContent(v.Content, prefix+"  ", o)
				if err != nil {
					return "", err
				}
				b.WriteString(prefix + v.Name + " {\n" + body + prefix + "}\n")
			} else {
				b.WriteString(prefix + v.Name + " {}\n")
			}

		case Attribute:
			rendered, err := renderData(v.Value, prefix, o)
			if err != nil {
				return "", err
			}
			b.WriteString(prefix + v.Name + " => " + rendered)

		case Conditions:
			beforeCond := prefix
			for _, branch := range v.Branches {
				cond, err := renderCondition(branch.Condition, o)
				if err != nil {
					return "", err
				}
				b.WriteString(beforeCond + "if " + cond)

				if len(branch.Body) > 0 {
					body, err := renderContent(branch.Body, prefix+"  ", o)
					if err != nil {
						return "", err
					}
					b.WriteString(" {\n" + body + prefix + "}")
					beforeCond = " else "
				} else {
					b.WriteString(" {}")
					beforeCond = "\n" + prefix + "else "
				}
			}

			if v.Default != nil {
				if len(*v.Default) > 0 {
					body, err := renderContent(*v.Default, prefix+"  ", o)
					if err != nil {
						return "", err
					}
					b.WriteString(beforeCond + "{\n" + body + prefix + "}")
				} else {
					b.WriteString(beforeCond + "{}")
				}
			}

			b.WriteString("\n")

		default:
			return "", fmt.Errorf("lscl: cannot render content node of type %T", node)
		}
	}
	return b.String(), nil
}
