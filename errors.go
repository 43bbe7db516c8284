package lscl

import (
	"github.com/samber/oops"

	"github.com/lukeod/lscl/internal/token"
)

// Error codes, carried as the oops.Code of every error this package returns.
const (
	CodeDecode          = "LSCL_DECODE"
	CodeUnexpectedToken = "LSCL_UNEXPECTED_TOKEN"
	CodeStringRender    = "LSCL_STRING_RENDER"
	CodeSelectorRender  = "LSCL_SELECTOR_RENDER"
)

func decodeError(line, column, offset int, msg string) error {
	return oops.
		Code(CodeDecode).
		With("line", line).
		With("column", column).
		With("offset", offset).
		Errorf("%s", msg)
}

func unexpectedTokenError(tok token.Token) error {
	return oops.
		Code(CodeUnexpectedToken).
		With("line", tok.Pos.Line).
		With("column", tok.Pos.Column).
		With("offset", tok.Pos.Offset).
		With("token_kind", token.KindString(tok.Kind)).
		Errorf("unexpected token %s", tok)
}

func stringRenderingError(raw string) error {
	return oops.
		Code(CodeStringRender).
		With("string", raw).
		Errorf("string cannot be rendered without escapes: %q", raw)
}

func selectorElementRenderingError(segment string) error {
	return oops.
		Code(CodeSelectorRender).
		With("selector_element", segment).
		Errorf("selector element cannot be rendered without escaping: %q", segment)
}

// DecodePosition extracts the (line, column, offset) carried by a decode
// error (or any error wrapping one), returning ok=false if err does not
// carry one.
func DecodePosition(err error) (line, column, offset int, ok bool) {
	oerr, isOops := oops.AsOops(err)
	if !isOops {
		return 0, 0, 0, false
	}
	ctx := oerr.Context()
	line, lok := ctx["line"].(int)
	column, cok := ctx["column"].(int)
	offset, ook := ctx["offset"].(int)
	if !lok || !cok || !ook {
		return 0, 0, 0, false
	}
	return line, column, offset, true
}

// TokenKind extracts the offending token kind name carried by an unexpected
// token error, returning ok=false if err does not carry one.
func TokenKind(err error) (kind string, ok bool) {
	oerr, isOops := oops.AsOops(err)
	if !isOops {
		return "", false
	}
	kind, ok = oerr.Context()["token_kind"].(string)
	return kind, ok
}

// OffendingString extracts the string that failed to render, returning
// ok=false if err does not carry one.
func OffendingString(err error) (s string, ok bool) {
	oerr, isOops := oops.AsOops(err)
	if !isOops {
		return "", false
	}
	s, ok = oerr.Context()["string"].(string)
	return s, ok
}

// OffendingSelectorElement extracts the selector segment that failed to
// render, returning ok=false if err does not carry one.
func OffendingSelectorElement(err error) (segment string, ok bool) {
	oerr, isOops := oops.AsOops(err)
	if !isOops {
		return "", false
	}
	segment, ok = oerr.Context()["selector_element"].(string)
	return segment, ok
}
