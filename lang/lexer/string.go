package lexer

import (
	"strconv"
	"strings"

	"github.com/brief-lang/brief/lang/token"
)

// scanString lexes a (possibly interpolated) string literal. Plain text
// between `"` delimiters is split into STR_PART tokens at each interpolation
// hole; a hole is introduced by `&name` or `&path.to.x` and lexed as
// INTERP_IDENT or INTERP_PATH respectively. `&&` is a literal `&`. Every
// resulting token is pushed onto the lexer's queue in order; an unterminated
// string records a non-fatal error and still flushes whatever text was
// accumulated so far.
func (l *Lexer) scanString(start token.Position) {
	l.advance() // opening quote

	var text strings.Builder
	textStart := l.pos0()
	var parts []Tok
	flush := func(end token.Position) {
		parts = append(parts, Tok{
			Kind: token.STR_PART,
			Span: token.NewSpan(l.file, textStart, end),
			Raw:  text.String(),
		})
		text.Reset()
	}

	for {
		switch {
		case l.cur == '"':
			end := l.pos0()
			l.advance()
			flush(end)
			l.emitSequence(parts)
			return
		case l.cur == eof:
			l.errorf(l.span(start), "unterminated string literal")
			flush(l.pos0())
			l.emitSequence(parts)
			return
		case l.cur == '\\':
			r, ok := l.scanEscape(start)
			if ok {
				text.WriteRune(r)
			}
		case l.cur == '&':
			ampPos := l.pos0()
			l.advance()
			if l.cur == '&' {
				l.advance()
				text.WriteRune('&')
				continue
			}
			if !isAlpha(l.cur) {
				l.errorf(token.SingleSpan(l.file, ampPos), "invalid interpolation start")
				text.WriteRune('&')
				continue
			}
			flush(ampPos)
			textStart = l.scanInterpolationHole(ampPos, &parts)
		default:
			text.WriteRune(l.cur)
			l.advance()
		}
	}
}

// scanInterpolationHole consumes an interpolation identifier or dotted path
// following `&`, queues the corresponding INTERP_IDENT/INTERP_PATH token,
// and returns the position from which the next literal text run starts.
func (l *Lexer) scanInterpolationHole(ampPos token.Position, parts *[]Tok) token.Position {
	var sb strings.Builder
	dotted := false
	for isAlpha(l.cur) || isDigit(l.cur) || l.cur == '.' {
		if l.cur == '.' {
			dotted = true
		}
		sb.WriteRune(l.cur)
		l.advance()
	}
	kind := token.INTERP_IDENT
	if dotted {
		kind = token.INTERP_PATH
	}
	*parts = append(*parts, Tok{
		Kind: kind,
		Span: token.NewSpan(l.file, ampPos, l.pos0()),
		Raw:  sb.String(),
	})
	return l.pos0()
}

// emitSequence queues every part of an interpolated (or plain) string
// literal, in order.
func (l *Lexer) emitSequence(parts []Tok) {
	if len(parts) == 0 {
		l.push(Tok{Kind: token.STR_PART, Span: token.SingleSpan(l.file, l.pos0())})
		return
	}
	for _, p := range parts {
		l.push(p)
	}
}

// scanEscape decodes a backslash escape inside a string or char literal.
// The second return value is false when the escape contributes no rune: a
// malformed \u escape (no opening brace, or hex digits that do not parse).
func (l *Lexer) scanEscape(start token.Position) (rune, bool) {
	l.advance() // backslash
	switch l.cur {
	case 'n':
		l.advance()
		return '\n', true
	case 't':
		l.advance()
		return '\t', true
	case 'r':
		l.advance()
		return '\r', true
	case '\\':
		l.advance()
		return '\\', true
	case '\'':
		l.advance()
		return '\'', true
	case '"':
		l.advance()
		return '"', true
	case '0':
		l.advance()
		return 0, true
	case 'u':
		l.advance()
		if l.cur != '{' {
			l.errorf(l.span(start), "invalid unicode escape")
			return 0, false
		}
		l.advance()
		var hex strings.Builder
		for l.cur != '}' && l.cur != eof {
			hex.WriteRune(l.cur)
			l.advance()
		}
		if l.cur == '}' {
			l.advance()
		}
		v, err := strconv.ParseUint(hex.String(), 16, 32)
		if err != nil {
			l.errorf(l.span(start), "invalid unicode escape %q", hex.String())
			return 0, false
		}
		return rune(v), true
	default:
		l.errorf(l.span(start), "unknown escape sequence \\%c", l.cur)
		r := l.cur
		l.advance()
		return r, true
	}
}

// scanChar lexes a single character literal, e.g. 'a' or '\n'.
func (l *Lexer) scanChar(start token.Position) Tok {
	l.advance() // opening quote
	var value rune
	switch {
	case l.cur == '\\':
		r, _ := l.scanEscape(start)
		value = r
	case l.cur == '\'' || l.cur == eof:
		l.errorf(l.span(start), "empty character literal")
	default:
		value = l.cur
		l.advance()
	}

	if l.cur != '\'' {
		// consume until closing quote or end of line, recording one error
		l.errorf(l.span(start), "character literal must contain exactly one character")
		for l.cur != '\'' && l.cur != '\n' && l.cur != eof {
			l.advance()
		}
	}
	if l.cur == '\'' {
		l.advance()
	} else {
		l.errorf(l.span(start), "unterminated character literal")
	}
	return Tok{Kind: token.CHARACTER, Span: l.span(start), Raw: string(value), Value: value}
}
