package lexer

import (
	"strconv"
	"strings"

	"github.com/brief-lang/brief/lang/token"
)

// scanNumber lexes an integer or double literal. A leading-dot form (.5) and
// a decimal point appearing mid-number both promote the result to DOUBLE; a
// malformed literal records a non-fatal error and yields a zero value rather
// than aborting the scan.
func (l *Lexer) scanNumber(start token.Position) Tok {
	var sb strings.Builder
	isDouble := false

	if l.cur == '.' {
		// leading-dot form, e.g. .5 — the caller only reaches here when a
		// digit follows the dot.
		isDouble = true
		sb.WriteRune('0')
		sb.WriteRune('.')
		l.advance()
		for isDigit(l.cur) {
			sb.WriteRune(l.cur)
			l.advance()
		}
	} else {
		for isDigit(l.cur) {
			sb.WriteRune(l.cur)
			l.advance()
		}
		if l.cur == '.' && isDigit(l.peek()) {
			isDouble = true
			sb.WriteRune('.')
			l.advance()
			for isDigit(l.cur) {
				sb.WriteRune(l.cur)
				l.advance()
			}
		}
	}

	raw := sb.String()
	span := l.span(start)
	if isDouble {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			l.errorf(span, "invalid double literal %q", raw)
			v = 0
		}
		return Tok{Kind: token.DOUBLE, Span: span, Raw: raw, Value: v}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		l.errorf(span, "invalid integer literal %q", raw)
		v = 0
	}
	return Tok{Kind: token.INTEGER, Span: span, Raw: raw, Value: v}
}
