package lexer

import "github.com/brief-lang/brief/lang/token"

// skipLineComment consumes a `//` comment. It stops before consuming a tab,
// leaving that tab for the main loop to interpret as opening a nested block
// (a `//` comment followed by a tab is not actually a full-line comment).
func (l *Lexer) skipLineComment() {
	l.advance() // first '/'
	l.advance() // second '/'
	for l.cur != '\n' && l.cur != eof && l.cur != '\t' {
		l.advance()
	}
}

// skipBlockComment consumes a `/* ... */` comment, supporting nesting.
// An unterminated block comment records a non-fatal error.
func (l *Lexer) skipBlockComment(start token.Position) {
	l.advance() // '/'
	l.advance() // '*'
	depth := 1
	for depth > 0 {
		switch {
		case l.cur == eof:
			l.errorf(l.span(start), "unterminated block comment")
			return
		case l.cur == '/' && l.peek() == '*':
			l.advance()
			l.advance()
			depth++
		case l.cur == '*' && l.peek() == '/':
			l.advance()
			l.advance()
			depth--
		default:
			l.advance()
		}
	}
}
