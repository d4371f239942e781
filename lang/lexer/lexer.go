// Package lexer tokenizes source text into the tab-driven indentation model
// described by the source language: NEWLINE/INDENT/DEDENT are synthesized
// from leading-tab counts rather than emitted by the grammar, and a tab
// encountered mid-line opens a one-level nested block.
package lexer

import (
	"fmt"
	"strings"

	"github.com/brief-lang/brief/lang/token"
)

// Tok pairs a token kind with its source span and, for literal-bearing
// tokens, the raw text or decoded value the parser needs.
type Tok struct {
	Kind  token.Token
	Span  token.Span
	Raw   string      // uninterpreted source text, for IDENT/INTEGER/DOUBLE/CHARACTER/STR_PART/INTERP_IDENT/INTERP_PATH
	Value interface{} // decoded literal value for INTEGER (int64), DOUBLE (float64), CHARACTER (rune)
}

// Error is a non-fatal lexical error: the lexer never aborts on one, it
// records it and keeps producing tokens.
type Error struct {
	Span token.Span
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Span, e.Msg) }

const eof = -1

// Lexer tokenizes a single source file using a tab-width indentation stack.
// Zero value is not usable; construct with New.
type Lexer struct {
	file token.FileID
	src  []rune

	pos  int // rune offset one past cur
	line uint32
	col  uint32
	cur  rune // eof at end of input

	indentStack []int
	queue       []Tok // tokens produced ahead of the one about to be returned
	atLineStart bool
	sawToken    bool // a real token has been emitted; guards the leading NEWLINE
	done        bool // final Eof token already queued

	errs []*Error
}

// New creates a Lexer over src, identified by file for span reporting.
func New(file token.FileID, src string) *Lexer {
	l := &Lexer{
		file:        file,
		src:         []rune(src),
		line:        1,
		col:         1,
		indentStack: []int{0},
		atLineStart: true,
	}
	l.advance()
	return l
}

// Tokenize runs the lexer to completion and returns every token (always
// terminated by a single EOF token) plus any non-fatal errors collected
// along the way.
func Tokenize(file token.FileID, src string) ([]Tok, []*Error) {
	l := New(file, src)
	var toks []Tok
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.errs
}

func (l *Lexer) pos0() token.Position { return token.MakePosition(l.line, l.col) }

func (l *Lexer) span(start token.Position) token.Span {
	return token.NewSpan(l.file, start, l.pos0())
}

func (l *Lexer) errorf(span token.Span, format string, args ...interface{}) {
	l.errs = append(l.errs, &Error{Span: span, Msg: fmt.Sprintf(format, args...)})
}

func (l *Lexer) advance() {
	if l.cur == '\n' {
		l.line++
		l.col = 1
	} else if l.pos > 0 {
		l.col++
	}
	if l.pos >= len(l.src) {
		l.cur = eof
		return
	}
	l.cur = l.src[l.pos]
	l.pos++
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return eof
	}
	return l.src[l.pos]
}

func (l *Lexer) matchChar(r rune) bool {
	if l.cur == r {
		l.advance()
		return true
	}
	return false
}

func (l *Lexer) push(t Tok) { l.queue = append(l.queue, t) }

// Next returns the next token in the file.
func (l *Lexer) Next() Tok {
	for len(l.queue) == 0 && !l.done {
		l.step()
	}
	if len(l.queue) == 0 {
		// should be unreachable: step() always makes progress or sets done
		// after queuing the final Eof.
		return Tok{Kind: token.EOF, Span: token.SingleSpan(l.file, l.pos0())}
	}
	t := l.queue[0]
	l.queue = l.queue[1:]
	if t.Kind == token.EOF {
		l.done = true
	}
	return t
}

// step advances the lexer by one unit of work, queuing zero or more tokens.
// It always either queues at least one token or leaves the cursor strictly
// further along, so the Next loop terminates.
func (l *Lexer) step() {
	if l.atLineStart {
		l.atLineStart = false
		l.handleLineStart()
		return
	}
	if l.cur == eof {
		l.queueEOFSequence()
		return
	}

	switch {
	case l.cur == ' ':
		l.advance()
	case l.cur == '\t':
		l.openInlineBlock()
	case l.cur == '\n':
		l.advance()
		l.atLineStart = true
	default:
		l.sawToken = true
		l.scanToken()
	}
}

// queueEOFSequence emits the NEWLINE that closes the last logical line
// (always: a trailing '\n' in the source does not produce one of its own),
// one DEDENT per remaining open indent level, then a final Eof.
func (l *Lexer) queueEOFSequence() {
	pos := l.pos0()
	l.push(Tok{Kind: token.NEWLINE, Span: token.SingleSpan(l.file, pos)})
	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		l.push(Tok{Kind: token.DEDENT, Span: token.SingleSpan(l.file, pos)})
	}
	l.push(Tok{Kind: token.EOF, Span: token.SingleSpan(l.file, pos)})
}

// handleLineStart consumes leading tabs, decides whether the line is
// blank/comment-only (skipped with no NEWLINE emitted), and otherwise
// reconciles the new indent level against the indent stack, queuing
// NEWLINE/INDENT/DEDENT tokens as needed.
func (l *Lexer) handleLineStart() {
	if l.cur == eof {
		l.queueEOFSequence()
		return
	}

	start := l.pos0()
	tabs := l.countLeadingTabs()
	if l.isBlankOrCommentOnlyLine() {
		l.skipToLineEnd()
		if l.cur == '\n' {
			l.advance()
		}
		l.atLineStart = true
		return
	}

	l.reconcileIndent(tabs, start)
}

// countLeadingTabs consumes leading tab characters, recording a non-fatal
// error (and stopping) the first time it sees a space used for indentation.
func (l *Lexer) countLeadingTabs() int {
	n := 0
	for {
		switch l.cur {
		case '\t':
			n++
			l.advance()
		case ' ':
			l.errorf(token.SingleSpan(l.file, l.pos0()), "spaces cannot be used for indentation (use tabs)")
			return n
		default:
			return n
		}
	}
}

// isBlankOrCommentOnlyLine looks ahead (without consuming) to see if the
// rest of the current line is empty or a `//` comment. A tab following `//`
// signals a mid-line-opened block rather than a true comment-only line, so
// that case is not treated as blank.
func (l *Lexer) isBlankOrCommentOnlyLine() bool {
	i := l.pos - 1
	if i < 0 {
		i = 0
	}
	for i < len(l.src) {
		r := l.src[i]
		switch r {
		case ' ', '\t':
			i++
		case '\n':
			return true
		case '/':
			if i+1 < len(l.src) && l.src[i+1] == '/' {
				j := i + 2
				for j < len(l.src) && l.src[j] != '\n' {
					if l.src[j] == '\t' {
						return false
					}
					j++
				}
				return true
			}
			return false
		default:
			return false
		}
	}
	return true // EOF with no trailing newline: treat as blank
}

func (l *Lexer) skipToLineEnd() {
	for l.cur != '\n' && l.cur != eof {
		l.advance()
	}
}

// reconcileIndent compares tabs to the current indent stack, queuing one
// NEWLINE (unless this is the first line of the file, before any token has
// been seen) followed by INDENT or DEDENT tokens as needed.
func (l *Lexer) reconcileIndent(tabs int, start token.Position) {
	if l.sawToken {
		l.push(Tok{Kind: token.NEWLINE, Span: token.NewSpan(l.file, start, l.pos0())})
	}

	top := l.indentStack[len(l.indentStack)-1]
	switch {
	case tabs > top:
		l.indentStack = append(l.indentStack, tabs)
		l.push(Tok{Kind: token.INDENT, Span: token.SingleSpan(l.file, l.pos0())})
	case tabs < top:
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > tabs {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			l.push(Tok{Kind: token.DEDENT, Span: token.SingleSpan(l.file, l.pos0())})
		}
		if l.indentStack[len(l.indentStack)-1] != tabs {
			l.errorf(token.SingleSpan(l.file, l.pos0()), "inconsistent indentation")
		}
	}
}

// openInlineBlock is invoked when a tab is encountered in the middle of a
// line (not at line start): it closes the current logical line with a
// NEWLINE, pushes one new indent level, and emits an INDENT, mirroring a
// line break followed by one extra tab of indentation.
func (l *Lexer) openInlineBlock() {
	pos := l.pos0()
	l.advance()
	top := l.indentStack[len(l.indentStack)-1]
	l.indentStack = append(l.indentStack, top+1)
	l.push(Tok{Kind: token.NEWLINE, Span: token.SingleSpan(l.file, pos)})
	l.push(Tok{Kind: token.INDENT, Span: token.SingleSpan(l.file, l.pos0())})
}

var singleRune = map[rune]token.Token{
	'(': token.LPAREN, ')': token.RPAREN,
	'[': token.LBRACK, ']': token.RBRACK,
	'{': token.LBRACE, '}': token.RBRACE,
	',': token.COMMA, ';': token.SEMICOLON,
}

// scanToken scans exactly one lexeme's worth of source and queues the token
// (or, for an interpolated string, the full STR_PART/INTERP_* sequence it
// produces) via push, preserving order. The cursor is guaranteed to not be
// on whitespace, a tab, a newline or eof when this is called.
func (l *Lexer) scanToken() {
	start := l.pos0()
	switch cur := l.cur; {
	case isAlpha(cur):
		l.push(l.scanIdent(start))
	case isDigit(cur) || (cur == '.' && isDigit(l.peek())):
		l.push(l.scanNumber(start))
	case cur == '"':
		l.scanString(start) // pushes its own token sequence
	case cur == '\'':
		l.push(l.scanChar(start))
	case cur == '/':
		if l.peek() == '/' {
			l.skipLineComment()
			return
		}
		if l.peek() == '*' {
			l.skipBlockComment(start)
			return
		}
		l.advance()
		if l.matchChar('=') {
			l.push(Tok{Kind: token.SLASH_EQ, Span: l.span(start)})
			return
		}
		l.push(Tok{Kind: token.SLASH, Span: l.span(start)})
	default:
		if tok, ok := singleRune[cur]; ok {
			l.advance()
			l.push(Tok{Kind: tok, Span: l.span(start)})
			return
		}
		l.push(l.scanOperator(start))
	}
}

func (l *Lexer) scanIdent(start token.Position) Tok {
	var sb strings.Builder
	for isAlpha(l.cur) || isDigit(l.cur) {
		sb.WriteRune(l.cur)
		l.advance()
	}
	lit := sb.String()
	if kw, ok := token.Keywords[lit]; ok {
		return Tok{Kind: kw, Span: l.span(start), Raw: lit}
	}
	return Tok{Kind: token.IDENT, Span: l.span(start), Raw: lit}
}

func (l *Lexer) scanOperator(start token.Position) Tok {
	cur := l.cur
	l.advance()
	mk := func(t token.Token) Tok { return Tok{Kind: t, Span: l.span(start)} }

	switch cur {
	case '+':
		if l.matchChar('=') {
			return mk(token.PLUS_EQ)
		}
		if l.matchChar('+') {
			return mk(token.INCR)
		}
		return mk(token.PLUS)
	case '-':
		if l.matchChar('=') {
			return mk(token.MINUS_EQ)
		}
		if l.matchChar('>') {
			return mk(token.ARROW)
		}
		if l.matchChar('-') {
			return mk(token.DECR)
		}
		return mk(token.MINUS)
	case '*':
		if l.matchChar('*') {
			if l.matchChar('=') {
				return mk(token.POW_EQ)
			}
			return mk(token.STARSTAR)
		}
		if l.matchChar('=') {
			return mk(token.STAR_EQ)
		}
		return mk(token.STAR)
	case '%':
		if l.matchChar('=') {
			return mk(token.PERCENT_EQ)
		}
		return mk(token.PERCENT)
	case '=':
		if l.matchChar('=') {
			return mk(token.EQL)
		}
		return mk(token.ASSIGN)
	case '!':
		if l.matchChar('=') {
			return mk(token.NEQ)
		}
		return mk(token.BANG)
	case '<':
		if l.matchChar('=') {
			return mk(token.LE)
		}
		if l.matchChar('<') {
			return mk(token.LTLT)
		}
		return mk(token.LT)
	case '>':
		if l.matchChar('=') {
			return mk(token.GE)
		}
		if l.matchChar('>') {
			return mk(token.GTGT)
		}
		return mk(token.GT)
	case '&':
		if l.matchChar('&') {
			return mk(token.AMPAMP)
		}
		return mk(token.AMPERSAND)
	case '|':
		if l.matchChar('|') {
			return mk(token.PIPEPIPE)
		}
		return mk(token.PIPE)
	case '^':
		return mk(token.CIRCUMFLEX)
	case '~':
		return mk(token.TILDE)
	case '?':
		return mk(token.QUESTION)
	case ':':
		if l.matchChar('=') {
			return mk(token.DEFINE)
		}
		return mk(token.COLON)
	case '.':
		if l.cur == '.' && l.peek() == '.' {
			l.advance()
			l.advance()
			return mk(token.DOTDOTDOT)
		}
		return mk(token.DOT)
	default:
		l.errorf(l.span(start), "unexpected character %q", cur)
		return Tok{Kind: token.ILLEGAL, Span: l.span(start)}
	}
}

func isAlpha(r rune) bool { return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
