package bindgen

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokChar
	tokPunct
	tokComment
	tokDirective
)

type token struct {
	kind    tokenKind
	text    string
	line    int // line the token starts on
	endLine int // line the token ends on, differs for block comments and continued directives
	hide    []string // macros this token came out of, never expanded again
}

func (t token) is(text string) bool { return t.kind == tokPunct && t.text == text }

func (t token) word() bool { return t.kind == tokIdent || t.kind == tokNumber }

var multiPunct = []string{"...", "::", "->", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||"}

type lexer struct {
	src       string
	pos       int
	line      int
	lineStart bool // only whitespace seen since the last newline
	toks      []token
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

// lex splits a C header into tokens. Comments and preprocessor lines are kept
// as single tokens so the parser can attach documentation and constants.
func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, lineStart: true}
	for l.pos < len(l.src) {
		if err := l.next(); err != nil {
			return nil, fmt.Errorf("line %d: %w", l.line, err)
		}
	}
	return l.toks, nil
}

func (l *lexer) emit(kind tokenKind, start, startLine int) {
	l.toks = append(l.toks, token{kind: kind, text: l.src[start:l.pos], line: startLine, endLine: l.line})
	l.lineStart = false
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) next() error {
	c := l.src[l.pos]
	start, startLine := l.pos, l.line

	switch {
	case c == '\n':
		l.pos++
		l.line++
		l.lineStart = true
		return nil
	case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
		l.pos++
		return nil
	case c == '\\' && (l.peek(1) == '\n' || (l.peek(1) == '\r' && l.peek(2) == '\n')):
		// stray line continuation outside a directive
		l.pos++
		return nil
	case c == '/' && l.peek(1) == '/':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		l.emit(tokComment, start, startLine)
		return nil
	case c == '/' && l.peek(1) == '*':
		end := strings.Index(l.src[l.pos+2:], "*/")
		if end < 0 {
			return fmt.Errorf("unterminated block comment")
		}
		l.pos += 2 + end + 2
		l.line += strings.Count(l.src[start:l.pos], "\n")
		l.emit(tokComment, start, startLine)
		return nil
	case c == '#' && l.lineStart:
		l.lexDirective()
		l.toks = append(l.toks, token{kind: tokDirective, text: l.directiveText(start), line: startLine, endLine: l.line})
		return nil
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
			l.pos++
		}
		l.emit(tokIdent, start, startLine)
		return nil
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.lexNumber()
		l.emit(tokNumber, start, startLine)
		return nil
	case c == '"' || c == '\'':
		if err := l.lexQuoted(c); err != nil {
			return err
		}
		kind := tokString
		if c == '\'' {
			kind = tokChar
		}
		l.emit(kind, start, startLine)
		return nil
	}

	for _, p := range multiPunct {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.pos += len(p)
			l.emit(tokPunct, start, startLine)
			return nil
		}
	}
	l.pos++
	l.emit(tokPunct, start, startLine)
	return nil
}

func (l *lexer) lexNumber() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isIdentChar(c) || c == '.':
			l.pos++
		case (c == '+' || c == '-') && strings.ContainsRune("eEpP", rune(l.src[l.pos-1])) && !strings.HasPrefix(l.src[l.pos-2:], "0x"):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) lexQuoted(quote byte) error {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case quote:
			l.pos++
			return nil
		case '\n':
			return fmt.Errorf("newline in literal")
		default:
			l.pos++
		}
	}
	return fmt.Errorf("unterminated literal")
}

// lexDirective consumes a preprocessor line including backslash continuations.
func (l *lexer) lexDirective() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.peek(1) == '\n' {
			l.pos += 2
			l.line++
			continue
		}
		if c == '/' && l.peek(1) == '*' {
			if end := strings.Index(l.src[l.pos+2:], "*/"); end >= 0 {
				l.line += strings.Count(l.src[l.pos:l.pos+2+end], "\n")
				l.pos += 2 + end + 2
				continue
			}
		}
		if c == '\n' {
			return
		}
		l.pos++
	}
}

// directiveText returns the directive with continuations joined and comments
// removed, e.g. "#define FOO 1".
func (l *lexer) directiveText(start int) string {
	raw := l.src[start:l.pos]
	raw = strings.ReplaceAll(raw, "\\\r\n", " ")
	raw = strings.ReplaceAll(raw, "\\\n", " ")

	var sb strings.Builder
	var quote byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(raw) {
				i++
				sb.WriteByte(raw[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			sb.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(raw) && raw[i+1] == '/' {
			break
		}
		if c == '/' && i+1 < len(raw) && raw[i+1] == '*' {
			if end := strings.Index(raw[i+2:], "*/"); end >= 0 {
				sb.WriteByte(' ')
				i += 2 + end + 1
				continue
			}
			break
		}
		sb.WriteByte(c)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
