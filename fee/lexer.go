package fee

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemIdentifier // verbs, keywords, glyph names, tags
	itemInteger
	itemString     // "quoted", value without quotes
	itemClass      // @name, value without '@'
	itemAnchor     // &name, value without '&'
	itemRoutineRef // ^name, value without '^'
	itemRegex      // /regex/, value without slashes
	itemUnicode    // U+XXXX, value is the hex part
	itemSuffix     // .suffix or ~suffix, attached to the preceding selector
	itemArrow      // ->
	itemSemicolon
	itemComma
	itemEquals
	itemLess
	itemGreater
	itemLessEq
	itemGreaterEq
	itemPipe
	itemAmp
	itemSlash
	itemBraceOpen
	itemBraceClose
	itemBracketOpen
	itemBracketClose
	itemParenOpen
	itemParenClose
)

var itemNames = map[itemType]string{
	itemError: "error", itemEOF: "end of input", itemIdentifier: "identifier",
	itemInteger: "integer", itemString: "string", itemClass: "class",
	itemAnchor: "anchor", itemRoutineRef: "routine reference", itemRegex: "regex",
	itemUnicode: "code point", itemSuffix: "suffix", itemArrow: "'->'",
	itemSemicolon: "';'", itemComma: "','", itemEquals: "'='", itemLess: "'<'",
	itemGreater: "'>'", itemLessEq: "'<='", itemGreaterEq: "'>='", itemPipe: "'|'",
	itemAmp: "'&'", itemSlash: "'/'", itemBraceOpen: "'{'", itemBraceClose: "'}'",
	itemBracketOpen: "'['", itemBracketClose: "']'", itemParenOpen: "'('",
	itemParenClose: "')'",
}

func (t itemType) String() string {
	if s, ok := itemNames[t]; ok {
		return s
	}
	return fmt.Sprintf("item(%d)", int(t))
}

// item is a token of FEE source.
type item struct {
	typ       itemType
	val       string
	line, col int
	off       int  // byte offset into the source
	spaced    bool // whitespace or start of input precedes the item
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "end of input"
	case itemError:
		return i.val
	case itemIdentifier, itemInteger:
		return fmt.Sprintf("%q", i.val)
	case itemClass:
		return "@" + i.val
	case itemAnchor:
		return "&" + i.val
	case itemRoutineRef:
		return "^" + i.val
	case itemRegex:
		return "/" + i.val + "/"
	case itemUnicode:
		return "U+" + i.val
	}
	return i.typ.String()
}

// lexer splits FEE source into items. It stops at the first error, which is
// delivered as an item of type itemError.
type lexer struct {
	input     string
	pos       int
	start     int // offset of the item being lexed
	line, col int
	items     []item
	prev      itemType
	spaced    bool
}

func lex(input string) []item {
	l := &lexer{input: input, line: 1, col: 1, prev: itemEOF, spaced: true}
	for l.next() {
	}
	return l.items
}

func (l *lexer) peekRune(ahead int) rune {
	p := l.pos
	var r rune
	for i := 0; i <= ahead; i++ {
		if p >= len(l.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(l.input[p:])
		p += w
	}
	return r
}

func (l *lexer) advance() rune {
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) emit(typ itemType, val string, line, col int) {
	l.items = append(l.items, item{typ: typ, val: val, line: line, col: col, off: l.start, spaced: l.spaced})
	l.prev = typ
	l.spaced = false
}

func (l *lexer) errorf(line, col int, format string, args ...any) bool {
	l.items = append(l.items, item{typ: itemError, val: fmt.Sprintf(format, args...), line: line, col: col, off: l.start})
	return false
}

// next lexes one item and reports whether lexing should continue.
func (l *lexer) next() bool {
	for l.pos < len(l.input) {
		r := l.peekRune(0)
		if r == '#' {
			for l.pos < len(l.input) && l.peekRune(0) != '\n' {
				l.advance()
			}
			continue
		}
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			break
		}
		l.advance()
		l.spaced = true
	}
	line, col := l.line, l.col
	l.start = l.pos
	if l.pos >= len(l.input) {
		l.emit(itemEOF, "", line, col)
		return false
	}
	r := l.peekRune(0)
	switch {
	case r == ';':
		l.single(itemSemicolon)
	case r == ',':
		l.single(itemComma)
	case r == '=':
		l.single(itemEquals)
	case r == '|':
		l.single(itemPipe)
	case r == '{':
		l.single(itemBraceOpen)
	case r == '}':
		l.single(itemBraceClose)
	case r == '[':
		l.single(itemBracketOpen)
	case r == ']':
		l.single(itemBracketClose)
	case r == '(':
		l.single(itemParenOpen)
	case r == ')':
		l.single(itemParenClose)
	case r == '<' || r == '>':
		l.advance()
		typ := map[rune]itemType{'<': itemLess, '>': itemGreater}[r]
		if l.peekRune(0) == '=' {
			l.advance()
			typ = map[rune]itemType{'<': itemLessEq, '>': itemGreaterEq}[r]
		}
		l.emit(typ, "", line, col)
	case r == '/':
		if l.regexAllowed() {
			return l.regex(line, col)
		}
		l.single(itemSlash)
	case r == '"':
		return l.quoted(line, col)
	case r == '@' || r == '^' || r == '&':
		l.advance()
		name := l.word(isNameRune)
		if name == "" {
			if r == '&' {
				l.emit(itemAmp, "", line, col)
				return true
			}
			return l.errorf(line, col, "expected name after %q", r)
		}
		l.emit(map[rune]itemType{'@': itemClass, '^': itemRoutineRef, '&': itemAnchor}[r], name, line, col)
	case r == '~' || (r == '.' && !l.spaced):
		l.advance()
		suffix := l.word(isNameRune)
		if suffix == "" {
			return l.errorf(line, col, "empty suffix")
		}
		l.emit(itemSuffix, string(r)+suffix, line, col)
	case r == '-':
		if l.peekRune(1) == '>' {
			l.advance()
			l.advance()
			l.emit(itemArrow, "", line, col)
			return true
		}
		if isDigit(l.peekRune(1)) {
			l.advance()
			l.emit(itemInteger, "-"+l.word(isDigit), line, col)
			return true
		}
		return l.errorf(line, col, "unexpected '-'")
	case r == 'U' && l.peekRune(1) == '+':
		l.advance()
		l.advance()
		hex := l.word(isHexDigit)
		if hex == "" {
			return l.errorf(line, col, "expected hex digits after U+")
		}
		l.emit(itemUnicode, hex, line, col)
	case isGlyphRune(r):
		w := l.word(isGlyphRune)
		if strings.IndexFunc(w, func(r rune) bool { return !isDigit(r) }) < 0 {
			l.emit(itemInteger, w, line, col)
		} else {
			l.emit(itemIdentifier, w, line, col)
		}
	default:
		return l.errorf(line, col, "unexpected character %q", r)
	}
	return true
}

func (l *lexer) single(typ itemType) {
	line, col := l.line, l.col
	l.advance()
	l.emit(typ, "", line, col)
}

// word consumes runes as long as accept says so. Inside glyph names a '-' is
// accepted unless it starts an arrow.
func (l *lexer) word(accept func(rune) bool) string {
	start := l.pos
	for l.pos < len(l.input) {
		r := l.peekRune(0)
		if !accept(r) || (r == '-' && l.peekRune(1) == '>') {
			break
		}
		l.advance()
	}
	return l.input[start:l.pos]
}

// regexAllowed tells a regex from a slash: a regex starts after whitespace
// or after one of the tokens which may precede a selector.
func (l *lexer) regexAllowed() bool {
	if l.spaced {
		return true
	}
	switch l.prev {
	case itemBracketOpen, itemBraceOpen, itemParenOpen, itemEquals, itemComma, itemPipe, itemAmp:
		return true
	}
	return false
}

func (l *lexer) regex(line, col int) bool {
	l.advance()
	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return l.errorf(line, col, "unterminated regular expression")
		}
		r := l.advance()
		switch r {
		case '\n':
			return l.errorf(line, col, "unterminated regular expression")
		case '\\':
			if l.peekRune(0) == '/' {
				l.advance()
				sb.WriteRune('/')
				continue
			}
		case '/':
			l.emit(itemRegex, sb.String(), line, col)
			return true
		}
		sb.WriteRune(r)
	}
}

func (l *lexer) quoted(line, col int) bool {
	l.advance()
	start := l.pos
	for l.pos < len(l.input) {
		if r := l.peekRune(0); r == '"' {
			s := l.input[start:l.pos]
			l.advance()
			l.emit(itemString, s, line, col)
			return true
		} else if r == '\n' {
			break
		}
		l.advance()
	}
	return l.errorf(line, col, "unterminated string")
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isNameRune(r rune) bool {
	return r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isGlyphRune accepts the characters of glyph names as they appear in
// 'post' tables, plus '#' for disambiguated duplicates.
func isGlyphRune(r rune) bool {
	return isNameRune(r) || r == '.' || r == '-' || r == '#' || r == '*' || r == '+'
}
