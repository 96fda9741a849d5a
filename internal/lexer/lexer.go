package lexer

import (
	"unicode"

	"github.com/stoutes/chapel/internal/source"
)

// Lex splits a type expression such as `[domain(2)] owned C?` into tokens.
// The last token is always TokenEOF.
func Lex(file *source.File) []Token {
	lx := &lexer{file: file, input: file.Input}
	for {
		lx.skipSpace()
		start := lx.pos
		if lx.pos >= len(lx.input) {
			lx.emit(TokenEOF, "", start, start)
			break
		}
		ch := lx.peek()
		switch {
		case isIdentStart(ch):
			lx.lexIdentOrKeyword()
		case isDigit(ch):
			lx.lexInt()
		default:
			lx.lexPunct()
		}
	}
	return lx.tokens
}

type lexer struct {
	file   *source.File
	input  string
	pos    int
	tokens []Token
}

func (lx *lexer) peek() byte { return lx.input[lx.pos] }

func (lx *lexer) next() byte {
	ch := lx.input[lx.pos]
	lx.pos++
	return ch
}

func (lx *lexer) emit(k Kind, lex string, start, end int) {
	lx.tokens = append(lx.tokens, Token{
		Kind:   k,
		Lexeme: lex,
		Span:   source.Span{File: lx.file, Start: start, End: end},
	})
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.input) {
		switch lx.input[lx.pos] {
		case ' ', '\t', '\n', '\r':
			lx.pos++
		default:
			return
		}
	}
}

var keywords = map[string]Kind{
	"owned":      TokenOwned,
	"shared":     TokenShared,
	"borrowed":   TokenBorrowed,
	"unmanaged":  TokenUnmanaged,
	"domain":     TokenDomain,
	"c_ptr":      TokenCPtr,
	"c_ptrConst": TokenCPtrConst,
}

func (lx *lexer) lexIdentOrKeyword() {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		lx.pos++
	}
	lex := lx.input[start:lx.pos]
	if k, ok := keywords[lex]; ok {
		lx.emit(k, lex, start, lx.pos)
		return
	}
	lx.emit(TokenIdent, lex, start, lx.pos)
}

func (lx *lexer) lexInt() {
	start := lx.pos
	for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
		lx.pos++
	}
	lx.emit(TokenInt, lx.input[start:lx.pos], start, lx.pos)
}

func (lx *lexer) lexPunct() {
	start := lx.pos
	ch := lx.next()
	switch ch {
	case '(':
		lx.emit(TokenLParen, "(", start, lx.pos)
	case ')':
		lx.emit(TokenRParen, ")", start, lx.pos)
	case '[':
		lx.emit(TokenLBracket, "[", start, lx.pos)
	case ']':
		lx.emit(TokenRBracket, "]", start, lx.pos)
	case ',':
		lx.emit(TokenComma, ",", start, lx.pos)
	case '.':
		lx.emit(TokenDot, ".", start, lx.pos)
	case '?':
		lx.emit(TokenQuestion, "?", start, lx.pos)
	default:
		lx.emit(TokenBad, string(ch), start, lx.pos)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
