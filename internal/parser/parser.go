// Package parser reads the type expressions that appear in program
// descriptions: field types, formal types and method receivers.
package parser

import (
	"strconv"

	"github.com/stoutes/chapel/internal/diag"
	"github.com/stoutes/chapel/internal/lexer"
	"github.com/stoutes/chapel/internal/source"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

type Parser struct {
	file  *source.File
	toks  []lexer.Token
	pos   int
	diags *diag.Bag
}

func newParser(file *source.File) *Parser {
	return &Parser{file: file, toks: lexer.Lex(file), diags: &diag.Bag{}}
}

// ParseType parses a whole file as one type expression. The result is nil
// only when no type could be recovered; the bag lists every problem.
func ParseType(file *source.File) (uast.TypeExpr, *diag.Bag) {
	p := newParser(file)
	ty := p.parseType()
	p.expectEnd()
	return ty, p.diags
}

// ParseQualified parses an optional intent followed by a type expression,
// e.g. `const ref R(int)` or `type int`. Without an intent the default
// intent is returned.
func ParseQualified(file *source.File) (types.Intent, uast.TypeExpr, *diag.Bag) {
	p := newParser(file)
	intent := p.parseIntent()
	ty := p.parseType()
	p.expectEnd()
	return intent, ty, p.diags
}

// String is ParseType over an inline string, for tests and the CLI.
func String(origin, text string) (uast.TypeExpr, *diag.Bag) {
	return ParseType(source.NewFile(origin, text))
}

func (p *Parser) parseIntent() types.Intent {
	tok := p.peek()
	if tok.Kind != lexer.TokenIdent {
		return types.IntentDefault
	}
	switch tok.Lexeme {
	case "const":
		next := p.peekN(1)
		if next.Kind == lexer.TokenIdent && (next.Lexeme == "ref" || next.Lexeme == "in") {
			p.pos += 2
			in, _ := types.ParseIntent("const " + next.Lexeme)
			return in
		}
		if p.startsType(next) {
			p.pos++
			return types.IntentConstIn
		}
	case "ref", "in", "type", "param", "var":
		if p.startsType(p.peekN(1)) {
			p.pos++
			in, _ := types.ParseIntent(tok.Lexeme)
			return in
		}
	}
	return types.IntentDefault
}

func (p *Parser) startsType(t lexer.Token) bool {
	switch t.Kind {
	case lexer.TokenIdent, lexer.TokenLParen, lexer.TokenLBracket,
		lexer.TokenDomain, lexer.TokenCPtr, lexer.TokenCPtrConst:
		return true
	}
	return t.IsDecorator()
}

func (p *Parser) parseType() uast.TypeExpr {
	if p.peek().IsDecorator() {
		decTok := p.advance()
		inner := p.parsePrimary()
		if inner == nil {
			return nil
		}
		ct := &uast.ClassType{Decorator: decTok.Lexeme, Inner: inner, S: source.Join(decTok.Span, inner.Span())}
		if p.match(lexer.TokenQuestion) {
			ct.Nilable = true
			ct.S = source.Join(ct.S, p.prev().Span)
		}
		return ct
	}
	ty := p.parsePrimary()
	if ty == nil {
		return nil
	}
	if p.match(lexer.TokenQuestion) {
		return &uast.ClassType{Inner: ty, Nilable: true, S: source.Join(ty.Span(), p.prev().Span)}
	}
	return ty
}

func (p *Parser) parsePrimary() uast.TypeExpr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenIdent:
		return p.parseNamed()
	case lexer.TokenLParen:
		return p.parseTuple()
	case lexer.TokenLBracket:
		return p.parseArray()
	case lexer.TokenDomain:
		p.advance()
		p.expect(lexer.TokenLParen, "expected `(` after `domain`")
		args, end := p.parseArgs(true)
		if len(args) == 0 {
			p.errorAt(tok.Span, "expected `domain(...)` with a rank or index type")
		}
		return &uast.DomainType{Args: args, S: source.Join(tok.Span, end)}
	case lexer.TokenCPtr, lexer.TokenCPtrConst:
		p.advance()
		p.expect(lexer.TokenLParen, "expected `(` after "+tok.Kind.String())
		elem := p.parseType()
		end := p.expect(lexer.TokenRParen, "expected `)` to close "+tok.Kind.String())
		if elem == nil {
			return nil
		}
		return &uast.PtrType{Const: tok.Kind == lexer.TokenCPtrConst, Elem: elem, S: source.Join(tok.Span, end.Span)}
	}
	p.errorHere("expected type, found " + describe(tok))
	p.advance()
	return nil
}

func (p *Parser) parseNamed() uast.TypeExpr {
	first := p.advance()
	nt := &uast.NamedType{Parts: []string{first.Lexeme}, S: first.Span}
	for p.match(lexer.TokenDot) {
		part := p.expect(lexer.TokenIdent, "expected identifier after `.`")
		if part.Kind != lexer.TokenIdent {
			break
		}
		nt.Parts = append(nt.Parts, part.Lexeme)
		nt.S = source.Join(nt.S, part.Span)
	}
	if p.at(lexer.TokenLParen) {
		p.advance()
		args, end := p.parseArgs(true)
		nt.Args = args
		nt.S = source.Join(nt.S, end)
	}
	return nt
}

// parseArgs parses a comma-separated argument list after an opening `(`
// and consumes the closing `)`. Integer literals are allowed when lits is set.
func (p *Parser) parseArgs(lits bool) ([]uast.TypeExpr, source.Span) {
	var args []uast.TypeExpr
	if p.match(lexer.TokenRParen) {
		return args, p.prev().Span
	}
	for {
		if lits && p.at(lexer.TokenInt) {
			tok := p.advance()
			n, err := strconv.Atoi(tok.Lexeme)
			if err != nil {
				p.errorAt(tok.Span, "integer literal out of range")
			}
			args = append(args, &uast.IntLit{Value: n, S: tok.Span})
		} else if ty := p.parseType(); ty != nil {
			args = append(args, ty)
		}
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	end := p.expect(lexer.TokenRParen, "expected `,` or `)` in argument list")
	return args, end.Span
}

func (p *Parser) parseTuple() uast.TypeExpr {
	open := p.advance()
	var elems []uast.TypeExpr
	trailingComma := false
	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		trailingComma = false
		if ty := p.parseType(); ty != nil {
			elems = append(elems, ty)
		} else {
			break
		}
		if !p.match(lexer.TokenComma) {
			break
		}
		trailingComma = true
	}
	end := p.expect(lexer.TokenRParen, "expected `)` to close tuple type")
	// `(T)` is just T; `(T,)` is a one-tuple.
	if len(elems) == 1 && !trailingComma {
		return elems[0]
	}
	if len(elems) == 0 {
		p.errorAt(open.Span, "empty tuple type")
	}
	return &uast.TupleType{Elems: elems, S: source.Join(open.Span, end.Span)}
}

func (p *Parser) parseArray() uast.TypeExpr {
	open := p.advance()
	dom := p.parseType()
	p.expect(lexer.TokenRBracket, "expected `]` after array domain")
	elem := p.parseType()
	if dom == nil || elem == nil {
		return nil
	}
	return &uast.ArrayType{Domain: dom, Elem: elem, S: source.Join(open.Span, elem.Span())}
}

func (p *Parser) expectEnd() {
	if !p.at(lexer.TokenEOF) {
		p.errorHere("unexpected " + describe(p.peek()) + " after type")
	}
}

func describe(t lexer.Token) string {
	switch t.Kind {
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenBad:
		return t.Kind.String() + " `" + t.Lexeme + "`"
	}
	return t.Kind.String()
}

// helpers
func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) prev() lexer.Token { return p.toks[p.pos-1] }

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind, msg string) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorAt(p.peek().Span, msg)
	return p.peek()
}

func (p *Parser) errorHere(msg string) {
	p.errorAt(p.peek().Span, msg)
}

func (p *Parser) errorAt(s source.Span, msg string) {
	p.diags.AddAt(s, msg)
}
