package lexer

import "github.com/stoutes/chapel/internal/source"

type Kind int

const (
	TokenEOF Kind = iota
	TokenBad

	// Literals / identifiers
	TokenIdent
	TokenInt

	// Keywords
	TokenOwned
	TokenShared
	TokenBorrowed
	TokenUnmanaged
	TokenDomain
	TokenCPtr
	TokenCPtrConst

	// Punct
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenDot
	TokenQuestion
)

var kindNames = [...]string{
	TokenEOF:       "end of input",
	TokenBad:       "invalid token",
	TokenIdent:     "identifier",
	TokenInt:       "integer",
	TokenOwned:     "`owned`",
	TokenShared:    "`shared`",
	TokenBorrowed:  "`borrowed`",
	TokenUnmanaged: "`unmanaged`",
	TokenDomain:    "`domain`",
	TokenCPtr:      "`c_ptr`",
	TokenCPtrConst: "`c_ptrConst`",
	TokenLParen:    "`(`",
	TokenRParen:    "`)`",
	TokenLBracket:  "`[`",
	TokenRBracket:  "`]`",
	TokenComma:     "`,`",
	TokenDot:       "`.`",
	TokenQuestion:  "`?`",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "token"
}

type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsDecorator reports whether t is one of the class management keywords.
func (t Token) IsDecorator() bool {
	switch t.Kind {
	case TokenOwned, TokenShared, TokenBorrowed, TokenUnmanaged:
		return true
	}
	return false
}
