package calc

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// SyntaxError reports malformed input. Pos is the byte offset of the offending token.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid syntax: %s at position %d", e.Msg, e.Pos)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokFloorDiv
	tokPow
	tokLParen
	tokRParen
)

var tokenText = map[tokenKind]string{
	tokEOF:      "end of expression",
	tokPlus:     "'+'",
	tokMinus:    "'-'",
	tokStar:     "'*'",
	tokSlash:    "'/'",
	tokFloorDiv: "'//'",
	tokPow:      "'**'",
	tokLParen:   "'('",
	tokRParen:   "')'",
}

var singleCharTokens = map[byte]tokenKind{
	'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash, '(': tokLParen, ')': tokRParen,
}

// maxDepth bounds nesting of parentheses and unary operators.
const maxDepth = 200

type token struct {
	kind tokenKind
	pos  int
	text string
	num  Number
}

func (t token) String() string {
	if t.kind == tokNumber {
		return "number " + t.text
	}
	return tokenText[t.kind]
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ':
			i++
		case isDigit(c) || c == '.':
			start := i
			for i < len(expr) && (isDigit(expr[i]) || expr[i] == '.') {
				i++
			}
			lit := expr[start:i]
			n, err := parseNumber(lit, start)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokNumber, pos: start, text: lit, num: n})
		case c == '*' && i+1 < len(expr) && expr[i+1] == '*':
			toks = append(toks, token{kind: tokPow, pos: i})
			i += 2
		case c == '/' && i+1 < len(expr) && expr[i+1] == '/':
			toks = append(toks, token{kind: tokFloorDiv, pos: i})
			i += 2
		default:
			kind, ok := singleCharTokens[c]
			if !ok {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
			}
			toks = append(toks, token{kind: kind, pos: i})
			i++
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(expr)}), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func parseNumber(lit string, pos int) (Number, error) {
	switch strings.Count(lit, ".") {
	case 0:
		// Decimal integers other than zero cannot start with 0
		if len(lit) > 1 && lit[0] == '0' && strings.Trim(lit, "0") != "" {
			return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("leading zeros in integer %q", lit)}
		}
		v, ok := new(big.Int).SetString(lit, 10)
		if !ok {
			return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid number %q", lit)}
		}
		return bigInt(v), nil
	case 1:
		if lit == "." {
			return Number{}, &SyntaxError{Pos: pos, Msg: "unexpected '.'"}
		}
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Number{}, ErrOutOfRange
			}
			return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid number %q", lit)}
		}
		return Float(f), nil
	default:
		return Number{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid number %q", lit)}
	}
}

// node is an evaluable expression tree. Parsing completes before evaluation,
// so syntax errors take precedence over arithmetic errors.
type node interface {
	eval() (Number, error)
}

type literal struct{ n Number }

func (l literal) eval() (Number, error) { return l.n, nil }

type unaryOp struct {
	negate  bool
	operand node
}

func (u unaryOp) eval() (Number, error) {
	v, err := u.operand.eval()
	if err != nil || !u.negate {
		return v, err
	}
	return neg(v), nil
}

type binaryOp struct {
	op          tokenKind
	left, right node
}

func (b binaryOp) eval() (Number, error) {
	l, err := b.left.eval()
	if err != nil {
		return Number{}, err
	}
	r, err := b.right.eval()
	if err != nil {
		return Number{}, err
	}
	switch b.op {
	case tokPlus:
		return add(l, r)
	case tokMinus:
		return sub(l, r)
	case tokStar:
		return mul(l, r)
	case tokSlash:
		return div(l, r)
	case tokFloorDiv:
		return floorDiv(l, r)
	case tokPow:
		return pow(l, r)
	}
	return Number{}, fmt.Errorf("unknown operator %s", tokenText[b.op])
}

// parser implements:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/' | '//') unary)*
//	unary   := ('+' | '-') unary | power
//	power   := primary ('**' unary)?
//	primary := number | '(' expr ')'
type parser struct {
	toks  []token
	pos   int
	depth int
}

func parse(expr string) (node, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.unexpected(tok)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) enter(tok token) error {
	p.depth++
	if p.depth > maxDepth {
		return &SyntaxError{Pos: tok.pos, Msg: "expression nested too deeply"}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) unexpected(tok token) error {
	return &SyntaxError{Pos: tok.pos, Msg: "unexpected " + tok.String()}
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash && op != tokFloorDiv {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) unary() (node, error) {
	switch p.peek().kind {
	case tokPlus, tokMinus:
		tok := p.next()
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryOp{negate: tok.kind == tokMinus, operand: operand}, nil
	}
	return p.power()
}

func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	if err := p.enter(p.next()); err != nil {
		return nil, err
	}
	defer p.leave()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return binaryOp{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return literal{n: tok.num}, nil
	case tokLParen:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			if closing.kind == tokEOF {
				return nil, &SyntaxError{Pos: tok.pos, Msg: "unclosed '('"}
			}
			return nil, p.unexpected(closing)
		}
		return inner, nil
	}
	return nil, p.unexpected(tok)
}
