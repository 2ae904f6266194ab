package calculator

import (
	"fmt"
	"strconv"
	"strings"
)

// The accepted grammar, self-contained so it can be audited without
// reference to any host-language parser:
//
//	expression := term (("+" | "-") term)*
//	term       := factor (("*" | "/" | "//" | "%") factor)*
//	factor     := ("+" | "-") factor | power
//	power      := primary ("**" factor)?
//	primary    := number | "(" expression ")"
//
// "**" is right-associative and binds tighter than a leading unary minus,
// so -2**2 evaluates to -4.

// node is the tagged-union expression tree produced by the parser.
type node interface{ isNode() }

type literal struct {
	value float64
}

type unaryOp struct {
	negate  bool
	operand node
}

type binaryOp struct {
	op    binOp
	left  node
	right node
}

func (literal) isNode()  {}
func (unaryOp) isNode()  {}
func (binaryOp) isNode() {}

// binOp enumerates the binary operators.
type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
	opFloorDiv
	opMod
	opPow
)

func (op binOp) String() string {
	switch op {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	case opDiv:
		return "/"
	case opFloorDiv:
		return "//"
	case opMod:
		return "%"
	case opPow:
		return "**"
	default:
		return "?"
	}
}

// Token kinds. Multi-character operators ("**", "//") are resolved during
// scanning so the parser never has to look ahead.
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokDoubleStar
	tokSlash
	tokDoubleSlash
	tokPercent
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	value float64 // set for tokNumber
	text  string
	pos   int
}

// scan tokenises the expression. Input has already passed the character
// whitelist, so anything unexpected here is a structural error, not a
// foreign character.
func scan(expression string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(expression) {
		ch := expression[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n':
			i++

		case ch >= '0' && ch <= '9' || ch == '.':
			start := i
			for i < len(expression) && (expression[i] >= '0' && expression[i] <= '9' || expression[i] == '.') {
				i++
			}
			text := expression[start:i]
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number literal %q at position %d", text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, value: value, text: text, pos: start})

		case ch == '+':
			tokens = append(tokens, token{kind: tokPlus, text: "+", pos: i})
			i++
		case ch == '-':
			tokens = append(tokens, token{kind: tokMinus, text: "-", pos: i})
			i++
		case ch == '*':
			if i+1 < len(expression) && expression[i+1] == '*' {
				tokens = append(tokens, token{kind: tokDoubleStar, text: "**", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokStar, text: "*", pos: i})
				i++
			}
		case ch == '/':
			if i+1 < len(expression) && expression[i+1] == '/' {
				tokens = append(tokens, token{kind: tokDoubleSlash, text: "//", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokSlash, text: "/", pos: i})
				i++
			}
		case ch == '%':
			tokens = append(tokens, token{kind: tokPercent, text: "%", pos: i})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++

		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", string(ch), i)
		}
	}

	tokens = append(tokens, token{kind: tokEOF, text: "end of expression", pos: len(expression)})
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

// parseExpression parses the full expression and requires that every token
// is consumed; trailing garbage is a syntax error.
func parseExpression(expression string) (node, error) {
	tokens, err := scan(expression)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	root, err := p.expression()
	if err != nil {
		return nil, err
	}

	if remaining := p.peek(); remaining.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", remaining.text, remaining.pos)
	}

	return root, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expression() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		var op binOp
		switch p.peek().kind {
		case tokPlus:
			op = opAdd
		case tokMinus:
			op = opSub
		default:
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
	left, err := p.factor()
	if err != nil {
		return nil, err
	}

	for {
		var op binOp
		switch p.peek().kind {
		case tokStar:
			op = opMul
		case tokSlash:
			op = opDiv
		case tokDoubleSlash:
			op = opFloorDiv
		case tokPercent:
			op = opMod
		default:
			return left, nil
		}
		p.next()

		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) factor() (node, error) {
	switch p.peek().kind {
	case tokPlus:
		p.next()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return unaryOp{negate: false, operand: operand}, nil

	case tokMinus:
		p.next()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return unaryOp{negate: true, operand: operand}, nil

	default:
		return p.power()
	}
}

func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tokDoubleStar {
		return base, nil
	}
	p.next()

	// Right-associative: the exponent is a factor, so 2**3**2 == 2**(3**2)
	// and 2**-1 parses.
	exponent, err := p.factor()
	if err != nil {
		return nil, err
	}

	return binaryOp{op: opPow, left: base, right: exponent}, nil
}

func (p *parser) primary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return literal{value: t.value}, nil

	case tokLParen:
		p.next()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokRParen {
			return nil, fmt.Errorf("expected closing parenthesis at position %d, found %q", closing.pos, closing.text)
		}
		p.next()
		return inner, nil

	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}

// describeTokens is a debugging aid used by tests.
func describeTokens(tokens []token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.text)
	}
	return strings.Join(parts, " ")
}
