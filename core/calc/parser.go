package calc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var out []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			out = append(out, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			out = append(out, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			out = append(out, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '`':
			end := i + 1
			for end < len(runes) && runes[end] != '`' {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("unterminated quoted field at position %d", i)
			}
			out = append(out, token{kind: tokIdent, text: strings.TrimSpace(string(runes[i+1 : end])), pos: i})
			i = end + 1
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			out = append(out, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			out = append(out, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(runes)})
	return out, nil
}

// node is an arithmetic expression tree element.
type node interface {
	eval(lookup func(name string) decimal.Decimal) (decimal.Decimal, bool)
}

type numberNode struct{ v decimal.Decimal }

func (n numberNode) eval(func(string) decimal.Decimal) (decimal.Decimal, bool) { return n.v, true }

type fieldNode struct {
	name string
}

func (n fieldNode) eval(lookup func(string) decimal.Decimal) (decimal.Decimal, bool) {
	return lookup(n.name), true
}

type negNode struct{ x node }

func (n negNode) eval(lookup func(string) decimal.Decimal) (decimal.Decimal, bool) {
	v, ok := n.x.eval(lookup)
	return v.Neg(), ok
}

type binaryNode struct {
	op   byte
	l, r node
}

func (n binaryNode) eval(lookup func(string) decimal.Decimal) (decimal.Decimal, bool) {
	l, ok := n.l.eval(lookup)
	if !ok {
		return decimal.Zero, false
	}
	r, ok := n.r.eval(lookup)
	if !ok {
		return decimal.Zero, false
	}
	switch n.op {
	case '+':
		return l.Add(r), true
	case '-':
		return l.Sub(r), true
	case '*':
		return l.Mul(r), true
	default:
		if r.IsZero() {
			return decimal.Zero, false
		}
		return l.Div(r), true
	}
}

// parser is a recursive-descent parser for + - * / with parentheses and unary signs.
type parser struct {
	toks   []token
	i      int
	fields []string
	seen   map[string]struct{}
}

func parseArithmetic(src string) (node, []string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks, seen: make(map[string]struct{})}
	root, err := p.expr()
	if err != nil {
		return nil, nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
	return root, p.fields, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text[0], l: left, r: right}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text[0], l: left, r: right}
	}
}

func (p *parser) unary() (node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return negNode{x: x}, nil
		}
		return x, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
		}
		return numberNode{v: v}, nil
	case tokIdent:
		if t.text == "" {
			return nil, fmt.Errorf("empty field name at position %d", t.pos)
		}
		if _, ok := p.seen[t.text]; !ok {
			p.seen[t.text] = struct{}{}
			p.fields = append(p.fields, t.text)
		}
		return fieldNode{name: t.text}, nil
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
