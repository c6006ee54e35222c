// Arithmetic used by the aperture macros.
// Expressions consist of numbers, the macro variables $1..$N, the operators
// + - x X * / (unary + and - included) and parentheses.
package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrSyntax         = errors.New("calculator: syntax error")
	ErrVariableRange  = errors.New("calculator: variable is out of range")
	ErrDivisionByZero = errors.New("calculator: division by zero")
)

type Calculator interface {
	Calc(vars []float64) (float64, error)
}

// Operand is a leaf (constant or variable) or a link to an operation
type Operand struct {
	variable  int // $N, 0 means constant
	value     float64
	operation *Operation
}

func (op *Operand) Calc(vars []float64) (float64, error) {
	if op.operation != nil {
		return op.operation.Calc(vars)
	}
	if op.variable == 0 {
		return op.value, nil
	}
	if op.variable > len(vars) {
		return 0, fmt.Errorf("%w: $%d, %d parameter(s) supplied", ErrVariableRange, op.variable, len(vars))
	}
	return vars[op.variable-1], nil
}

type Operation struct {
	firstOperand  *Operand
	secondOperand *Operand
	operation     OpCode
}

type OpCode int

const (
	Nop OpCode = iota
	Add OpCode = iota + 1
	Sub
	Mul
	Div
	Neg
	Plus
)

func (oc OpCode) String() string {
	switch oc {
	case Add, Plus:
		return "+ "
	case Sub, Neg:
		return "- "
	case Mul:
		return "x "
	case Div:
		return "/ "
	case Nop:
		return "<nop> "
	default:
	}
	return "bad OpCode "
}

func (op *Operation) Calc(vars []float64) (float64, error) {
	if op.firstOperand == nil {
		return 0, errors.New("calculator: first operand = nil")
	}
	a, err := op.firstOperand.Calc(vars)
	if err != nil {
		return 0, err
	}
	switch op.operation {
	case Neg:
		return -a, nil
	case Plus:
		return a, nil
	}
	if op.secondOperand == nil {
		return 0, errors.New("calculator: second operand = nil")
	}
	b, err := op.secondOperand.Calc(vars)
	if err != nil {
		return 0, err
	}
	switch op.operation {
	case Add:
		return a + b, nil
	case Sub:
		return a - b, nil
	case Mul:
		return a * b, nil
	case Div:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
	}
	return 0, errors.New("calculator: bad opcode " + strconv.Itoa(int(op.operation)))
}

// NewOperand parses str into an expression tree
func NewOperand(str string) (*Operand, error) {
	p := &parser{src: str}
	retVal, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected symbol")
	}
	return retVal, nil
}

// CalcExpression parses and evaluates str, vars[0] is $1
func CalcExpression(str string, vars []float64) (float64, error) {
	op, err := NewOperand(str)
	if err != nil {
		return 0, err
	}
	return op.Calc(vars)
}

// IsAssignment reports whether str looks like $N=expr
func IsAssignment(str string) bool {
	str = strings.TrimSpace(str)
	return strings.HasPrefix(str, "$") && strings.IndexByte(str, '=') > 0
}

// Assign evaluates the statement $N=expr against vars and returns the updated variables.
// The slice is extended with zeros when N is beyond its end.
func Assign(str string, vars []float64) ([]float64, error) {
	str = strings.TrimSpace(str)
	eq := strings.IndexByte(str, '=')
	if !strings.HasPrefix(str, "$") || eq < 0 {
		return vars, fmt.Errorf("%w: %q is not an assignment", ErrSyntax, str)
	}
	n, err := strconv.Atoi(strings.TrimSpace(str[1:eq]))
	if err != nil || n < 1 {
		return vars, fmt.Errorf("%w: bad variable name in %q", ErrSyntax, str)
	}
	val, err := CalcExpression(str[eq+1:], vars)
	if err != nil {
		return vars, err
	}
	for len(vars) < n {
		vars = append(vars, 0)
	}
	vars[n-1] = val
	return vars, nil
}

/*
	recursive descent:
	expression := term { (+|-) term }
	term       := unary { (x|X|*|/) unary }
	unary      := (+|-) unary | primary
	primary    := number | $N | ( expression )
*/
type parser struct {
	src string
	pos int
}

func (p *parser) fail(msg string) error {
	return fmt.Errorf("%w: %s at %d in %q", ErrSyntax, msg, p.pos, p.src)
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpaces()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) expression() (*Operand, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var opCode OpCode
		switch p.peek() {
		case '+':
			opCode = Add
		case '-':
			opCode = Sub
		default:
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Operand{operation: &Operation{left, right, opCode}}
	}
}

func (p *parser) term() (*Operand, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var opCode OpCode
		switch p.peek() {
		case 'x', 'X', '*':
			opCode = Mul
		case '/':
			opCode = Div
		default:
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Operand{operation: &Operation{left, right, opCode}}
	}
}

func (p *parser) unary() (*Operand, error) {
	var opCode OpCode
	switch p.peek() {
	case '-':
		opCode = Neg
	case '+':
		opCode = Plus
	default:
		return p.primary()
	}
	p.pos++
	op, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Operand{operation: &Operation{op, nil, opCode}}, nil
}

func (p *parser) primary() (*Operand, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.fail("unexpected end of expression")
	case c == '(':
		p.pos++
		op, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.fail("missing )")
		}
		p.pos++
		return op, nil
	case c == '$':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil || n < 1 {
			return nil, p.fail("bad variable")
		}
		return &Operand{variable: n}, nil
	case isDigit(c) || c == '.':
		start := p.pos
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, p.fail("bad number")
		}
		return &Operand{value: v}, nil
	default:
	}
	return nil, p.fail("unexpected symbol")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
