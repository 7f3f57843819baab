package datalog

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

// Evaluation faults. These never escape the engine (spec §7 class 3):
// an expression that faults causes the enclosing rule solution, check
// query, or policy query to be rejected, not a fatal error.
var (
	ErrTypeMismatch     = errors.New("datalog: type mismatch")
	ErrDivByZero        = errors.New("datalog: division by zero")
	ErrUnboundVariable  = errors.New("datalog: unbound variable")
	ErrUnsupportedRegex = errors.New("datalog: regex is not supported")
	ErrInt64Overflow    = errors.New("datalog: integer overflow")
)

// UnaryOp identifies a unary expression operator.
type UnaryOp int

const (
	OpParens UnaryOp = iota
	OpNegate
	OpLength
)

// BinaryOp identifies a binary expression operator.
type BinaryOp int

const (
	OpEqual BinaryOp = iota
	OpLessThan
	OpGreaterThan
	OpLessOrEqual
	OpGreaterOrEqual
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpPrefix
	OpSuffix
	OpContains
	OpIntersection
	OpUnion
	OpRegex
)

// Expression is a node in the boolean/arithmetic expression tree used by
// rule bodies, checks and policies (spec §3, component C2). Evaluation
// is a pure, strict, left-to-right, recursive post-order walk with no
// evaluator-held state (spec §9).
type Expression interface {
	// Evaluate reduces the expression to a Value under binding. A fault
	// is returned as an error and must be treated by the caller as "this
	// rule solution / query does not hold", never propagated further.
	Evaluate(b Binding) (Value, error)
	String() string
}

// Leaf is an expression whose value is a single term: either a literal
// Value or a Variable to be resolved against the binding.
type Leaf struct {
	Term Term
}

func (l Leaf) Evaluate(b Binding) (Value, error) {
	switch t := l.Term.(type) {
	case Variable:
		v, ok := b.Get(string(t))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnboundVariable, t)
		}
		return v, nil
	case Value:
		return t, nil
	default:
		return nil, fmt.Errorf("datalog: expressions: invalid leaf term %T", l.Term)
	}
}

func (l Leaf) String() string { return l.Term.String() }

// Unary is a one-operand expression node.
type Unary struct {
	Op      UnaryOp
	Operand Expression
}

func (u Unary) Evaluate(b Binding) (Value, error) {
	v, err := u.Operand.Evaluate(b)
	if err != nil {
		return nil, err
	}

	switch u.Op {
	case OpParens:
		return v, nil
	case OpNegate:
		bv, ok := v.(Bool)
		if !ok {
			return nil, fmt.Errorf("%w: Negate requires bool, got %T", ErrTypeMismatch, v)
		}
		return Bool(!bv), nil
	case OpLength:
		switch t := v.(type) {
		case Str:
			return Int(utf8.RuneCountInString(string(t))), nil
		case Bytes:
			return Int(len(t)), nil
		case Set:
			return Int(t.Len()), nil
		default:
			return nil, fmt.Errorf("%w: Length requires string, bytes or set, got %T", ErrTypeMismatch, v)
		}
	default:
		return nil, fmt.Errorf("datalog: expressions: unknown unary op %d", u.Op)
	}
}

func (u Unary) String() string {
	switch u.Op {
	case OpNegate:
		return "!" + u.Operand.String()
	case OpParens:
		return "(" + u.Operand.String() + ")"
	default:
		return fmt.Sprintf("%s(%s)", unaryOpName(u.Op), u.Operand.String())
	}
}

func unaryOpName(op UnaryOp) string {
	switch op {
	case OpParens:
		return "parens"
	case OpNegate:
		return "negate"
	case OpLength:
		return "length"
	default:
		return "unknown"
	}
}

// Binary is a two-operand expression node.
type Binary struct {
	Op          BinaryOp
	Left, Right Expression
}

func (e Binary) Evaluate(b Binding) (Value, error) {
	lv, err := e.Left.Evaluate(b)
	if err != nil {
		return nil, err
	}
	rv, err := e.Right.Evaluate(b)
	if err != nil {
		return nil, err
	}
	return evalBinary(e.Op, lv, rv)
}

func (e Binary) String() string {
	return fmt.Sprintf("%s %s %s", e.Left.String(), binaryOpSymbol(e.Op), e.Right.String())
}

func binaryOpSymbol(op BinaryOp) string {
	switch op {
	case OpEqual:
		return "=="
	case OpLessThan:
		return "<"
	case OpGreaterThan:
		return ">"
	case OpLessOrEqual:
		return "<="
	case OpGreaterOrEqual:
		return ">="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpPrefix:
		return "starts_with"
	case OpSuffix:
		return "ends_with"
	case OpContains:
		return "contains"
	case OpIntersection:
		return "intersection"
	case OpUnion:
		return "union"
	case OpRegex:
		return "matches"
	default:
		return "?"
	}
}

func evalBinary(op BinaryOp, l, r Value) (Value, error) {
	switch op {
	case OpEqual:
		return evalEqual(l, r)
	case OpLessThan, OpGreaterThan, OpLessOrEqual, OpGreaterOrEqual:
		return evalOrder(op, l, r)
	case OpAdd, OpSub, OpMul, OpDiv:
		return evalArith(op, l, r)
	case OpAnd, OpOr:
		return evalBool(op, l, r)
	case OpPrefix, OpSuffix:
		return evalStringOp(op, l, r)
	case OpContains:
		return evalContains(l, r)
	case OpIntersection, OpUnion:
		return evalSetOp(op, l, r)
	case OpRegex:
		return nil, ErrUnsupportedRegex
	default:
		return nil, fmt.Errorf("datalog: expressions: unknown binary op %d", op)
	}
}

// evalEqual implements Equal over like-typed pairs from the seven value
// kinds (spec §4.2).
func evalEqual(l, r Value) (Value, error) {
	if !sameKind(l, r) {
		return nil, fmt.Errorf("%w: Equal requires like-typed operands, got %T and %T", ErrTypeMismatch, l, r)
	}
	return Bool(l.Equal(r)), nil
}

func sameKind(l, r Value) bool {
	switch l.(type) {
	case Symbol:
		_, ok := r.(Symbol)
		return ok
	case Int:
		_, ok := r.(Int)
		return ok
	case Str:
		_, ok := r.(Str)
		return ok
	case Date:
		_, ok := r.(Date)
		return ok
	case Bytes:
		_, ok := r.(Bytes)
		return ok
	case Bool:
		_, ok := r.(Bool)
		return ok
	case Set:
		_, ok := r.(Set)
		return ok
	default:
		return false
	}
}

func evalOrder(op BinaryOp, l, r Value) (Value, error) {
	if li, ok := l.(Int); ok {
		ri, ok := r.(Int)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires two integers, got Int and %T", ErrTypeMismatch, binaryOpSymbol(op), r)
		}
		return Bool(compareInt(op, int64(li), int64(ri))), nil
	}
	if ld, ok := l.(Date); ok {
		rd, ok := r.(Date)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires two dates, got Date and %T", ErrTypeMismatch, binaryOpSymbol(op), r)
		}
		return Bool(compareDate(op, ld, rd)), nil
	}
	return nil, fmt.Errorf("%w: %s requires integers or dates, got %T", ErrTypeMismatch, binaryOpSymbol(op), l)
}

func compareInt(op BinaryOp, l, r int64) bool {
	switch op {
	case OpLessThan:
		return l < r
	case OpGreaterThan:
		return l > r
	case OpLessOrEqual:
		return l <= r
	case OpGreaterOrEqual:
		return l >= r
	default:
		return false
	}
}

func compareDate(op BinaryOp, l, r Date) bool {
	switch op {
	case OpLessThan:
		return l.Before(r)
	case OpGreaterThan:
		return l.After(r)
	case OpLessOrEqual:
		return l.Before(r) || l.Equal(r)
	case OpGreaterOrEqual:
		return l.After(r) || l.Equal(r)
	default:
		return false
	}
}

func evalArith(op BinaryOp, l, r Value) (Value, error) {
	li, ok := l.(Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires left operand to be an integer, got %T", ErrTypeMismatch, binaryOpSymbol(op), l)
	}
	ri, ok := r.(Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires right operand to be an integer, got %T", ErrTypeMismatch, binaryOpSymbol(op), r)
	}

	if op == OpDiv {
		if ri == 0 {
			return nil, ErrDivByZero
		}
		return Int(int64(li) / int64(ri)), nil
	}

	bl := big.NewInt(int64(li))
	br := big.NewInt(int64(ri))
	res := new(big.Int)
	switch op {
	case OpAdd:
		res.Add(bl, br)
	case OpSub:
		res.Sub(bl, br)
	case OpMul:
		res.Mul(bl, br)
	}
	if !res.IsInt64() {
		return nil, ErrInt64Overflow
	}
	return Int(res.Int64()), nil
}

func evalBool(op BinaryOp, l, r Value) (Value, error) {
	lb, ok := l.(Bool)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires left operand to be a bool, got %T", ErrTypeMismatch, binaryOpSymbol(op), l)
	}
	rb, ok := r.(Bool)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires right operand to be a bool, got %T", ErrTypeMismatch, binaryOpSymbol(op), r)
	}
	// Strict, non-short-circuit by design (spec §9 open question): both
	// operands are always evaluated by the caller before this runs.
	if op == OpAnd {
		return Bool(lb && rb), nil
	}
	return Bool(lb || rb), nil
}

func evalStringOp(op BinaryOp, l, r Value) (Value, error) {
	ls, ok := l.(Str)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires left operand to be a string, got %T", ErrTypeMismatch, binaryOpSymbol(op), l)
	}
	rs, ok := r.(Str)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires right operand to be a string, got %T", ErrTypeMismatch, binaryOpSymbol(op), r)
	}
	if op == OpPrefix {
		return Bool(strings.HasPrefix(string(ls), string(rs))), nil
	}
	return Bool(strings.HasSuffix(string(ls), string(rs))), nil
}

func evalContains(l, r Value) (Value, error) {
	set, ok := l.(Set)
	if !ok {
		return nil, fmt.Errorf("%w: Contains requires left operand to be a set, got %T", ErrTypeMismatch, l)
	}
	if rs, ok := r.(Set); ok {
		return Bool(rs.IsSubsetOf(set)), nil
	}
	switch r.(type) {
	case Symbol, Int, Str, Bytes, Date, Bool:
		return Bool(set.has(r)), nil
	default:
		return nil, fmt.Errorf("%w: Contains right operand must be a set or scalar, got %T", ErrTypeMismatch, r)
	}
}

func evalSetOp(op BinaryOp, l, r Value) (Value, error) {
	ls, ok := l.(Set)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires left operand to be a set, got %T", ErrTypeMismatch, binaryOpSymbol(op), l)
	}
	rs, ok := r.(Set)
	if !ok {
		return nil, fmt.Errorf("%w: %s requires right operand to be a set, got %T", ErrTypeMismatch, binaryOpSymbol(op), r)
	}
	if op == OpIntersection {
		return ls.Intersection(rs), nil
	}
	return ls.Union(rs), nil
}
