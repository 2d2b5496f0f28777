package ir

// Expr is an expression tree node.
//
// This is a sealed interface; only types in this package implement it.
type Expr interface {
	irExpr() // marker method - unexported prevents external implementations
}

// VarRef reads a variable, or a read count when ReadCount is set.
type VarRef struct {
	Name      string
	ReadCount bool
}

// LiteralKind identifies the type of a Literal.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitDivertTarget
	LitVariablePointer
)

// Literal is a constant. Str holds the string value, the divert target as
// written, or the referenced variable name.
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

// Unary applies a one-operand operator.
type Unary struct {
	Op      *Operator
	Operand Expr
}

// Binary applies a two-operand operator.
type Binary struct {
	Op    *Operator
	Left  Expr
	Right Expr
}

// Call invokes a builtin, a story function or an external function.
type Call struct {
	Name string
	Args []Expr
}

func (*VarRef) irExpr()  {}
func (*Literal) irExpr() {}
func (*Unary) irExpr()   {}
func (*Binary) irExpr()  {}
func (*Call) irExpr()    {}

// OperatorKind groups operators.
type OperatorKind int

const (
	OpArithmetic OperatorKind = iota
	OpComparison
	OpLogical
	OpBuiltin
)

// Operator describes a native function.
type Operator struct {
	Name   string // runtime token
	Symbol string // source spelling
	Arity  int
	Kind   OperatorKind
}

var operators = map[string]*Operator{}

func init() {
	for _, op := range []*Operator{
		{Name: "+", Symbol: "+", Arity: 2, Kind: OpArithmetic},
		{Name: "-", Symbol: "-", Arity: 2, Kind: OpArithmetic},
		{Name: "*", Symbol: "*", Arity: 2, Kind: OpArithmetic},
		{Name: "/", Symbol: "/", Arity: 2, Kind: OpArithmetic},
		{Name: "%", Symbol: "%", Arity: 2, Kind: OpArithmetic},
		{Name: "_", Symbol: "-", Arity: 1, Kind: OpArithmetic},
		{Name: "==", Symbol: "==", Arity: 2, Kind: OpComparison},
		{Name: "!=", Symbol: "!=", Arity: 2, Kind: OpComparison},
		{Name: "<", Symbol: "<", Arity: 2, Kind: OpComparison},
		{Name: ">", Symbol: ">", Arity: 2, Kind: OpComparison},
		{Name: "<=", Symbol: "<=", Arity: 2, Kind: OpComparison},
		{Name: ">=", Symbol: ">=", Arity: 2, Kind: OpComparison},
		{Name: "?", Symbol: "?", Arity: 2, Kind: OpComparison},
		{Name: "!?", Symbol: "!?", Arity: 2, Kind: OpComparison},
		{Name: "L^", Symbol: "^", Arity: 2, Kind: OpArithmetic},
		{Name: "&&", Symbol: "&&", Arity: 2, Kind: OpLogical},
		{Name: "||", Symbol: "||", Arity: 2, Kind: OpLogical},
		{Name: "!", Symbol: "not", Arity: 1, Kind: OpLogical},
		{Name: "MIN", Symbol: "MIN", Arity: 2, Kind: OpBuiltin},
		{Name: "MAX", Symbol: "MAX", Arity: 2, Kind: OpBuiltin},
		{Name: "POW", Symbol: "POW", Arity: 2, Kind: OpBuiltin},
		{Name: "FLOOR", Symbol: "FLOOR", Arity: 1, Kind: OpBuiltin},
		{Name: "CEILING", Symbol: "CEILING", Arity: 1, Kind: OpBuiltin},
		{Name: "INT", Symbol: "INT", Arity: 1, Kind: OpBuiltin},
		{Name: "FLOAT", Symbol: "FLOAT", Arity: 1, Kind: OpBuiltin},
	} {
		operators[op.Name] = op
	}
}

// LookupOperator returns the operator for a runtime native function name.
func LookupOperator(name string) (*Operator, bool) {
	op, ok := operators[name]
	return op, ok
}

// MustOperator is like LookupOperator but panics on unknown names.
// Use only in tests or with names known to be valid.
func MustOperator(name string) *Operator {
	op, ok := operators[name]
	if !ok {
		panic("ir: unknown operator " + name)
	}
	return op
}
