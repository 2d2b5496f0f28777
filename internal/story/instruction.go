package story

import (
	"fmt"
	"strconv"
)

// Instruction is a single item in a container's content list.
//
// This is a sealed interface; only types in this package implement it.
type Instruction interface {
	instruction() // marker method - unexported prevents external implementations
}

// Text is literal output text. A newline is a Text with Value "\n".
type Text struct {
	Value string
}

// Glue suppresses the line break between two pieces of output ("<>").
type Glue struct{}

// CommandKind identifies a control command.
type CommandKind int

const (
	CmdEvalStart CommandKind = iota
	CmdEvalOutput
	CmdEvalEnd
	CmdDuplicate
	CmdPopEvaluatedValue
	CmdPopFunction
	CmdPopTunnel
	CmdBeginString
	CmdEndString
	CmdNoOp
	CmdChoiceCount
	CmdTurns
	CmdTurnsSince
	CmdReadCount
	CmdRandom
	CmdSeedRandom
	CmdVisitIndex
	CmdSequenceShuffleIndex
	CmdStartThread
	CmdDone
	CmdEnd
	CmdListFromInt
	CmdListRange
	CmdListRandom
	CmdBeginTag
	CmdEndTag
)

// commandNames maps the serialized command token to its kind.
var commandNames = map[string]CommandKind{
	"ev":        CmdEvalStart,
	"out":       CmdEvalOutput,
	"/ev":       CmdEvalEnd,
	"du":        CmdDuplicate,
	"pop":       CmdPopEvaluatedValue,
	"~ret":      CmdPopFunction,
	"->->":      CmdPopTunnel,
	"str":       CmdBeginString,
	"/str":      CmdEndString,
	"nop":       CmdNoOp,
	"choiceCnt": CmdChoiceCount,
	"turn":      CmdTurns,
	"turns":     CmdTurnsSince,
	"readc":     CmdReadCount,
	"rnd":       CmdRandom,
	"srnd":      CmdSeedRandom,
	"visit":     CmdVisitIndex,
	"seq":       CmdSequenceShuffleIndex,
	"thread":    CmdStartThread,
	"done":      CmdDone,
	"end":       CmdEnd,
	"listInt":   CmdListFromInt,
	"range":     CmdListRange,
	"lrnd":      CmdListRandom,
	"#":         CmdBeginTag,
	"/#":        CmdEndTag,
}

var commandTokens = func() map[CommandKind]string {
	m := make(map[CommandKind]string, len(commandNames))
	for tok, k := range commandNames {
		m[k] = tok
	}
	return m
}()

// String returns the serialized token for the command kind.
func (k CommandKind) String() string {
	if tok, ok := commandTokens[k]; ok {
		return tok
	}
	return "cmd(" + strconv.Itoa(int(k)) + ")"
}

// Command is a control command such as "ev" or "done".
type Command struct {
	Kind CommandKind
}

// NativeCall is a call to a native operator or builtin, e.g. "+" or "MIN".
type NativeCall struct {
	Name string
}

// nativeNames lists the native function tokens the runtime understands.
var nativeNames = map[string]bool{
	"+": true, "-": true, "/": true, "*": true, "%": true, "_": true,
	"==": true, ">": true, "<": true, ">=": true, "<=": true, "!=": true,
	"!": true, "&&": true, "||": true,
	"MIN": true, "MAX": true, "POW": true, "FLOOR": true, "CEILING": true,
	"INT": true, "FLOAT": true,
	"?": true, "!?": true, "L^": true,
	"LIST_MIN": true, "LIST_MAX": true, "LIST_ALL": true, "LIST_COUNT": true,
	"LIST_VALUE": true, "LIST_INVERT": true,
}

// JumpKind distinguishes the different transfer instructions.
type JumpKind int

const (
	JumpDivert   JumpKind = iota // "->"
	JumpFunction                 // "f()"
	JumpTunnel                   // "->t->"
	JumpExternal                 // "x()"
)

// Jump transfers control to Target.
//
// For variable diverts Target is empty and Raw holds the variable name.
type Jump struct {
	Kind         JumpKind
	Target       Path
	Raw          string
	Variable     bool
	Conditional  bool
	ExternalArgs int
	Parent       *Container
}

// ChoiceFlags is the bit set carried by a ChoicePoint.
type ChoiceFlags int

const (
	ChoiceHasCondition         ChoiceFlags = 0x1
	ChoiceHasStartContent      ChoiceFlags = 0x2
	ChoiceHasChoiceOnlyContent ChoiceFlags = 0x4
	ChoiceIsInvisibleDefault   ChoiceFlags = 0x8
	ChoiceOnceOnly             ChoiceFlags = 0x10
)

// Has reports whether all bits in f2 are set.
func (f ChoiceFlags) Has(f2 ChoiceFlags) bool { return f&f2 == f2 }

// ChoicePoint presents a choice whose content lives at Target.
type ChoicePoint struct {
	Target Path
	Raw    string
	Flags  ChoiceFlags
	Parent *Container
}

// OnceOnly reports whether the choice is a "*" choice.
func (c *ChoicePoint) OnceOnly() bool { return c.Flags.Has(ChoiceOnceOnly) }

// VarRef reads a variable, or the visit count of CountPath when Name is empty.
type VarRef struct {
	Name      string
	CountPath Path
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
	LitVoid
	LitList
)

// Literal is a constant value pushed onto the evaluation stack.
type Literal struct {
	Kind   LiteralKind
	Int    int64
	Float  float64
	Bool   bool
	Str    string
	Target Path // divert target
	Name   string
	Index  int // variable pointer context index
}

func (l *Literal) String() string {
	switch l.Kind {
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'f', -1, 64)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitString:
		return strconv.Quote(l.Str)
	case LitDivertTarget:
		return "-> " + string(l.Target)
	case LitVariablePointer:
		return "ref " + l.Name
	case LitVoid:
		return "void"
	case LitList:
		return "list"
	}
	return fmt.Sprintf("literal(%d)", l.Kind)
}

// VarAssign pops the evaluation stack into a variable.
type VarAssign struct {
	Name        string
	Global      bool
	Declaration bool
}

// Tag is a legacy static tag.
type Tag struct {
	Text string
}

func (*Text) instruction()        {}
func (*Glue) instruction()        {}
func (*Command) instruction()     {}
func (*NativeCall) instruction()  {}
func (*Jump) instruction()        {}
func (*ChoicePoint) instruction() {}
func (*VarRef) instruction()      {}
func (*Literal) instruction()     {}
func (*VarAssign) instruction()   {}
func (*Tag) instruction()         {}
func (*Container) instruction()   {}

// IsCommand reports whether in is a command of the given kind.
func IsCommand(in Instruction, kind CommandKind) bool {
	c, ok := in.(*Command)
	return ok && c.Kind == kind
}

// Describe returns a short human-readable form of an instruction for
// diagnostics.
func Describe(in Instruction) string {
	switch v := in.(type) {
	case nil:
		return "<end of content>"
	case *Text:
		return "text " + strconv.Quote(v.Value)
	case *Glue:
		return "glue"
	case *Command:
		return "command " + strconv.Quote(v.Kind.String())
	case *NativeCall:
		return "native " + strconv.Quote(v.Name)
	case *Jump:
		target := string(v.Target)
		if v.Variable {
			target = v.Raw
		}
		switch v.Kind {
		case JumpFunction:
			return "function call " + target
		case JumpTunnel:
			return "tunnel " + target
		case JumpExternal:
			return "external call " + target
		}
		if v.Conditional {
			return "conditional divert " + target
		}
		return "divert " + target
	case *ChoicePoint:
		return fmt.Sprintf("choice point %s (flags %#x)", v.Target, int(v.Flags))
	case *VarRef:
		if v.Name == "" {
			return "read count " + string(v.CountPath)
		}
		return "variable " + v.Name
	case *Literal:
		return "literal " + v.String()
	case *VarAssign:
		return "assign " + v.Name
	case *Tag:
		return "tag " + strconv.Quote(v.Text)
	case *Container:
		if v.Name != "" {
			return "container " + v.Name
		}
		return "container at " + string(v.Path)
	}
	return fmt.Sprintf("%T", in)
}
