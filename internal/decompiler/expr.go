package decompiler

import (
	"strings"

	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// builtinCommands maps the evaluation commands that behave like builtin
// function calls to their source name and argument count.
var builtinCommands = map[story.CommandKind]struct {
	name  string
	arity int
}{
	story.CmdChoiceCount: {"CHOICE_COUNT", 0},
	story.CmdTurns:       {"TURNS", 0},
	story.CmdTurnsSince:  {"TURNS_SINCE", 1},
	story.CmdReadCount:   {"READ_COUNT", 1},
	story.CmdRandom:      {"RANDOM", 2},
	story.CmdSeedRandom:  {"SEED_RANDOM", 1},
}

// exprBuilder replays postfix evaluation instructions onto a stack of
// expression trees.
type exprBuilder struct {
	r        *run
	c        *story.Container
	optional bool
	stack    []ir.Expr
}

// buildExpr converts a postfix instruction run into one expression tree.
// In optional mode a mismatch yields (nil, nil) so the caller can try
// another interpretation; otherwise it is an UnsupportedError.
func (r *run) buildExpr(c *story.Container, items []story.Instruction, optional bool) (ir.Expr, error) {
	b := &exprBuilder{r: r, c: c, optional: optional}
	for i := 0; i < len(items); i++ {
		next, err := b.step(items, i)
		if err != nil || next < 0 {
			return nil, err
		}
		i = next
	}
	if len(b.stack) != 1 {
		var at story.Instruction
		if len(items) > 0 {
			at = items[len(items)-1]
		}
		return nil, b.fail(at, "expression leaves %d values on the stack", len(b.stack))
	}
	return b.stack[0], nil
}

// fail returns the error for a mismatch; nil in optional mode.
func (b *exprBuilder) fail(in story.Instruction, format string, args ...any) error {
	if b.optional {
		return nil
	}
	return unsupported(b.c, in, format, args...)
}

func (b *exprBuilder) push(e ir.Expr) { b.stack = append(b.stack, e) }

func (b *exprBuilder) pop(n int) ([]ir.Expr, bool) {
	if n > len(b.stack) {
		return nil, false
	}
	args := append([]ir.Expr(nil), b.stack[len(b.stack)-n:]...)
	b.stack = b.stack[:len(b.stack)-n]
	return args, true
}

// step consumes items[i] and returns the index of the last instruction
// it used, or -1 after a mismatch.
func (b *exprBuilder) step(items []story.Instruction, i int) (int, error) {
	switch v := items[i].(type) {
	case *story.VarRef:
		if v.Name == "" {
			b.push(&ir.VarRef{Name: v.CountPath.Display(), ReadCount: true})
		} else {
			b.push(&ir.VarRef{Name: v.Name})
		}
		return i, nil

	case *story.Literal:
		lit, ok := literal(v)
		if !ok {
			return -1, b.fail(v, "literal cannot appear in an expression")
		}
		b.push(lit)
		return i, nil

	case *story.Command:
		if v.Kind == story.CmdBeginString {
			return b.stringLiteral(items, i)
		}
		builtin, ok := builtinCommands[v.Kind]
		if !ok {
			return -1, b.fail(v, "command cannot appear in an expression")
		}
		args, ok := b.pop(builtin.arity)
		if !ok {
			return -1, b.fail(v, "not enough operands")
		}
		b.push(&ir.Call{Name: builtin.name, Args: args})
		return i, nil

	case *story.NativeCall:
		op, ok := ir.LookupOperator(v.Name)
		if !ok {
			return -1, b.fail(v, "unknown operator")
		}
		args, ok := b.pop(op.Arity)
		if !ok {
			return -1, b.fail(v, "not enough operands")
		}
		switch {
		case op.Kind == ir.OpBuiltin:
			b.push(&ir.Call{Name: op.Symbol, Args: args})
		case op.Arity == 1:
			b.push(&ir.Unary{Op: op, Operand: args[0]})
		default:
			b.push(&ir.Binary{Op: op, Left: args[0], Right: args[1]})
		}
		return i, nil

	case *story.Jump:
		return b.call(v, i)
	}
	return -1, b.fail(items[i], "instruction cannot appear in an expression")
}

func (b *exprBuilder) call(j *story.Jump, i int) (int, error) {
	var name string
	var arity int
	switch j.Kind {
	case story.JumpFunction:
		target := b.r.story.TargetContainer(j.Target)
		if target == nil {
			return -1, b.fail(j, "function target does not exist")
		}
		name = j.Target.Display()
		arity = len(target.LeadingParams())
	case story.JumpExternal:
		name = j.Raw
		arity = j.ExternalArgs
	default:
		return -1, b.fail(j, "divert cannot appear in an expression")
	}
	args, ok := b.pop(arity)
	if !ok {
		return -1, b.fail(j, "not enough arguments for %s", name)
	}
	b.push(&ir.Call{Name: name, Args: args})
	return i, nil
}

// stringLiteral folds "str ... /str" into one string literal. Only plain
// text may appear between the markers.
func (b *exprBuilder) stringLiteral(items []story.Instruction, i int) (int, error) {
	var sb strings.Builder
	for k := i + 1; k < len(items); k++ {
		switch v := items[k].(type) {
		case *story.Text:
			sb.WriteString(v.Value)
			continue
		case *story.Command:
			if v.Kind == story.CmdEndString {
				b.push(&ir.Literal{Kind: ir.LitString, Str: sb.String()})
				return k, nil
			}
		}
		return -1, b.fail(items[k], "string literal holds non-text content")
	}
	return -1, b.fail(items[i], "unterminated string literal")
}

// literal converts a runtime literal. Void and list values have no
// expression form.
func literal(l *story.Literal) (*ir.Literal, bool) {
	switch l.Kind {
	case story.LitInt:
		return &ir.Literal{Kind: ir.LitInt, Int: l.Int}, true
	case story.LitFloat:
		return &ir.Literal{Kind: ir.LitFloat, Float: l.Float}, true
	case story.LitBool:
		return &ir.Literal{Kind: ir.LitBool, Bool: l.Bool}, true
	case story.LitString:
		return &ir.Literal{Kind: ir.LitString, Str: l.Str}, true
	case story.LitDivertTarget:
		return &ir.Literal{Kind: ir.LitDivertTarget, Str: l.Target.Display()}, true
	case story.LitVariablePointer:
		return &ir.Literal{Kind: ir.LitVariablePointer, Str: l.Name}, true
	}
	return nil, false
}
