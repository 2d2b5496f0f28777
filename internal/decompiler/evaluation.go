package decompiler

import (
	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// analyzeEvaluation matches a generic "ev ... /ev" block. Its value must be
// consumed by output, a pop, an assignment or a function return; a value
// left on the stack has no source form.
func analyzeEvaluation(r *run, sp span, pos int) (ir.Node, int, error) {
	items := sp.items
	if !story.IsCommand(items[pos], story.CmdEvalStart) {
		return nil, pos, nil
	}
	end := findEvalEnd(items, pos)
	if end < 0 {
		return nil, pos, unsupported(sp.c, items[pos], "unterminated evaluation")
	}

	block := &ir.Block{}
	start := pos + 1
	for k := start; k < end; k++ {
		a, ok := items[k].(*story.VarAssign)
		if !ok {
			continue
		}
		node, err := r.assignment(sp.c, a, items[start:k])
		if err != nil {
			return nil, pos, err
		}
		block.Append(node)
		start = k + 1
	}

	next := end + 1
	if tail := items[start:end]; len(tail) > 0 {
		last := tail[len(tail)-1]
		var follow story.Instruction
		if next < len(items) {
			follow = items[next]
		}
		switch {
		case story.IsCommand(last, story.CmdEvalOutput):
			expr, err := r.buildExpr(sp.c, tail[:len(tail)-1], false)
			if err != nil {
				return nil, pos, err
			}
			block.Append(&ir.EmbeddedExpr{Expr: expr})
		case story.IsCommand(last, story.CmdPopEvaluatedValue):
			expr, err := r.buildExpr(sp.c, tail[:len(tail)-1], false)
			if err != nil {
				return nil, pos, err
			}
			block.Append(&ir.StatementExpr{Expr: expr})
		case isAssign(follow):
			node, err := r.assignment(sp.c, follow.(*story.VarAssign), tail)
			if err != nil {
				return nil, pos, err
			}
			block.Append(node)
			next++
		case story.IsCommand(follow, story.CmdPopFunction):
			ret := &ir.Return{}
			if !isVoid(tail) {
				expr, err := r.buildExpr(sp.c, tail, false)
				if err != nil {
					return nil, pos, err
				}
				ret.Value = expr
			}
			block.Append(ret)
			next++
		default:
			return nil, pos, unsupported(sp.c, last, "evaluated value is never used")
		}
	}

	switch len(block.Nodes) {
	case 0:
		return nil, next, nil
	case 1:
		return block.Nodes[0], next, nil
	}
	return block, next, nil
}

func (r *run) assignment(c *story.Container, a *story.VarAssign, value []story.Instruction) (*ir.VarAssignment, error) {
	expr, err := r.buildExpr(c, value, false)
	if err != nil {
		return nil, err
	}
	return &ir.VarAssignment{Name: a.Name, Global: a.Global, Declaration: a.Declaration, Initializer: expr}, nil
}

func isAssign(in story.Instruction) bool {
	_, ok := in.(*story.VarAssign)
	return ok
}

func isVoid(items []story.Instruction) bool {
	if len(items) != 1 {
		return false
	}
	lit, ok := items[0].(*story.Literal)
	return ok && lit.Kind == story.LitVoid
}
