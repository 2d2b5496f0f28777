package decompiler

import (
	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// analyzeMultilineConditional matches a run of branch containers, each
// testing its own condition, optionally preceded by a switch
// discriminator:
//
//	[ev <discriminator> /ev] [du? ev <cond> [==] /ev ->b?] ... [[->b]] [pop] nop
func analyzeMultilineConditional(r *run, sp span, pos int) (ir.Node, int, error) {
	items := sp.items
	i := pos
	var disc ir.Expr
	if story.IsCommand(items[i], story.CmdEvalStart) {
		end := findEvalEnd(items, i)
		if end < 0 || end+1 >= len(items) {
			return nil, pos, nil
		}
		next, ok := items[end+1].(*story.Container)
		if !ok || next.Name != "" || len(next.Content) == 0 || !story.IsCommand(next.Content[0], story.CmdDuplicate) {
			return nil, pos, nil
		}
		expr, err := r.buildExpr(sp.c, items[i+1:end], true)
		if err != nil || expr == nil {
			return nil, pos, err
		}
		disc = expr
		i = end + 1
	}

	cond := &ir.Conditional{Discriminator: disc}
	for i < len(items) {
		bc, ok := items[i].(*story.Container)
		if !ok || bc.Name != "" {
			break
		}
		expr, isElse, matched, err := r.matchBranchTest(bc, disc != nil)
		if err != nil {
			return nil, pos, err
		}
		if !matched || (isElse && len(cond.Conditions) == 0) {
			break
		}
		body, err := r.branchBody(bc, disc != nil)
		if err != nil {
			return nil, pos, err
		}
		i++
		if isElse {
			cond.Else = body
			break
		}
		cond.Conditions = append(cond.Conditions, expr)
		cond.Branches = append(cond.Branches, body)
	}
	if len(cond.Conditions) == 0 {
		if disc != nil {
			return nil, pos, unsupported(sp.c, items[i], "switch without branches")
		}
		return nil, pos, nil
	}

	if disc != nil && cond.Else == nil && i < len(items) && story.IsCommand(items[i], story.CmdPopEvaluatedValue) {
		i++
	}
	if i < len(items) && story.IsCommand(items[i], story.CmdNoOp) {
		i++
	}
	if disc == nil && len(cond.Conditions) == 1 {
		cond.Multiline = startsWithNewline(cond.Branches[0])
	}
	return cond, i, nil
}

// matchBranchTest recognizes the test at the head of a branch container.
// An unconditional jump as the sole content is the else branch.
func (r *run) matchBranchTest(bc *story.Container, switched bool) (ir.Expr, bool, bool, error) {
	content := bc.Content
	if len(content) == 1 {
		if j, ok := content[0].(*story.Jump); ok && isBranchJump(j) && !j.Conditional {
			return nil, true, true, nil
		}
		return nil, false, false, nil
	}

	cur := NewCursor(bc, content)
	if switched && !cur.SkipIfCommand(story.CmdDuplicate) {
		return nil, false, false, nil
	}
	if !cur.SkipIfCommand(story.CmdEvalStart) {
		return nil, false, false, nil
	}
	end := findEvalEnd(content, cur.Pos()-1)
	if end < 0 || end != len(content)-2 {
		return nil, false, false, nil
	}
	j, ok := content[end+1].(*story.Jump)
	if !ok || !j.Conditional || !isBranchJump(j) {
		return nil, false, false, nil
	}

	test := content[cur.Pos():end]
	if switched {
		if len(test) == 0 || !isNative(test[len(test)-1], "==") {
			return nil, false, false, unsupported(bc, content[end], "switch branch does not compare with the value")
		}
		test = test[:len(test)-1]
	}
	expr, err := r.buildExpr(bc, test, false)
	if err != nil {
		return nil, false, false, err
	}
	return expr, false, true, nil
}

// analyzeConditional matches an inline conditional: a single condition
// followed by one or two branch containers that each hold only a jump.
//
//	ev <cond> /ev [->b? c] [[->b]] nop
func analyzeConditional(r *run, sp span, pos int) (ir.Node, int, error) {
	items := sp.items
	if !story.IsCommand(items[pos], story.CmdEvalStart) {
		return nil, pos, nil
	}
	end := findEvalEnd(items, pos)
	if end < 0 {
		return nil, pos, nil
	}

	i := end + 1
	var branches []*story.Container
	for i < len(items) {
		bc, ok := items[i].(*story.Container)
		if !ok || bc.Name != "" || len(bc.Content) != 1 {
			break
		}
		j, ok := bc.Content[0].(*story.Jump)
		if !ok || !isBranchJump(j) {
			break
		}
		branches = append(branches, bc)
		i++
	}
	if len(branches) == 0 {
		return nil, pos, nil
	}
	first := branches[0].Content[0].(*story.Jump)
	if !first.Conditional {
		return nil, pos, nil
	}
	if len(branches) > 2 {
		return nil, pos, unsupported(sp.c, branches[2], "inline conditional with more than two branches")
	}

	expr, err := r.buildExpr(sp.c, items[pos+1:end], true)
	if err != nil || expr == nil {
		return nil, pos, err
	}
	body, err := r.branchBody(branches[0], false)
	if err != nil {
		return nil, pos, err
	}
	cond := &ir.Conditional{
		Conditions: []ir.Expr{expr},
		Branches:   []*ir.Block{body},
		Multiline:  startsWithNewline(body),
	}
	if len(branches) == 2 {
		if branches[1].Content[0].(*story.Jump).Conditional {
			return nil, pos, unsupported(sp.c, branches[1], "inline conditional else branch is conditional")
		}
		elseBody, err := r.branchBody(branches[1], false)
		if err != nil {
			return nil, pos, err
		}
		cond.Else = elseBody
	}
	if i < len(items) && story.IsCommand(items[i], story.CmdNoOp) {
		i++
	}
	return cond, i, nil
}

// branchBody decompiles the "b" container of a branch, dropping the pop of
// a switch value and the jump back to the rejoin point.
func (r *run) branchBody(bc *story.Container, switched bool) (*ir.Block, error) {
	b := bc.Named["b"]
	if b == nil {
		return nil, unsupported(bc, nil, "conditional branch has no body")
	}
	items := b.Content
	if switched && len(items) > 0 && story.IsCommand(items[0], story.CmdPopEvaluatedValue) {
		items = items[1:]
	}
	if n := len(items); n > 0 {
		if j, ok := items[n-1].(*story.Jump); ok && j.Kind == story.JumpDivert && !j.Conditional && !j.Variable {
			items = items[:n-1]
		}
	}
	return r.scan(span{c: b, items: items})
}

// isBranchJump reports whether j enters a branch body.
func isBranchJump(j *story.Jump) bool {
	return j.Kind == story.JumpDivert && !j.Variable && j.Parent != nil &&
		(j.Target.Last() == "b" || j.Target.Parent().Last() == "b")
}

func isNative(in story.Instruction, name string) bool {
	n, ok := in.(*story.NativeCall)
	return ok && n.Name == name
}

func startsWithNewline(b *ir.Block) bool {
	if b.Empty() {
		return false
	}
	l, ok := b.Nodes[0].(*ir.Leaf)
	return ok && l.Kind == ir.LeafText && l.Text == "\n"
}
