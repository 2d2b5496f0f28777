package decompiler

import (
	"strings"

	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// analyzeSequence matches a sequence container. Its header computes the
// branch index from the visit count:
//
//	ev visit [N] (% | MIN | seq) /ev (ev du <i> == /ev ->s<i> c)* nop
func analyzeSequence(r *run, sp span, pos int) (ir.Node, int, error) {
	c, ok := sp.items[pos].(*story.Container)
	if !ok || c.Name != "" || len(c.Content) < 2 ||
		!story.IsCommand(c.Content[0], story.CmdEvalStart) || !story.IsCommand(c.Content[1], story.CmdVisitIndex) {
		return nil, pos, nil
	}
	seq, err := r.sequence(c)
	if err != nil {
		return nil, pos, err
	}
	return seq, pos + 1, nil
}

func (r *run) sequence(c *story.Container) (*ir.Sequence, error) {
	cur := NewCursor(c, c.Content)
	cur.Seek(2)

	// The optional literal is the clamp limit of a stopping sequence.
	if lit, ok := cur.Current().(*story.Literal); ok && lit.Kind == story.LitInt {
		cur.Advance()
	}

	seq := &ir.Sequence{Mode: ir.SequenceStopping}
	switch v := cur.Current().(type) {
	case *story.NativeCall:
		switch v.Name {
		case "%":
			seq.Mode = ir.SequenceCycle
		case "MIN":
			if story.IsCommand(cur.Peek(1), story.CmdDuplicate) {
				return nil, unsupported(c, cur.Peek(1), "shuffle once and shuffle stopping sequences")
			}
		default:
			return nil, unsupported(c, v, "unknown sequence index operator")
		}
	case *story.Command:
		if v.Kind != story.CmdSequenceShuffleIndex {
			return nil, unsupported(c, v, "unknown sequence index operator")
		}
		seq.Mode = ir.SequenceShuffle
	default:
		return nil, unsupported(c, cur.Current(), "sequence index is not computed")
	}
	if !cur.SkipToCommand(story.CmdEvalEnd) {
		return nil, unsupported(c, nil, "unterminated sequence header")
	}

	for ; !cur.Done(); cur.Advance() {
		in := cur.Current()
		if story.IsCommand(in, story.CmdNoOp) {
			break
		}
		j, ok := in.(*story.Jump)
		if !ok || !j.Conditional {
			continue
		}
		bc := r.story.TargetContainer(j.Target)
		if bc == nil || bc.Parent != c || !strings.HasPrefix(bc.Name, "s") {
			return nil, unsupported(c, j, "sequence branch is not a child of the sequence")
		}
		body, err := r.sequenceBranch(bc)
		if err != nil {
			return nil, err
		}
		seq.Branches = append(seq.Branches, body)
	}
	if len(seq.Branches) == 0 {
		return nil, unsupported(c, nil, "sequence without branches")
	}

	r.log.Debug("sequence", "mode", seq.Mode.String(), "branches", len(seq.Branches))
	return seq, nil
}

// sequenceBranch strips the pop of the branch index and the jump back to
// the end of the sequence.
func (r *run) sequenceBranch(bc *story.Container) (*ir.Block, error) {
	items := bc.Content
	if len(items) > 0 && story.IsCommand(items[0], story.CmdPopEvaluatedValue) {
		items = items[1:]
	}
	if n := len(items); n > 0 {
		if j, ok := items[n-1].(*story.Jump); ok && j.Kind == story.JumpDivert && !j.Conditional && !j.Variable {
			items = items[:n-1]
		}
	}
	return r.scan(span{c: bc, items: items})
}
