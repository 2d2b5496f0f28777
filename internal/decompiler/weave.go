package decompiler

import (
	"strings"

	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// analyzeWeave collects a run of consecutive choices and finds the gather
// they rejoin at.
func analyzeWeave(r *run, sp span, pos int) (ir.Node, int, error) {
	var choices []*ir.Choice
	end := pos
	for end < len(sp.items) {
		ch, next, err := r.choiceAt(sp, end)
		if err != nil {
			return nil, pos, err
		}
		if ch == nil {
			break
		}
		choices = append(choices, ch)
		end = next
	}
	if len(choices) == 0 {
		return nil, pos, nil
	}

	w := &ir.Weave{Choices: choices}
	r.weaveHome[w] = sp.c
	if err := r.resolveGather(w, sp.c); err != nil {
		return nil, pos, err
	}
	return w, end, nil
}

// choiceAt matches one choice at items[pos], either wrapped in its own
// container or inline. A nil choice means no match.
func (r *run) choiceAt(sp span, pos int) (*ir.Choice, int, error) {
	if c, ok := sp.items[pos].(*story.Container); ok {
		if c.HasChoiceBranches() {
			return nil, pos, nil
		}
		ch, end, err := r.matchChoice(c, c.Content, 0)
		if err != nil || ch == nil || end != len(c.Content) {
			return nil, pos, err
		}
		ch.Label = c.Name
		return ch, pos + 1, nil
	}
	return r.matchChoice(sp.c, sp.items, pos)
}

// matchChoice decomposes a choice whose evaluation starts at items[pos]:
//
//	[ev <start label setup> [str <choice-only> /str] [<condition>] /ev] ChoicePoint
//
// Once a ChoicePoint is found the match is committed and any malformation
// is an error.
func (r *run) matchChoice(c *story.Container, items []story.Instruction, pos int) (*ir.Choice, int, error) {
	if pos >= len(items) {
		return nil, pos, nil
	}
	evEnd := -1
	var cp *story.ChoicePoint
	switch {
	case isChoicePoint(items[pos]):
		cp = items[pos].(*story.ChoicePoint)
	case story.IsCommand(items[pos], story.CmdEvalStart):
		evEnd = findEvalEnd(items, pos)
		if evEnd < 0 || evEnd+1 >= len(items) || !isChoicePoint(items[evEnd+1]) {
			return nil, pos, nil
		}
		cp = items[evEnd+1].(*story.ChoicePoint)
	default:
		return nil, pos, nil
	}

	ch := &ir.Choice{OnceOnly: cp.OnceOnly()}
	end := pos + 1
	if evEnd >= 0 {
		end = evEnd + 2
		if err := r.choiceHeader(ch, cp, c, items[pos+1:evEnd]); err != nil {
			return nil, pos, err
		}
	} else if cp.Flags&(story.ChoiceHasCondition|story.ChoiceHasStartContent|story.ChoiceHasChoiceOnlyContent) != 0 {
		return nil, pos, unsupported(c, cp, "choice flags promise content but no evaluation precedes it")
	}

	inner, err := r.choiceInner(cp, c)
	if err != nil {
		return nil, pos, err
	}
	ch.InnerContent = inner
	return ch, end, nil
}

// choiceHeader fills start content, choice-only content and condition from
// the evaluation block preceding a ChoicePoint.
func (r *run) choiceHeader(ch *ir.Choice, cp *story.ChoicePoint, c *story.Container, ev []story.Instruction) error {
	cur := NewCursor(c, ev)

	if cp.Flags.Has(story.ChoiceHasStartContent) {
		start := startContainer(r.story, c, ev)
		if start == nil {
			return unsupported(c, cp, "choice start content is missing")
		}
		body := start.Content
		if n := len(body); n > 0 {
			if j, ok := body[n-1].(*story.Jump); ok && j.Variable {
				body = body[:n-1]
			}
		}
		block, err := r.scan(span{c: start, items: body})
		if err != nil {
			return err
		}
		ch.StartContent = block
		if !cur.SkipToLabel("$r1") {
			return unsupported(c, cur.Current(), "choice start content has no return label")
		}
		cur.SkipIfCommand(story.CmdEndString)
	}

	if cp.Flags.Has(story.ChoiceHasChoiceOnlyContent) {
		if !cur.SkipIfCommand(story.CmdBeginString) {
			return unsupported(c, cur.Current(), "expected choice-only content")
		}
		from := cur.Pos()
		if !cur.SkipToCommand(story.CmdEndString) {
			return unsupported(c, cur.Current(), "unterminated choice-only content")
		}
		block, err := r.scan(span{c: c, items: cur.Slice(from, cur.Pos()-1)})
		if err != nil {
			return err
		}
		ch.ChoiceOnlyContent = block
	}

	if cp.Flags.Has(story.ChoiceHasCondition) {
		cond, err := r.buildExpr(c, cur.Tail(), false)
		if err != nil {
			return err
		}
		ch.Condition = cond
	} else if !cur.Done() {
		return unsupported(c, cur.Current(), "unexpected instruction in choice evaluation")
	}
	return nil
}

// startContainer finds the container holding a choice's start content
// through the divert the evaluation block jumps into it with.
func startContainer(s *story.Story, c *story.Container, ev []story.Instruction) *story.Container {
	for _, in := range ev {
		if j, ok := in.(*story.Jump); ok && j.Kind == story.JumpDivert && !j.Variable {
			if t := s.TargetContainer(j.Target); t != nil {
				return t
			}
		}
	}
	return c.Named["s"]
}

// choiceInner decompiles the content shown after the choice is taken.
func (r *run) choiceInner(cp *story.ChoicePoint, c *story.Container) (*ir.Block, error) {
	target := r.story.TargetContainer(cp.Target)
	if target == nil {
		return nil, unsupported(c, cp, "choice target does not exist")
	}
	cur := NewCursor(target, target.Content)
	if cp.Flags.Has(story.ChoiceHasStartContent) && !cur.SkipToLabel("$r2") {
		return nil, unsupported(target, nil, "choice content has no return label")
	}
	return r.scan(span{c: target, items: cur.Tail()})
}

// resolveGather finds the gather the weave's choices rejoin at. Every
// choice ending in a divert to a gather-like target must agree on it.
// Loose ends claimed this way are removed from the choices, and a nested
// weave whose gather turns out to be this one gives it up.
func (r *run) resolveGather(w *ir.Weave, home *story.Container) error {
	var target *story.Container
	var strips []func()
	for _, ch := range w.Choices {
		g, strip := r.looseEnd(ch.InnerContent, home)
		if g == nil {
			continue
		}
		if target != nil && target != g {
			return nil
		}
		target = g
		strips = append(strips, strip)
	}
	if target == nil {
		return nil
	}
	for _, strip := range strips {
		strip()
	}

	body, err := r.scanContainer(target)
	if err != nil {
		return err
	}
	w.Gather = &ir.Gather{Label: gatherLabel(target), Body: body, Elided: onlyDone(target)}
	w.GatherPath = string(target.Path)
	r.log.Debug("resolved gather", "path", w.GatherPath, "choices", len(w.Choices))
	return nil
}

// looseEnd finds the gather a block finally diverts to, along with a
// function removing that divert. Nested constructs are searched through
// their last node.
func (r *run) looseEnd(b *ir.Block, home *story.Container) (*story.Container, func()) {
	switch n := b.Last().(type) {
	case *ir.Leaf:
		if n.Kind != ir.LeafDivert || n.Target == "" {
			return nil, nil
		}
		g := r.story.TargetContainer(story.Path(n.Target))
		if !r.gatherLike(g, home) {
			return nil, nil
		}
		return g, b.TrimLast

	case *ir.Block:
		return r.looseEnd(n, home)

	case *ir.Weave:
		if n.Gather != nil && (len(n.Choices) == 0 || r.ownsGather(n)) {
			if n.Gather.Elided {
				return nil, nil
			}
			return r.looseEnd(n.Gather.Body, home)
		}
		if n.GatherPath == "" {
			return nil, nil
		}
		g := r.story.TargetContainer(story.Path(n.GatherPath))
		if !r.gatherLike(g, home) {
			return nil, nil
		}
		return g, func() { n.Gather = nil }
	}
	return nil, nil
}

// ownsGather reports whether a weave's gather lies inside the weave
// itself rather than in an enclosing choice's weave.
func (r *run) ownsGather(w *ir.Weave) bool {
	home := r.weaveHome[w]
	g := r.story.TargetContainer(story.Path(w.GatherPath))
	if home == nil || g == nil {
		return false
	}
	for c := home; c != nil; c = c.Parent {
		if c == g.Parent {
			return true
		}
		if strings.HasPrefix(c.Name, "c-") {
			return false
		}
	}
	return false
}

// gatherLike reports whether g can be a weave's rejoin point when seen from
// a weave living in home. A container enclosing home is a loop back, not a
// gather.
func (r *run) gatherLike(g, home *story.Container) bool {
	if g == nil || g.Parent == nil || g.IsAncestorOf(home) {
		return false
	}
	if strings.HasPrefix(g.Name, "g-") {
		return true
	}
	if g.Name == "" || strings.HasPrefix(g.Name, "c-") || !namedOnly(g) {
		return false
	}
	return !r.isFlow(g)
}

// isFlow reports whether c is a knot or a stitch.
func (r *run) isFlow(c *story.Container) bool {
	root := r.story.Root
	if c.Parent == root {
		return true
	}
	knot := c.Parent
	return knot.Parent == root && namedOnly(knot) && namedOnly(c)
}

func namedOnly(c *story.Container) bool {
	if c.Parent == nil {
		return false
	}
	for _, name := range c.Parent.NamedOnly {
		if name == c.Name {
			return true
		}
	}
	return false
}

func isChoicePoint(in story.Instruction) bool {
	_, ok := in.(*story.ChoicePoint)
	return ok
}

// findEvalEnd returns the index of the "/ev" closing the evaluation opened
// at items[pos], skipping string sections, or -1.
func findEvalEnd(items []story.Instruction, pos int) int {
	depth := 0
	for i := pos + 1; i < len(items); i++ {
		switch {
		case story.IsCommand(items[i], story.CmdBeginString):
			depth++
		case story.IsCommand(items[i], story.CmdEndString):
			depth--
		case story.IsCommand(items[i], story.CmdEvalEnd) && depth == 0:
			return i
		}
	}
	return -1
}
