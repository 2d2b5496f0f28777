package decompiler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/inkdc/internal/ctxlog"
	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

// span is a run of instructions belonging to one container. It is usually
// the whole content list, but choice and branch bodies scan sub-ranges.
type span struct {
	c     *story.Container
	items []story.Instruction
}

// analyzer tries to recognize a construct starting at items[pos]. It returns
// the position after the construct, or pos when nothing matched. A match
// may produce a nil node when the construct has no source form.
type analyzer func(r *run, sp span, pos int) (ir.Node, int, error)

type namedAnalyzer struct {
	name string
	fn   analyzer
}

// analyzers run in priority order; the first match wins. The slice is
// filled in init because the analyzers recurse through scan.
var analyzers []namedAnalyzer

func init() {
	analyzers = []namedAnalyzer{
		{"weave", analyzeWeave},
		{"multiline conditional", analyzeMultilineConditional},
		{"sequence", analyzeSequence},
		{"conditional", analyzeConditional},
		{"evaluation", analyzeEvaluation},
	}
}

// run holds the state of one decompilation.
type run struct {
	story *story.Story
	log   *slog.Logger
	// weaveHome records the container whose content holds each weave's
	// choices. Gather ownership is decided from it.
	weaveHome map[*ir.Weave]*story.Container
}

func newRun(ctx context.Context, s *story.Story) *run {
	return &run{
		story:     s,
		log:       ctxlog.FromContext(ctx),
		weaveHome: make(map[*ir.Weave]*story.Container),
	}
}

// Decompile reconstructs the structural tree of a loaded story. The first
// construct without a source form aborts with an *UnsupportedError.
func Decompile(ctx context.Context, s *story.Story) (*ir.Story, error) {
	r := newRun(ctx, s)
	if len(s.ListDefs) > 0 {
		return nil, &UnsupportedError{Reason: fmt.Sprintf("LIST definitions (%s)", strings.Join(s.ListDefs, ", "))}
	}

	out := &ir.Story{}
	globals, err := r.globals()
	if err != nil {
		return nil, fmt.Errorf("global declarations: %w", err)
	}
	out.Globals = globals

	items := s.Root.Content
	if n := len(items); n > 0 && story.IsCommand(items[n-1], story.CmdDone) {
		items = items[:n-1]
	}
	r.log.Debug("scanning root", "instructions", len(items))
	root, err := r.scan(span{c: s.Root, items: items})
	if err != nil {
		return nil, err
	}
	out.Root = root

	for _, k := range s.Root.NamedOnlyContainers() {
		if k.Name == story.GlobalDeclName || isWeaveName(k.Name) {
			continue
		}
		f, err := r.flow(k, true)
		if err != nil {
			return nil, fmt.Errorf("knot %s: %w", k.Name, err)
		}
		out.Flows = append(out.Flows, f)
	}
	return out, nil
}

// globals decompiles the VAR declarations. Each must become an assignment.
func (r *run) globals() ([]*ir.VarAssignment, error) {
	gd := r.story.GlobalDecl()
	if gd == nil {
		return nil, nil
	}
	items := gd.Content
	if n := len(items); n > 0 && story.IsCommand(items[n-1], story.CmdEnd) {
		items = items[:n-1]
	}
	block, err := r.scan(span{c: gd, items: items})
	if err != nil {
		return nil, err
	}
	var out []*ir.VarAssignment
	var collect func(nodes []ir.Node) error
	collect = func(nodes []ir.Node) error {
		for _, n := range nodes {
			switch v := n.(type) {
			case *ir.VarAssignment:
				out = append(out, v)
			case *ir.Block:
				if err := collect(v.Nodes); err != nil {
					return err
				}
			default:
				return unsupported(gd, nil, "global declarations hold %T", n)
			}
		}
		return nil
	}
	if err := collect(block.Nodes); err != nil {
		return nil, err
	}
	return out, nil
}

// flow decompiles a knot or stitch. Leading parameter bindings are
// consumed before the body is scanned.
func (r *run) flow(c *story.Container, knot bool) (*ir.Flow, error) {
	params := c.LeadingParams()
	r.log.Debug("decompiling flow", "name", c.Name, "params", len(params))
	body, err := r.scan(span{c: c, items: c.Content[len(params):]})
	if err != nil {
		return nil, err
	}
	f := &ir.Flow{
		Name:     c.Name,
		Params:   params,
		Function: r.story.IsFunction(c) || returnsValue(c),
		Body:     body,
	}
	if !knot {
		return f, nil
	}
	for _, st := range c.NamedOnlyContainers() {
		if isWeaveName(st.Name) {
			continue
		}
		sf, err := r.flow(st, false)
		if err != nil {
			return nil, fmt.Errorf("stitch %s: %w", st.Name, err)
		}
		f.Stitches = append(f.Stitches, sf)
	}
	return f, nil
}

// scan turns a run of instructions into a block. At each position the
// analyzers are tried in order; unclaimed instructions become leaves.
func (r *run) scan(sp span) (*ir.Block, error) {
	block := &ir.Block{}
	pos := 0
	for pos < len(sp.items) {
		matched := false
		for _, a := range analyzers {
			node, end, err := a.fn(r, sp, pos)
			if err != nil {
				return nil, err
			}
			if end <= pos {
				continue
			}
			r.log.Debug("matched", "analyzer", a.name, "container", string(sp.c.Path), "from", pos, "to", end)
			if node != nil {
				block.Append(node)
			}
			pos = end
			matched = true
			break
		}
		if matched {
			continue
		}
		node, err := r.leaf(sp.c, sp.items[pos])
		if err != nil {
			return nil, err
		}
		if node != nil {
			block.Append(node)
		}
		pos++
	}
	return block, nil
}

func (r *run) scanContainer(c *story.Container) (*ir.Block, error) {
	return r.scan(span{c: c, items: c.Content})
}

// leaf converts an instruction no analyzer claimed.
func (r *run) leaf(c *story.Container, in story.Instruction) (ir.Node, error) {
	switch v := in.(type) {
	case *story.Text:
		return &ir.Leaf{Kind: ir.LeafText, Text: v.Value}, nil
	case *story.Glue:
		return &ir.Leaf{Kind: ir.LeafGlue}, nil
	case *story.Tag:
		return &ir.Leaf{Kind: ir.LeafTag, Text: v.Text}, nil
	case *story.Command:
		switch v.Kind {
		case story.CmdNoOp, story.CmdEndTag:
			return nil, nil
		case story.CmdDone:
			return &ir.Leaf{Kind: ir.LeafDone}, nil
		case story.CmdEnd:
			return &ir.Leaf{Kind: ir.LeafEnd}, nil
		case story.CmdBeginTag:
			return &ir.Leaf{Kind: ir.LeafTag}, nil
		}
	case *story.Jump:
		if v.Kind != story.JumpDivert || v.Conditional {
			break
		}
		if v.Variable {
			return &ir.Leaf{Kind: ir.LeafDivert, Text: v.Raw}, nil
		}
		if r.generatedDivert(v) {
			return nil, nil
		}
		return &ir.Leaf{Kind: ir.LeafDivert, Text: v.Target.Display(), Target: string(v.Target)}, nil
	case *story.Container:
		if v.Name != "" {
			return r.autoGather(v)
		}
		return r.scanContainer(v)
	}
	return nil, unsupported(c, in, "no source form")
}

// generatedDivert reports whether a divert was emitted by the compiler
// rather than written by the author: a jump into a gather that only
// finishes the story, or the implicit entry into a knot's first stitch.
func (r *run) generatedDivert(j *story.Jump) bool {
	if target := r.story.TargetContainer(j.Target); target != nil && target.IsDone() {
		return true
	}
	if j.Parent != nil && len(j.Parent.Content) == 1 {
		if idx, ok := j.Target.LastIndex(); ok && idx == 0 {
			return true
		}
	}
	return false
}

// autoGather decompiles a gather reached by falling through rather than by
// a choice's loose end. It is a weave with no choices.
func (r *run) autoGather(c *story.Container) (ir.Node, error) {
	body, err := r.scanContainer(c)
	if err != nil {
		return nil, err
	}
	return &ir.Weave{
		Gather:     &ir.Gather{Label: gatherLabel(c), Body: body, Elided: onlyDone(c)},
		GatherPath: string(c.Path),
	}, nil
}

// gatherLabel returns the author's label; compiler names have none.
func gatherLabel(c *story.Container) string {
	if strings.HasPrefix(c.Name, "g-") {
		return ""
	}
	return c.Name
}

func onlyDone(c *story.Container) bool {
	return len(c.Content) == 1 && story.IsCommand(c.Content[0], story.CmdDone)
}

// isWeaveName reports whether a name was generated for a choice or gather.
func isWeaveName(name string) bool {
	return strings.HasPrefix(name, "c-") || strings.HasPrefix(name, "g-")
}

// returnsValue reports whether a flow's own content returns from a
// function. Stitches are not part of the flow's own content.
func returnsValue(flow *story.Container) bool {
	stitches := make(map[*story.Container]bool)
	for _, st := range flow.NamedOnlyContainers() {
		if !isWeaveName(st.Name) {
			stitches[st] = true
		}
	}
	var walk func(c *story.Container) bool
	walk = func(c *story.Container) bool {
		for _, in := range c.Content {
			if story.IsCommand(in, story.CmdPopFunction) {
				return true
			}
			if child, ok := in.(*story.Container); ok && child.Name == "" && walk(child) {
				return true
			}
		}
		for _, child := range c.Named {
			if !stitches[child] && walk(child) {
				return true
			}
		}
		return false
	}
	return walk(flow)
}
