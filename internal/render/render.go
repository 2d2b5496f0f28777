// Package render prints a decompiled story tree as ink source.
//
// Rendering is a pure function of the tree: the same tree always renders
// to the same text. Nested constructs are written with the marker depth
// of their weave ("* *", "- -").
package render

import (
	"strings"

	"github.com/roach88/inkdc/internal/ir"
)

// Renderer accumulates source text.
type Renderer struct {
	buf   strings.Builder
	depth int
}

// Story renders a whole story: globals, root content, then each knot with
// its stitches.
func Story(s *ir.Story) string {
	r := &Renderer{}
	for _, g := range s.Globals {
		r.Node(g)
	}
	r.Block(s.Root)
	for _, f := range s.Flows {
		r.knot(f)
	}
	r.ensureNewline()
	return r.String()
}

// Node renders a single node, returning the text.
func Node(n ir.Node) string {
	r := &Renderer{}
	r.Node(n)
	return r.String()
}

// String returns everything rendered so far.
func (r *Renderer) String() string { return r.buf.String() }

func (r *Renderer) write(s string) { r.buf.WriteString(s) }

// ensureNewline starts a new line unless the output is already at the
// start of one.
func (r *Renderer) ensureNewline() {
	s := r.buf.String()
	if len(s) > 0 && s[len(s)-1] != '\n' {
		r.buf.WriteByte('\n')
	}
}

// Block renders each node in order.
func (r *Renderer) Block(b *ir.Block) {
	if b == nil {
		return
	}
	for _, n := range b.Nodes {
		r.Node(n)
	}
}

// Node renders one node at the current depth.
func (r *Renderer) Node(n ir.Node) {
	switch v := n.(type) {
	case *ir.Block:
		r.Block(v)
	case *ir.Leaf:
		r.leaf(v)
	case *ir.Weave:
		for _, ch := range v.Choices {
			r.choice(ch)
		}
		if v.Gather != nil && !v.Gather.Elided {
			r.gather(v.Gather)
		}
	case *ir.Choice:
		r.choice(v)
	case *ir.Gather:
		r.gather(v)
	case *ir.Sequence:
		r.sequence(v)
	case *ir.Conditional:
		r.conditional(v)
	case *ir.VarAssignment:
		r.ensureNewline()
		switch {
		case v.Global && v.Declaration:
			r.write("VAR ")
		case v.Declaration:
			r.write("~ temp ")
		default:
			r.write("~ ")
		}
		r.write(v.Name + " = " + Expr(v.Initializer) + "\n")
	case *ir.EmbeddedExpr:
		r.write("{" + Expr(v.Expr) + "}")
	case *ir.StatementExpr:
		r.ensureNewline()
		r.write("~ " + Expr(v.Expr) + "\n")
	case *ir.Return:
		r.ensureNewline()
		if v.Value == nil {
			r.write("~ return\n")
		} else {
			r.write("~ return " + Expr(v.Value) + "\n")
		}
	}
}

func (r *Renderer) leaf(l *ir.Leaf) {
	switch l.Kind {
	case ir.LeafText:
		r.write(l.Text)
	case ir.LeafGlue:
		r.write("<>")
	case ir.LeafDivert:
		r.write("-> " + l.Text + "\n")
	case ir.LeafDone:
		r.write("-> DONE\n")
	case ir.LeafEnd:
		r.write("-> END\n")
	case ir.LeafTag:
		if l.Text == "" {
			r.write("#")
		} else {
			r.write("# " + l.Text)
		}
	}
}

func (r *Renderer) choice(ch *ir.Choice) {
	r.ensureNewline()
	marker := "+ "
	if ch.OnceOnly {
		marker = "* "
	}
	r.write(strings.Repeat(marker, r.depth+1))
	if ch.Label != "" {
		r.write("(" + ch.Label + ") ")
	}
	if ch.Condition != nil {
		r.write("{" + Expr(ch.Condition) + "} ")
	}
	r.Block(ch.StartContent)
	if ch.ChoiceOnlyContent != nil {
		r.write("[")
		r.Block(ch.ChoiceOnlyContent)
		r.write("]")
	}
	r.depth++
	r.Block(ch.InnerContent)
	r.depth--
}

func (r *Renderer) gather(g *ir.Gather) {
	r.ensureNewline()
	r.write(strings.Repeat("- ", r.depth+1))
	if g.Label != "" {
		r.write("(" + g.Label + ") ")
	}
	r.Block(g.Body)
}

func (r *Renderer) sequence(s *ir.Sequence) {
	branches := s.Branches
	switch s.Mode {
	case ir.SequenceCycle:
		r.write("{&")
	case ir.SequenceShuffle:
		r.write("{~")
	default:
		// A stopping sequence whose last branch is empty reads as a
		// once-only sequence.
		if n := len(branches); n > 2 && branches[n-1].Empty() {
			branches = branches[:n-1]
			r.write("{!")
		} else {
			r.write("{")
		}
	}
	for i, b := range branches {
		if i > 0 {
			r.write("|")
		}
		r.Block(b)
	}
	r.write("}")
}

func (r *Renderer) conditional(c *ir.Conditional) {
	if c.Discriminator != nil || len(c.Conditions) > 1 {
		r.ensureNewline()
		r.write("{")
		if c.Discriminator != nil {
			r.write(Expr(c.Discriminator) + ":")
		}
		r.write("\n")
		for i, cond := range c.Conditions {
			r.branch("- "+Expr(cond)+":", c.Branches[i])
		}
		if c.Else != nil {
			r.branch("- else:", c.Else)
		}
		r.write("}\n")
		return
	}

	r.write("{" + Expr(c.Conditions[0]) + ":")
	if c.Multiline {
		r.Block(c.Branches[0])
		if c.Else != nil {
			r.ensureNewline()
			r.write("- else:")
			r.Block(c.Else)
		}
		r.ensureNewline()
		r.write("}\n")
		return
	}
	r.Block(c.Branches[0])
	if c.Else != nil {
		r.write("|")
		r.Block(c.Else)
	}
	r.write("}")
}

// branch writes one "- cond:" line of a multi-branch conditional.
func (r *Renderer) branch(head string, body *ir.Block) {
	r.write(head)
	if !body.Empty() && !startsWithNewline(body) {
		r.write(" ")
	}
	r.Block(body)
	r.ensureNewline()
}

func (r *Renderer) knot(f *ir.Flow) {
	r.ensureNewline()
	r.write("== ")
	if f.Function {
		r.write("function ")
	}
	r.write(signature(f) + " ==\n")
	r.Block(f.Body)
	for _, st := range f.Stitches {
		r.ensureNewline()
		r.write("= " + signature(st) + "\n")
		r.Block(st.Body)
	}
}

func signature(f *ir.Flow) string {
	if len(f.Params) == 0 && !f.Function {
		return f.Name
	}
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

func startsWithNewline(b *ir.Block) bool {
	l, ok := b.Nodes[0].(*ir.Leaf)
	return ok && l.Kind == ir.LeafText && strings.HasPrefix(l.Text, "\n")
}
