package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/inkdc/internal/ir"
)

func text(s string) *ir.Leaf { return &ir.Leaf{Kind: ir.LeafText, Text: s} }

func block(nodes ...ir.Node) *ir.Block { return &ir.Block{Nodes: nodes} }

func TestExpr_Parenthesization(t *testing.T) {
	x := &ir.VarRef{Name: "x"}
	y := &ir.VarRef{Name: "y"}
	one := &ir.Literal{Kind: ir.LitInt, Int: 1}
	sum := &ir.Binary{Op: ir.MustOperator("+"), Left: x, Right: one}

	tests := []struct {
		name string
		expr ir.Expr
		want string
	}{
		{"flat binary", sum, "x + 1"},
		{"nested binary", &ir.Binary{Op: ir.MustOperator("*"), Left: sum, Right: y}, "(x + 1) * y"},
		{"not", &ir.Unary{Op: ir.MustOperator("!"), Operand: x}, "not x"},
		{"not of binary", &ir.Unary{Op: ir.MustOperator("!"), Operand: &ir.Binary{Op: ir.MustOperator("&&"), Left: x, Right: y}}, "not (x && y)"},
		{"negate", &ir.Unary{Op: ir.MustOperator("_"), Operand: sum}, "-(x + 1)"},
		{"call", &ir.Call{Name: "MAX", Args: []ir.Expr{sum, y}}, "MAX(x + 1, y)"},
		{"float", &ir.Literal{Kind: ir.LitFloat, Float: 2}, "2.0"},
		{"string", &ir.Literal{Kind: ir.LitString, Str: "hi"}, `"hi"`},
		{"divert target", &ir.Literal{Kind: ir.LitDivertTarget, Str: "knot.stitch"}, "-> knot.stitch"},
		{"read count", &ir.VarRef{Name: "knot", ReadCount: true}, "knot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expr(tt.expr))
		})
	}
}

func TestRender_Sequences(t *testing.T) {
	tests := []struct {
		name string
		seq  *ir.Sequence
		want string
	}{
		{"cycle", &ir.Sequence{Mode: ir.SequenceCycle, Branches: []*ir.Block{block(text("a")), block(text("b"))}}, "{&a|b}"},
		{"shuffle", &ir.Sequence{Mode: ir.SequenceShuffle, Branches: []*ir.Block{block(text("a")), block(text("b"))}}, "{~a|b}"},
		{"stopping", &ir.Sequence{Branches: []*ir.Block{block(text("a")), block(text("b"))}}, "{a|b}"},
		{
			"stopping with empty tail reads as once",
			&ir.Sequence{Branches: []*ir.Block{block(text("A")), block(text("B")), block(text("C")), block()}},
			"{!A|B|C}",
		},
		{
			"two branches keep the empty tail",
			&ir.Sequence{Branches: []*ir.Block{block(text("A")), block()}},
			"{A|}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Node(tt.seq))
		})
	}
}

func TestRender_NestedWeave(t *testing.T) {
	inner := &ir.Weave{
		Choices: []*ir.Choice{
			{OnceOnly: true, ChoiceOnlyContent: block(text("B")), InnerContent: block(text("\n"))},
			{ChoiceOnlyContent: block(text("C")), InnerContent: block(text("\n"))},
		},
		Gather: &ir.Gather{Body: block(text("Inner."), text("\n"))},
	}
	outer := &ir.Weave{
		Choices: []*ir.Choice{{
			OnceOnly:     true,
			Label:        "pick",
			Condition:    &ir.VarRef{Name: "ready"},
			StartContent: block(text("A")),
			InnerContent: block(text("\n"), inner),
		}},
		Gather: &ir.Gather{Label: "after", Body: block(text("Outer."), text("\n"))},
	}

	want := "* (pick) {ready} A\n" +
		"* * [B]\n" +
		"+ + [C]\n" +
		"- - Inner.\n" +
		"- (after) Outer.\n"
	assert.Equal(t, want, Node(outer))
}

func TestRender_ElidedGather(t *testing.T) {
	w := &ir.Weave{Gather: &ir.Gather{Elided: true, Body: block(&ir.Leaf{Kind: ir.LeafDone})}}
	assert.Equal(t, "", Node(w))
}

func TestRender_Conditionals(t *testing.T) {
	x := &ir.VarRef{Name: "x"}
	tests := []struct {
		name string
		cond *ir.Conditional
		want string
	}{
		{
			"inline",
			&ir.Conditional{Conditions: []ir.Expr{x}, Branches: []*ir.Block{block(text("yes"))}, Else: block(text("no"))},
			"{x:yes|no}",
		},
		{
			"inline without else",
			&ir.Conditional{Conditions: []ir.Expr{x}, Branches: []*ir.Block{block(text("yes"))}},
			"{x:yes}",
		},
		{
			"multiline single condition",
			&ir.Conditional{
				Conditions: []ir.Expr{x},
				Branches:   []*ir.Block{block(text("\n"), text("A"), text("\n"))},
				Else:       block(text("\n"), text("B"), text("\n")),
				Multiline:  true,
			},
			"{x:\nA\n- else:\nB\n}\n",
		},
		{
			"multiple conditions",
			&ir.Conditional{
				Conditions: []ir.Expr{x, &ir.VarRef{Name: "y"}},
				Branches:   []*ir.Block{block(text("\n"), text("A"), text("\n")), block(text("B"))},
			},
			"{\n- x:\nA\n- y: B\n}\n",
		},
		{
			"switch",
			&ir.Conditional{
				Discriminator: x,
				Conditions:    []ir.Expr{&ir.Literal{Kind: ir.LitInt, Int: 1}},
				Branches:      []*ir.Block{block(text("\n"), text("one"), text("\n"))},
				Else:          block(text("\n"), text("other"), text("\n")),
			},
			"{x:\n- 1:\none\n- else:\nother\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Node(tt.cond))
		})
	}
}

func TestRender_Statements(t *testing.T) {
	one := &ir.Literal{Kind: ir.LitInt, Int: 1}
	b := block(
		text("Total: "),
		&ir.EmbeddedExpr{Expr: &ir.VarRef{Name: "n"}},
		&ir.VarAssignment{Name: "n", Initializer: one},
		&ir.VarAssignment{Name: "t", Declaration: true, Initializer: one},
		&ir.StatementExpr{Expr: &ir.Call{Name: "reset"}},
		&ir.Return{},
		&ir.Return{Value: one},
		&ir.Leaf{Kind: ir.LeafDivert, Text: "knot"},
		text("Hi "),
		&ir.Leaf{Kind: ir.LeafTag, Text: "legacy"},
		&ir.Leaf{Kind: ir.LeafGlue},
	)
	want := "Total: {n}\n" +
		"~ n = 1\n" +
		"~ temp t = 1\n" +
		"~ reset()\n" +
		"~ return\n" +
		"~ return 1\n" +
		"-> knot\n" +
		"Hi # legacy<>"
	assert.Equal(t, want, Node(b))
}

func TestRender_Story(t *testing.T) {
	s := &ir.Story{
		Globals: []*ir.VarAssignment{{Name: "gold", Global: true, Declaration: true, Initializer: &ir.Literal{Kind: ir.LitInt, Int: 3}}},
		Root:    block(text("Start"), text("\n"), &ir.Leaf{Kind: ir.LeafDivert, Text: "town"}),
		Flows: []*ir.Flow{
			{
				Name: "town",
				Body: block(),
				Stitches: []*ir.Flow{
					{Name: "square", Params: []string{"who"}, Body: block(text("Busy."), text("\n"), &ir.Leaf{Kind: ir.LeafEnd})},
				},
			},
			{
				Name:     "add",
				Params:   []string{"a", "b"},
				Function: true,
				Body:     block(&ir.Return{Value: &ir.Binary{Op: ir.MustOperator("+"), Left: &ir.VarRef{Name: "a"}, Right: &ir.VarRef{Name: "b"}}}),
			},
		},
	}
	want := "VAR gold = 3\n" +
		"Start\n" +
		"-> town\n" +
		"== town ==\n" +
		"= square(who)\n" +
		"Busy.\n" +
		"-> END\n" +
		"== function add(a, b) ==\n" +
		"~ return a + b\n"
	assert.Equal(t, want, Story(s))
}

func TestRender_Deterministic(t *testing.T) {
	s := &ir.Story{Root: block(&ir.Sequence{Mode: ir.SequenceCycle, Branches: []*ir.Block{block(text("a")), block(text("b"))}})}
	assert.Equal(t, Story(s), Story(s))
}
