package decompiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/story"
)

func exprRun(t *testing.T) *run {
	t.Helper()
	s, err := story.Load([]byte(doc(`[["done",null],"done",{"pair":[{"temp=":"b"},{"temp=":"a"},"ev",{"VAR?":"a"},"/ev","~ret",null]}]`)))
	require.NoError(t, err)
	return newRun(context.Background(), s)
}

func TestBuildExpr(t *testing.T) {
	r := exprRun(t)
	x := &story.VarRef{Name: "x"}
	y := &story.VarRef{Name: "y"}

	tests := []struct {
		name  string
		items []story.Instruction
		want  ir.Expr
	}{
		{
			name:  "binary keeps operand order",
			items: []story.Instruction{x, y, &story.NativeCall{Name: "-"}},
			want:  &ir.Binary{Op: ir.MustOperator("-"), Left: &ir.VarRef{Name: "x"}, Right: &ir.VarRef{Name: "y"}},
		},
		{
			name:  "negation",
			items: []story.Instruction{x, &story.NativeCall{Name: "_"}},
			want:  &ir.Unary{Op: ir.MustOperator("_"), Operand: &ir.VarRef{Name: "x"}},
		},
		{
			name:  "builtin operator",
			items: []story.Instruction{x, y, &story.NativeCall{Name: "POW"}},
			want:  &ir.Call{Name: "POW", Args: []ir.Expr{&ir.VarRef{Name: "x"}, &ir.VarRef{Name: "y"}}},
		},
		{
			name:  "string literal",
			items: []story.Instruction{cmd(story.CmdBeginString), &story.Text{Value: "hi"}, cmd(story.CmdEndString)},
			want:  &ir.Literal{Kind: ir.LitString, Str: "hi"},
		},
		{
			name:  "pushed string literal",
			items: []story.Instruction{&story.Literal{Kind: story.LitString, Str: "hi"}},
			want:  &ir.Literal{Kind: ir.LitString, Str: "hi"},
		},
		{
			name:  "read count",
			items: []story.Instruction{&story.VarRef{CountPath: "knot.stitch"}},
			want:  &ir.VarRef{Name: "knot.stitch", ReadCount: true},
		},
		{
			name:  "turns since",
			items: []story.Instruction{&story.Literal{Kind: story.LitDivertTarget, Target: "knot"}, cmd(story.CmdTurnsSince)},
			want:  &ir.Call{Name: "TURNS_SINCE", Args: []ir.Expr{&ir.Literal{Kind: ir.LitDivertTarget, Str: "knot"}}},
		},
		{
			name:  "function arity from parameters",
			items: []story.Instruction{&story.Literal{Kind: story.LitInt, Int: 1}, &story.Literal{Kind: story.LitFloat, Float: 2.5}, &story.Jump{Kind: story.JumpFunction, Target: "pair"}},
			want: &ir.Call{Name: "pair", Args: []ir.Expr{
				&ir.Literal{Kind: ir.LitInt, Int: 1},
				&ir.Literal{Kind: ir.LitFloat, Float: 2.5},
			}},
		},
		{
			name:  "external call",
			items: []story.Instruction{x, &story.Jump{Kind: story.JumpExternal, Raw: "play", ExternalArgs: 1}},
			want:  &ir.Call{Name: "play", Args: []ir.Expr{&ir.VarRef{Name: "x"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.buildExpr(nil, tt.items, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildExpr_Failures(t *testing.T) {
	r := exprRun(t)
	tests := []struct {
		name  string
		items []story.Instruction
	}{
		{"empty", nil},
		{"two values", []story.Instruction{&story.VarRef{Name: "x"}, &story.VarRef{Name: "y"}}},
		{"underflow", []story.Instruction{&story.VarRef{Name: "x"}, &story.NativeCall{Name: "+"}}},
		{"void", []story.Instruction{&story.Literal{Kind: story.LitVoid}}},
		{"unknown operator", []story.Instruction{&story.VarRef{Name: "x"}, &story.NativeCall{Name: "LIST_COUNT"}}},
		{"interpolated string", []story.Instruction{cmd(story.CmdBeginString), cmd(story.CmdEvalStart), cmd(story.CmdEndString)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.buildExpr(nil, tt.items, false)
			assert.True(t, IsUnsupported(err), "strict mode reports %v", err)

			got, err := r.buildExpr(nil, tt.items, true)
			assert.NoError(t, err)
			assert.Nil(t, got, "optional mode reports no match")
		})
	}
}
