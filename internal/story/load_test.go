package story

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicStory = `{"inkVersion":21,"root":[["^Hello","\n",["done",{"#n":"g-0"}],null],"done",{"knot":[["^In knot","\n","end",null],{"stitch":[["^S",null],null],"#f":1}],"global decl":["ev",5,{"VAR=":"x"},"/ev","end",null],"#f":1}],"listDefs":{}}`

func TestLoad_ContainerTree(t *testing.T) {
	s, err := Load([]byte(basicStory))
	require.NoError(t, err)

	assert.Equal(t, 21, s.Version)
	assert.Empty(t, s.ListDefs)
	assert.Equal(t, Path(""), s.Root.Path)
	assert.Equal(t, []string{"knot", "global decl"}, s.Root.NamedOnly)
	assert.Equal(t, FlagVisits, s.Root.Flags)

	weave, ok := s.Root.Content[0].(*Container)
	require.True(t, ok)
	assert.Equal(t, Path("0"), weave.Path)
	assert.Same(t, s.Root, weave.Parent)

	gather, ok := weave.Content[2].(*Container)
	require.True(t, ok)
	assert.Equal(t, "g-0", gather.Name)
	assert.Equal(t, Path("0.g-0"), gather.Path)
	assert.Same(t, gather, weave.Named["g-0"])
	assert.Empty(t, weave.NamedOnly, "inline named containers are not named-only")
	assert.True(t, gather.IsDone())

	stitch := s.Root.Named["knot"].Named["stitch"]
	require.NotNil(t, stitch)
	assert.Equal(t, Path("knot.stitch"), stitch.Path)

	require.NotNil(t, s.GlobalDecl())
	assign, ok := s.GlobalDecl().Content[2].(*VarAssign)
	require.True(t, ok)
	assert.Equal(t, VarAssign{Name: "x", Global: true, Declaration: true}, *assign)
}

func TestLoad_Tokens(t *testing.T) {
	doc := `{"inkVersion":21,"root":[["^a","<>","void",1.5,7,true,"L^","MIN","turns",{"VAR?":"v"},{"temp=":"t","re":true},{"#":"tag"},{"x()":"ext","exArgs":2},{"^var":"p","ci":0},null],null]}`
	s, err := Load([]byte(doc))
	require.NoError(t, err)

	c := s.Root.Content[0].(*Container)
	require.Len(t, c.Content, 14)
	assert.Equal(t, &Text{Value: "a"}, c.Content[0])
	assert.IsType(t, &Glue{}, c.Content[1])
	assert.Equal(t, LitVoid, c.Content[2].(*Literal).Kind)
	assert.Equal(t, &Literal{Kind: LitFloat, Float: 1.5}, c.Content[3])
	assert.Equal(t, &Literal{Kind: LitInt, Int: 7}, c.Content[4])
	assert.Equal(t, &Literal{Kind: LitBool, Bool: true}, c.Content[5])
	assert.Equal(t, &NativeCall{Name: "L^"}, c.Content[6])
	assert.Equal(t, &NativeCall{Name: "MIN"}, c.Content[7])
	assert.True(t, IsCommand(c.Content[8], CmdTurnsSince))
	assert.Equal(t, &VarRef{Name: "v"}, c.Content[9])
	assert.Equal(t, &VarAssign{Name: "t"}, c.Content[10])
	assert.Equal(t, &Tag{Text: "tag"}, c.Content[11])

	ext := c.Content[12].(*Jump)
	assert.Equal(t, JumpExternal, ext.Kind)
	assert.Equal(t, 2, ext.ExternalArgs)
	assert.Equal(t, Path("ext"), ext.Target)

	ptr := c.Content[13].(*Literal)
	assert.Equal(t, LitVariablePointer, ptr.Kind)
	assert.Equal(t, "p", ptr.Name)
	assert.Equal(t, 0, ptr.Index)
}

func TestLoad_RelativePaths(t *testing.T) {
	// A sequence container: the branch jump is relative to the sequence,
	// the return jump climbs out of the branch to the rejoin no-op.
	doc := `{"inkVersion":21,"root":[["ev","visit",2,"%","/ev","ev","du",0,"==","/ev",{"->":".^.s0","c":true},"nop",{"s0":["pop","^A",{"->":".^.^.11"},null],"#f":5}],"done",null]}`
	s, err := Load([]byte(doc))
	require.NoError(t, err)

	seq := s.Root.Content[0].(*Container)
	branch := seq.Content[10].(*Jump)
	assert.True(t, branch.Conditional)
	assert.Equal(t, ".^.s0", branch.Raw)
	assert.Equal(t, Path("0.s0.0"), branch.Target, "container target resolves to its first element")
	assert.Same(t, seq, branch.Parent)

	back := seq.Named["s0"].Content[2].(*Jump)
	assert.Equal(t, Path("0.11"), back.Target)
	assert.True(t, IsCommand(s.Resolve(back.Target), CmdNoOp))
	assert.Same(t, seq, s.TargetContainer(back.Target))
	assert.Same(t, seq.Named["s0"], s.TargetContainer(branch.Target))
}

func TestLoad_FirstStitchDivert(t *testing.T) {
	doc := `{"inkVersion":21,"root":[["done",null],"done",{"intro":[{"->":".^.s1"},{"s1":[["^x",null],null]}],"#f":1}]}`
	s, err := Load([]byte(doc))
	require.NoError(t, err)

	j := s.Root.Named["intro"].Content[0].(*Jump)
	assert.Equal(t, Path("intro.s1.0"), j.Target)
	idx, ok := j.Target.LastIndex()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestLoad_EmptyContainerTarget(t *testing.T) {
	doc := `{"inkVersion":21,"root":[[{"->":".^.^.k"},null],"done",{"k":[null],"#f":1}]}`
	s, err := Load([]byte(doc))
	require.NoError(t, err)

	j := s.Root.Content[0].(*Container).Content[0].(*Jump)
	assert.Equal(t, Path("k"), j.Target, "empty containers resolve to themselves")
}

func TestLoad_FunctionTargets(t *testing.T) {
	doc := `{"inkVersion":21,"root":[["ev",{"f()":"fn"},"out","/ev",null],"done",{"fn":[{"temp=":"b"},{"temp=":"a"},"ev",{"VAR?":"a"},"/ev","~ret",null],"knot":[["end",null],null]}]}`
	s, err := Load([]byte(doc))
	require.NoError(t, err)

	fn := s.Root.Named["fn"]
	assert.True(t, s.IsFunction(fn))
	assert.False(t, s.IsFunction(s.Root.Named["knot"]))
	assert.Equal(t, []string{"a", "b"}, fn.LeadingParams())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
	}{
		{"not json", `{"inkVersion":`, ErrCodeSyntax},
		{"old version", `{"inkVersion":18,"root":[null]}`, ErrCodeHeader},
		{"missing root", `{"inkVersion":21}`, ErrCodeHeader},
		{"unknown token", `{"inkVersion":21,"root":["bogus",null]}`, ErrCodeToken},
		{"unknown object", `{"inkVersion":21,"root":[{"zzz":1},null]}`, ErrCodeObject},
		{"dangling relative path", `{"inkVersion":21,"root":[{"->":".^.nowhere"},null]}`, ErrCodeUnresolved},
		{"empty container", `{"inkVersion":21,"root":[[],null]}`, ErrCodeStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "expected *LoadError, got %T: %v", err, err)
			assert.Equal(t, tt.code, le.Code)
			assert.True(t, IsLoadError(err))
		})
	}
}

func TestLiteral_String(t *testing.T) {
	tests := []struct {
		lit  *Literal
		want string
	}{
		{&Literal{Kind: LitInt, Int: 7}, "7"},
		{&Literal{Kind: LitFloat, Float: 1.5}, "1.5"},
		{&Literal{Kind: LitString, Str: "hi"}, `"hi"`},
		{&Literal{Kind: LitDivertTarget, Target: "knot"}, "-> knot"},
		{&Literal{Kind: LitVariablePointer, Name: "x"}, "ref x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.lit.String())
	}
}
