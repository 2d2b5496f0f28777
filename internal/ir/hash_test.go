package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStory() *Story {
	return &Story{
		Globals: []*VarAssignment{
			{Name: "x", Global: true, Declaration: true, Initializer: &Literal{Kind: LitFloat, Float: 1.5}},
		},
		Root: &Block{Nodes: []Node{
			&Leaf{Kind: LeafText, Text: "Hello"},
			&Weave{Choices: []*Choice{{
				OnceOnly:     true,
				Condition:    &Binary{Op: MustOperator(">"), Left: &VarRef{Name: "x"}, Right: &Literal{Kind: LitInt, Int: 1}},
				InnerContent: &Block{},
			}}},
		}},
		Flows: []*Flow{{Name: "knot", Body: &Block{Nodes: []Node{&Leaf{Kind: LeafEnd}}}}},
	}
}

func TestStoryHash_Deterministic(t *testing.T) {
	h1, err := StoryHash(sampleStory())
	require.NoError(t, err)
	h2, err := StoryHash(sampleStory())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestStoryHash_SensitiveToStructure(t *testing.T) {
	a := sampleStory()
	b := sampleStory()
	b.Root.Nodes[1].(*Weave).Choices[0].OnceOnly = false

	ha, err := StoryHash(a)
	require.NoError(t, err)
	hb, err := StoryHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestSourceHash_DomainSeparated(t *testing.T) {
	assert.Equal(t, SourceHash("Hello\n"), SourceHash("Hello\n"))
	assert.NotEqual(t, SourceHash("Hello\n"), hashWithDomain(DomainStory, []byte("Hello\n")))
}

func TestEncodeStory(t *testing.T) {
	data, err := MarshalCanonical(EncodeStory(sampleStory()))
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"ir_version":"1"`)
	assert.Contains(t, s, `"kind":"float","type":"literal","value":"1.5"`)
	assert.Contains(t, s, `"op":">"`)
	assert.Contains(t, s, `{"type":"end"}`)
}
