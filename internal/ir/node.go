package ir

// Node is an element of the structural tree.
//
// This is a sealed interface; only types in this package implement it.
type Node interface {
	irNode() // marker method - unexported prevents external implementations
}

// LeafKind identifies the content of a Leaf.
type LeafKind int

const (
	LeafText LeafKind = iota
	LeafGlue
	LeafDivert
	LeafDone
	LeafEnd
	LeafTag
)

// Leaf is a single piece of content not consumed by a larger construct.
type Leaf struct {
	Kind LeafKind
	// Text is the output text, the tag text, or the divert target as the
	// author writes it.
	Text string
	// Target is the absolute path of a divert's target.
	Target string
}

// Block is an ordered sequence of nodes.
type Block struct {
	Nodes []Node
}

// Append adds nodes to the block.
func (b *Block) Append(n ...Node) {
	b.Nodes = append(b.Nodes, n...)
}

// Empty reports whether the block holds no nodes.
func (b *Block) Empty() bool {
	return b == nil || len(b.Nodes) == 0
}

// Last returns the final node, or nil.
func (b *Block) Last() Node {
	if b.Empty() {
		return nil
	}
	return b.Nodes[len(b.Nodes)-1]
}

// TrimLast removes the final node.
func (b *Block) TrimLast() {
	if !b.Empty() {
		b.Nodes = b.Nodes[:len(b.Nodes)-1]
	}
}

// Choice is a player-selectable option.
type Choice struct {
	OnceOnly          bool
	Label             string
	Condition         Expr
	StartContent      *Block
	ChoiceOnlyContent *Block
	InnerContent      *Block
}

// Weave is a run of sibling choices sharing one rejoin point.
type Weave struct {
	Choices []*Choice
	// Gather is the rejoin point. The enclosing weave may retract it when
	// it turns out to be the enclosing weave's own gather.
	Gather *Gather
	// GatherPath is the absolute path all choices rejoin at, kept after a
	// retraction so the enclosing weave can match it.
	GatherPath string
}

// Gather is the content resumed after a weave's choices converge.
type Gather struct {
	Label string
	Body  *Block
	// Elided marks a compiler-generated gather that holds only "done".
	Elided bool
}

// SequenceMode classifies a sequence.
type SequenceMode int

const (
	SequenceStopping SequenceMode = iota
	SequenceCycle
	SequenceShuffle
)

func (m SequenceMode) String() string {
	switch m {
	case SequenceCycle:
		return "cycle"
	case SequenceShuffle:
		return "shuffle"
	}
	return "stopping"
}

// Sequence holds alternatives chosen by visit count.
type Sequence struct {
	Mode     SequenceMode
	Branches []*Block
}

// Conditional is an inline conditional, a multi-line conditional or a
// switch (Discriminator set).
type Conditional struct {
	Conditions    []Expr
	Branches      []*Block
	Else          *Block
	Discriminator Expr
	// Multiline marks a single-condition conditional whose branches start
	// on their own line.
	Multiline bool
}

// VarAssignment assigns or declares a variable.
type VarAssignment struct {
	Name        string
	Global      bool
	Declaration bool
	Initializer Expr
}

// EmbeddedExpr is an expression whose value is printed inline.
type EmbeddedExpr struct {
	Expr Expr
}

// StatementExpr is an expression evaluated for its side effects.
type StatementExpr struct {
	Expr Expr
}

// Return returns from a function, with an optional value.
type Return struct {
	Value Expr
}

func (*Leaf) irNode()          {}
func (*Block) irNode()         {}
func (*Choice) irNode()        {}
func (*Weave) irNode()         {}
func (*Gather) irNode()        {}
func (*Sequence) irNode()      {}
func (*Conditional) irNode()   {}
func (*VarAssignment) irNode() {}
func (*EmbeddedExpr) irNode()  {}
func (*StatementExpr) irNode() {}
func (*Return) irNode()        {}

// Flow is a knot, stitch or function.
type Flow struct {
	Name     string
	Params   []string
	Function bool
	Body     *Block
	Stitches []*Flow
}

// Story is the decompiled form of a whole story.
type Story struct {
	Globals []*VarAssignment
	Root    *Block
	Flows   []*Flow
}
