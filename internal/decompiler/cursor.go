package decompiler

import "github.com/roach88/inkdc/internal/story"

// Cursor walks a slice of a container's instructions. Reading past the end
// yields nil rather than failing, so pattern matchers can look ahead freely.
type Cursor struct {
	c     *story.Container
	items []story.Instruction
	pos   int
}

// NewCursor returns a cursor over items, which belong to c.
func NewCursor(c *story.Container, items []story.Instruction) *Cursor {
	return &Cursor{c: c, items: items}
}

// Container returns the container the instructions belong to.
func (cur *Cursor) Container() *story.Container { return cur.c }

// Current returns the instruction under the cursor, or nil at the end.
func (cur *Cursor) Current() story.Instruction {
	if cur.pos >= len(cur.items) {
		return nil
	}
	return cur.items[cur.pos]
}

// Peek returns the instruction n positions ahead, or nil.
func (cur *Cursor) Peek(n int) story.Instruction {
	i := cur.pos + n
	if i < 0 || i >= len(cur.items) {
		return nil
	}
	return cur.items[i]
}

// Advance moves one instruction forward.
func (cur *Cursor) Advance() {
	if cur.pos < len(cur.items) {
		cur.pos++
	}
}

// Done reports whether every instruction has been consumed.
func (cur *Cursor) Done() bool { return cur.pos >= len(cur.items) }

// Pos returns the current position.
func (cur *Cursor) Pos() int { return cur.pos }

// Seek moves to an absolute position.
func (cur *Cursor) Seek(pos int) {
	cur.pos = min(max(pos, 0), len(cur.items))
}

// SkipIfCommand consumes the current instruction when it is a command of
// the given kind.
func (cur *Cursor) SkipIfCommand(kind story.CommandKind) bool {
	if story.IsCommand(cur.Current(), kind) {
		cur.pos++
		return true
	}
	return false
}

// SkipToCommand advances just past the next command of the given kind.
// The cursor does not move when there is none.
func (cur *Cursor) SkipToCommand(kind story.CommandKind) bool {
	for i := cur.pos; i < len(cur.items); i++ {
		if story.IsCommand(cur.items[i], kind) {
			cur.pos = i + 1
			return true
		}
	}
	return false
}

// SkipToLabel advances just past the named container, which the compiler
// uses as a label inside choice evaluation.
func (cur *Cursor) SkipToLabel(name string) bool {
	for i := cur.pos; i < len(cur.items); i++ {
		if c, ok := cur.items[i].(*story.Container); ok && c.Name == name {
			cur.pos = i + 1
			return true
		}
	}
	return false
}

// SkipToVarAssign advances just past the next assignment.
func (cur *Cursor) SkipToVarAssign() (*story.VarAssign, bool) {
	for i := cur.pos; i < len(cur.items); i++ {
		if a, ok := cur.items[i].(*story.VarAssign); ok {
			cur.pos = i + 1
			return a, true
		}
	}
	return nil, false
}

// Tail returns the instructions from the cursor to the end.
func (cur *Cursor) Tail() []story.Instruction {
	return cur.items[cur.pos:]
}

// Slice returns items[from:to], clamped to the available range.
func (cur *Cursor) Slice(from, to int) []story.Instruction {
	from = min(max(from, 0), len(cur.items))
	to = min(max(to, from), len(cur.items))
	return cur.items[from:to]
}
