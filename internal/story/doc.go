// Package story provides the in-memory graph of a compiled ink story.
//
// A compiled story is a tree of containers. Each container holds an
// ordered content list of instructions and a set of named children; a
// container is itself an instruction. The graph is built once by Load and
// is read-only afterwards.
//
// Key design constraints:
//   - Instruction is a sealed interface; consumers switch exhaustively on it
//   - Every Container carries its Parent and absolute Path, set by the loader
//   - Jump and ChoicePoint targets are absolute; relative paths are resolved
//     at load time the way the ink runtime resolves them (a relative path
//     landing on a container addresses its first element, the "zero offset")
//   - Named-only children keep document order (knot and stitch order)
package story
