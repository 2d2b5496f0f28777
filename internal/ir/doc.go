// Package ir provides the structural intermediate representation produced
// by the decompiler and consumed by the renderer.
//
// This package contains type definitions and their canonical encoding only.
// It imports nothing internal and holds no story instructions, only
// reconstructed structure: choices, weaves, gathers, sequences,
// conditionals, assignments and expression trees.
//
// Key design constraints:
//   - Node and Expr are sealed interfaces; consumers switch exhaustively
//   - Nodes are built once, top-down, and not modified afterwards, except
//     that Weave.Gather may be retracted (set to nil) by the enclosing weave
//   - Expressions carry operator metadata, never precedence numbers
//   - The canonical encoding sorts keys by UTF-16 code units and NFC
//     normalizes strings, so equal trees hash equally
package ir
