// Package harness verifies the decompiler against known sources.
//
// A verified directory holds pairs of files: an expected source file
// (story.ink) and the compiled story built from it (story.ink.json). Each
// compiled story is decompiled and the result is compared byte for byte
// with the expected source. YAML case files bundle both halves in one
// document:
//
//	name: inline_conditional
//	description: "A single-line conditional with an else branch"
//	story: |
//	  {"inkVersion":21,"root":[...],"listDefs":{}}
//	source: |
//	  {x:yes|no}
//
// # Isolation
//
// Files are verified one at a time. An error or panic while decompiling
// one file is recorded as that file's failure and the batch continues.
//
// # Run log
//
// When Options.Store is set, every batch is recorded as a run with one
// result per file, including the content hashes of the decompiled tree
// and the rendered source. Options.RunIDs fixes run identifiers in tests.
package harness
