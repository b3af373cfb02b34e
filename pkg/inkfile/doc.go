// SPDX-License-Identifier: MPL-2.0

// Package inkfile compiles inkjet markdown documents into command trees.
//
// Headings become commands and subcommands, fenced code blocks become scripts,
// lists introduced by an OPTIONS line become flags and parenthesized tokens in
// headings become positional arguments. Compilation is a single synchronous pass:
// the markdown is turned into a stream of structural events (see Events), the
// events are folded into a flat, depth-tagged command list, and the flat list is
// treeified into nested commands with last-wins override, pruning of script-less
// leaves and tree-wide alias validation.
//
// The returned tree is read-only for consumers: argument binding reads Args,
// Flags, Children and Aliases; execution reads Script, Span and SourceFile.
// Compile holds no package-level mutable state and is safe for concurrent use.
package inkfile
