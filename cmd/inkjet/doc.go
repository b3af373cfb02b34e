// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the inkjet command line.
//
// The global options in front of the command path are parsed by hand, the
// inkfile is loaded and compiled, and the resulting command tree is bound to
// cobra and executed through fang.
package cmd
