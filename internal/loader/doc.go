// SPDX-License-Identifier: MPL-2.0

// Package loader locates and reads inkfiles.
//
// An inkfile comes from an explicit path, from stdin ("-"), from inline text
// (any value containing a newline) or from the nearest inkjet.md found by
// walking up from the working directory. Files that opt in with the
// "inkjet_import: all" directive are merged with every inkjet.md below their
// directory before compilation.
package loader
