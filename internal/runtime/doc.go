// SPDX-License-Identifier: MPL-2.0

// Package runtime executes the scripts of compiled inkfile commands.
//
// Two runtime implementations are available:
//   - native: runs each code block with the interpreter selected by its
//     language tag (sh, bash, node, python, ruby, php, deno, or any program
//     that accepts -c), or as an executable file when it starts with a shebang
//   - virtual: runs sh code blocks in the embedded mvdan/sh interpreter and
//     hands every other language to the native runtime
//
// Both implement the Runtime interface with Name(), Execute(), Available()
// and Validate(). Scripts receive the command's arguments and flags as
// environment variables together with INKJET, INK, INKJET_DIR, INK_DIR,
// INKJET_IMPORTED and INKJET_EXECUTION_ID.
package runtime
