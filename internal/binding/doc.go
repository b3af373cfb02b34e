// SPDX-License-Identifier: MPL-2.0

// Package binding turns a compiled inkfile command tree into a cobra command
// tree.
//
// Every inkfile command becomes a cobra command with its aliases, positional
// arguments and OPTIONS flags. When a command with a script is selected the
// parsed values are collected into an Invocation and handed to the caller's
// Run function; binding itself never executes scripts.
package binding
