// SPDX-License-Identifier: MPL-2.0

// Package tui provides the terminal UI used by interactive runs.
//
// It renders command sections with glamour, asks for confirmation and
// missing values with huh forms, and pages long output with a bubbles
// viewport. Every component falls back to plain line-based I/O when stdin is
// not a terminal.
package tui
