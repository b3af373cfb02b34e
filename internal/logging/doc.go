// SPDX-License-Identifier: MPL-2.0

// Package logging builds the structured stderr logger shared by the CLI,
// loader, binding and runtime packages.
package logging
