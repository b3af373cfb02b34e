// SPDX-License-Identifier: MPL-2.0

// Package issue turns inkjet failures into messages a user can act on.
//
// ActionableError names the failed operation and the file or program
// involved, lists suggestions and links a troubleshooting page from the
// embedded catalog. Get renders those pages with glamour for --inkjet-debug.
package issue
