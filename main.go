// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/inkjet/inkjet/cmd/inkjet"

func main() {
	cmd.Execute()
}
