// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/reclib/reclib/cmd/reclib"

func main() {
	cmd.Execute()
}
