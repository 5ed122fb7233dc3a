// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/sasrun-org/sasrun/cmd"

func main() {
	cmd.Execute()
}
