// Command jnflash programs JN5169 devices over a local serial line or a
// remote bridge, and can emulate a device or run a bridge agent.
package main

import "github.com/moffa90/go-jnflash/cmd/jnflash/cmd"

func main() {
	cmd.Execute()
}
