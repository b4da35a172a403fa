// Command togglesolve computes the fewest button presses that configure a
// batch of factory machines.
package main

import "github.com/jfkriz/togglesolve/cmd/togglesolve/cmd"

func main() {
	cmd.Execute()
}
