package main

import "github.com/lockstep-build/lockstep/cmd"

func main() {
	cmd.Execute()
}
