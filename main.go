package main

import "larose-cli/cmd"

func main() {
	cmd.Execute()
}
