package main

import "circuitee/cmd/circuitee/cmd"

func main() {
	cmd.Execute()
}
