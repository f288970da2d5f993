package main

import "go-turing/cmd"

func main() {
	cmd.Execute()
}
