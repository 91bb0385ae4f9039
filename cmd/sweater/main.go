package main

import "github.com/emrgen/sweater/cmd"

func main() {
	cmd.Execute()
}
