package main

import "github.com/shrihari-lab/chipatlas/cmd"

func main() {
	cmd.Execute()
}
