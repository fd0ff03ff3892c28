package main

import "github.com/kamusis/novagen/cmd"

func main() {
	cmd.Execute()
}
