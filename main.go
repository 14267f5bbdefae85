package main

import "github.com/eslsoft/depictor/cmd"

func main() {
	cmd.Execute()
}
