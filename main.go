package main

import "github.com/ritual-sh/ritual/cmd"

func main() {
	cmd.Execute()
}
