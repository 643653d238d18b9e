package main

import "anoa.com/cfptracker/internal/cmd"

func main() {
	cmd.Execute()
}
