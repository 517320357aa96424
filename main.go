package main

import "auction-marketplace/internal/commands"

func main() {
	commands.Execute()
}
