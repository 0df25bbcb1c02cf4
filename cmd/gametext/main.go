package main

import "gametext/internal/cli"

func main() {
	cli.Execute()
}
