package main

import "github.com/mcoot/music-roulette/internal/cli"

func main() {
	cli.Execute()
}
