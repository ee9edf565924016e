package main

import (
	"github.com/wanheng20031114/whgame-Tetris/internal/cli"
)

func main() {
	cli.Execute()
}
