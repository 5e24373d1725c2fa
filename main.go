package main

import (
	"soundscore/cmd"
)

func main() {
	cmd.Execute()
}
