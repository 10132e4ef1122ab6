package main

import "github.com/killallgit/menudata/cmd"

func main() {
	cmd.Execute()
}
