package main

import "github.com/panyam/coredsl/cmd/coredsl/commands"

func main() {
	commands.Execute()
}
