package main

import "github.com/gomantics/contribsync/cmd/contribsync/cmd"

func main() {
	cmd.Execute()
}
