package main

import "github.com/lrem/reorg/cmd/reorg/cmd"

func main() {
	cmd.Execute()
}
