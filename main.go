package main

import (
	"github.com/petiibhuzah/golang-blockchain/cli"
)

func main() {
	cmd := cli.CommandLine{}
	cmd.Run()
}
