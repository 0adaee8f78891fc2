package main

import (
	"github.com/netpong/netpong/internal/cli"
)

func main() {
	cli.Execute()
}
