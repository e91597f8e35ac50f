package main

import (
	"github.com/tsumogiri/riichi-client/internal/cli"
)

func main() {
	cli.Execute()
}
