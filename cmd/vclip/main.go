package main

import "github.com/forPelevin/vclip/internal/cli"

func main() {
	cli.Main()
}
