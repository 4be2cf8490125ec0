package main

import "oceanwatch/internal/cli"

func main() {
	cli.Execute()
}
