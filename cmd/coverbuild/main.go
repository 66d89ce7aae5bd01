package main

import "coverbuild/internal/cli"

func main() {
	cli.Execute()
}
