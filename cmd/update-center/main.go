package main

import "update-center/internal/cli"

func main() {
	cli.Execute()
}
