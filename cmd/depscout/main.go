package main

import "github.com/mvp-joe/depscout/internal/cli"

func main() {
	cli.Execute()
}
