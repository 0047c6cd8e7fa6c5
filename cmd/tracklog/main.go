package main

import "github.com/tessro/tracklog/internal/cli"

func main() {
	cli.Execute()
}
