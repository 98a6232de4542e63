package main

import "github.com/emiliopalmerini/kpiboard/internal/cli"

func main() {
	cli.Execute()
}
