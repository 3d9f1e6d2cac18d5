package main

import "github.com/vietddude/screencore/internal/cli"

func main() {
	cli.Execute()
}
