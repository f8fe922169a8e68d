package main

import "github.com/takeshy/davquery/cmd"

func main() {
	cmd.Execute()
}
