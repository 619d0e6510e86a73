package main

import "github.com/halvard/dbf3/cmd/dbf3/cmd"

func main() {
	cmd.Execute()
}
