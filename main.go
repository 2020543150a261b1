package main

import "github.com/vedsharma/reqpad/cmd"

func main() {
	cmd.Execute()
}
