package main

import "github.com/rebron1900/bymattlee-11ty-starter/cmd"

func main() {
	cmd.Execute()
}
