package main

import "github.com/auxroom/auxroom/cmd"

func main() {
	cmd.Execute()
}
