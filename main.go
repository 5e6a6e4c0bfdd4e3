package main

import "csem/cmd"

func main() {
	cmd.Execute()
}
