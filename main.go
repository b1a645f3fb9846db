package main

import "github.com/basset-hound/houndctl/cmd"

func main() {
	cmd.Execute()
}
