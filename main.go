package main

import "github.com/jnovak/facecat/cmd"

func main() {
	cmd.Execute()
}
