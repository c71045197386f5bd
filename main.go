package main

import "github.com/Rachit-Gandhi/ProjectNavigator/cmd"

func main() {
	cmd.Execute()
}
