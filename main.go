package main

import "github.com/mhornak/faceclock/cmd"

func main() {
	cmd.Execute()
}
