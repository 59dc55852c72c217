package main

import "github.com/arendt-dev/focusdeck/cmd"

func main() {
	cmd.Execute()
}
