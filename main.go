package main

import "github.com/ginkgo-talk/gtalk-remote/cmd"

func main() {
	cmd.Execute()
}
