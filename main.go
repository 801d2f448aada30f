package main

import "github.com/KaramelBytes/ioscope/cmd"

func main() {
	cmd.Execute()
}
