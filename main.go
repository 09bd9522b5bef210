package main

import "github.com/KaramelBytes/csvlens/cmd"

func main() {
	cmd.Execute()
}
