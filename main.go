package main

import "github.com/Tiliavir/studylog/cmd"

func main() {
	cmd.Execute()
}
