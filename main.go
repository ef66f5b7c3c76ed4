package main

import "github.com/Tiliavir/trivial-break-reminder/cmd"

func main() {
	cmd.Execute()
}
