package main

import "github.com/mpapenbr/racepace/cmd"

func main() {
	cmd.Execute()
}
