package main

import "github.com/ValentinKolb/birch/cmd"

func main() {
	cmd.Execute()
}
