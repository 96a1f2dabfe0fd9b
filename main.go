package main

import "github.com/ValentinKolb/rexkv/cmd"

func main() {
	cmd.Execute()
}
