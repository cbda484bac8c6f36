package main

import "github.com/dmitrijs2005/secretkey/cmd/server/cmd"

func main() {
	cmd.Execute()
}
