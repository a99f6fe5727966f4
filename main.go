package main

import "github.com/marczakme/enzo-translator/cmd"

func main() {
	cmd.Execute()
}
