package main

import "github.com/nextlevelbuilder/tgsampler/cmd"

func main() {
	cmd.Execute()
}
