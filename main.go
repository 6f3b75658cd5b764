package main

import "github.com/theirongolddev/weightlog/cmd"

func main() {
	cmd.Execute()
}
