package main

import "github.com/theirongolddev/opdusage/cmd"

func main() {
	cmd.Execute()
}
