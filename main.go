package main

import "github.com/loanlens/loanlens/cmd"

func main() {
	cmd.Execute()
}
