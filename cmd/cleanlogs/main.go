package main

import "github.com/gratian-dicu-sv/cleanlogs/internal/cmd"

func main() {
	cmd.Execute()
}
