package main

import "github.com/khrees2412/linkfolio/cmd"

func main() {
	cmd.Execute()
}
