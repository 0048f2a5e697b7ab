package main

import "github.com/vibast-solutions/ms-go-mentor-auth/cmd"

func main() {
	cmd.Execute()
}
