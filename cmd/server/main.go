package main

import "scorecard/internal/app/server"

func main() {
	server.Run()
}
