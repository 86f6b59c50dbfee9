package main

import "simbatch/internal/app"

func main() {
	app.Run()
}
