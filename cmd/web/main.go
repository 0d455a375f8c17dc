package main

import "modelhub_backend/internal/app"

func main() {
	app.Run()
}
