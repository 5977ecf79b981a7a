package main

import "os"

func main() {
	// dig wiring is opt-in; manual wiring remains the default
	if os.Getenv("DI_CONTAINER") == "dig" {
		startWithDig()
		return
	}
	startManual()
}
