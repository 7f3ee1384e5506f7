package main

import (
	"os"

	"doc-inspector/app"
)

func main() {
	os.Exit(app.Run())
}
