package main

import (
	"github.com/craftlink/go-backend/internal/app"
)

func main() {
	app.Run()
}
