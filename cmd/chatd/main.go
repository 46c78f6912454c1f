package main

import (
	"log"

	"github.com/JayRenji/chat-app/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
