package main

import (
	"log"

	"github.com/ridgelinebuilders/ridgeline"
)

func main() {
	cfg, err := ridgeline.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app := ridgeline.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
