package main

import (
	"log"
	"os"

	"github.com/northbeam/studiocms"
)

func main() {
	cfg, err := studiocms.LoadConfig(os.Getenv("STUDIOCMS_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	app := studiocms.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
