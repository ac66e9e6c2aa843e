package main

import (
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/internal/app"
)

func main() {
	fx.New(app.CreateScraperApp(), app.EventLogger()).Run()
}
