package main

import (
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/internal/app"
)

func main() {
	fx.New(app.CreateApp(), app.EventLogger()).Run()
}
