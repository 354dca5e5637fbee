// Package main is the entry point for the TED Talk QA service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/tedrag/cmd/tedrag/app"
)

func main() {
	app.NewApp().Run()
}
