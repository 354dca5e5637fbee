// Package main is the entry point for the TED Talk ingestion CLI.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/tedrag/cmd/ingest/app"
)

func main() {
	app.NewApp().Run()
}
