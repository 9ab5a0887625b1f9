// Package main implements the entry point for the review scheduler server,
// which tracks spaced-repetition progress for learnable items and keeps the
// local cache and remote store in sync across sign-ins.
package main

import (
	"context"
	"log"
	"os"
)

func main() {
	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Printf("failed to initialize application: %v", err)
		os.Exit(1)
	}

	if err := app.run(ctx); err != nil {
		app.logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
