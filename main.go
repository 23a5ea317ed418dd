package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leadforge/linkedin-leads-crawler/cmd"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "leadcrawl: %v\n", err)
		// Setup failures are the only fatal class; anything else already
		// degraded to partial output.
		if scrape.IsSetupError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
