// Command transcriptkit assembles speaker-aligned transcripts and manages
// meeting recordings.
//
// Usage:
//
//	transcriptkit [flags] <command> [args]
//
// Commands:
//
//	assemble  - Assemble a transcript from raw engine output
//	meeting   - Create, stop, process and inspect meetings
//
// Configuration is read from config.yml and TRANSCRIPTKIT_* environment
// variables. Use --config to point at a specific file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/transcriptkit/cmd/transcriptkit/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
