// Command yamlcheck validates YAML documents against a JSON Schema.
//
// Usage:
//
//	yamlcheck [-s schema.json] [--verbose] <document>...
//	yamlcheck serve [-s schema.json]
//
// Nothing is printed for valid documents. Each failing document gets a
// diagnostic block on stderr. The exit status is 0 when every document is
// valid, 1 when any document fails and 2 when the schema is unusable or the
// command line is wrong.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
