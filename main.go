package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kong/dashctl/internal/build"
	"github.com/kong/dashctl/internal/cmd/root"
	"github.com/kong/dashctl/internal/iostreams"
)

// Set at link time, e.g. -ldflags "-X main.version=1.0.0".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func registerSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		sig := <-sigs
		fmt.Fprintln(os.Stderr, "received", sig, ", terminating...")
		cancel()
	}()
	return ctx
}

func main() {
	ctx := registerSignalHandler()
	root.Execute(ctx, iostreams.GetOSIOStreams(), &build.Info{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
}
