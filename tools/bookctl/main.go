// bookctl is the operator CLI for the booking service.
//
//	bookctl seed    load companies and services from a YAML fixture into Postgres
//	bookctl book    walk the booking widget against a running API
//	bookctl health  query the gRPC health endpoint
//	bookctl events  tail booking events from Kafka
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/md-rashed-zaman/agentbook/libs/config"
	"github.com/md-rashed-zaman/agentbook/libs/runtime"
	"github.com/spf13/pflag"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, out io.Writer) error
}

var commands = []command{
	{"seed", "load fixture companies and services into Postgres", runSeed},
	{"book", "book a slot through the widget flow", runBook},
	{"health", "probe the gRPC health endpoint", runHealth},
	{"events", "tail booking events from Kafka", runEvents},
}

func main() {
	config.LoadDotEnv()

	ctx, stop := runtime.SignalContext()
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "bookctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(out)
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], out)
		}
	}
	usage(out)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "usage: bookctl <command> [flags]")
	fmt.Fprintln(out)
	for _, c := range commands {
		fmt.Fprintf(out, "  %-8s %s\n", c.name, c.summary)
	}
}

func newFlagSet(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("bookctl "+name, pflag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
