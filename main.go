package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edward-yakop/go-pubdoc/internal/app"
	"github.com/edward-yakop/go-pubdoc/internal/misc"
	"github.com/spf13/pflag"
)

func main() {
	args := app.ArgsList{}
	pflag.StringVar(&args.StateDir,
		"state-dir", "",
		"directory holding conf.yaml, .env and the cache slot (default ~/.ex)")
	pflag.StringVar(&args.Domain,
		"domain", "",
		"base origin of the site, overrides conf.yaml and PUBDOC_DOMAIN")
	pflag.StringVar(&args.URL,
		"url", "",
		"path of the listing page, appended to domain")
	pflag.StringVar(&args.Re,
		"re", "",
		"regular expression whose first group captures the document href")
	pflag.StringVarP(&args.Output,
		"output", "o", "",
		"write the document to this file, - for stdout")
	pflag.BoolVar(&args.Decompress,
		"decompress", false,
		"unwrap xz, lzma, gzip or zstd documents on output")
	pflag.BoolVar(&args.NoProgress,
		"no-progress", false,
		"do not draw a progress bar while downloading")
	pflag.StringVar(&args.MetricsFile,
		"metrics-file", "",
		"write run metrics in Prometheus text format to this file")
	pflag.DurationVar(&args.Timeout,
		"timeout", 0,
		"limit for each HTTP exchange, body included (default 5m, negative for none)")
	pflag.BoolVarP(&args.Verbose,
		"verbose", "v", false,
		"verbose output trace log")
	pflag.BoolVar(&args.LogJSON,
		"log-json", false,
		"use json logs")
	help := pflag.BoolP("help", "h", false, "show this help text")
	pflag.Parse()

	if *help || pflag.NArg() != 0 {
		fmt.Printf("usage: %s [options]\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		if !*help {
			os.Exit(2)
		}
		return
	}

	level := slog.LevelInfo
	if args.Verbose {
		level = slog.LevelDebug
	}
	misc.SetDefaultLog(level, os.Stderr, args.LogJSON)

	opt, err := app.ParseOption(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "--------------------------------------------")
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintln(os.Stderr, "--------------------------------------------")
		fmt.Fprintln(os.Stderr, "Usage:")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewApp(opt).Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
