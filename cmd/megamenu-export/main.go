// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command megamenu-export writes the commerce category tree to a mega menu
// spreadsheet without running the server.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-megamenu/internal/commerce"
	"github.com/olegiv/ocms-megamenu/internal/logging"
	"github.com/olegiv/ocms-megamenu/internal/model"
	"github.com/olegiv/ocms-megamenu/internal/transfer"
	"github.com/olegiv/ocms-megamenu/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// exportEnv is the subset of the server configuration the export needs.
type exportEnv struct {
	CommerceAccount string        `env:"MEGAMENU_COMMERCE_ACCOUNT"`
	CommerceToken   string        `env:"MEGAMENU_COMMERCE_TOKEN"`
	CommerceBaseURL string        `env:"MEGAMENU_COMMERCE_BASE_URL"`
	CommerceTimeout time.Duration `env:"MEGAMENU_COMMERCE_TIMEOUT" envDefault:"10s"`
	CommerceRetries int           `env:"MEGAMENU_COMMERCE_RETRIES" envDefault:"2"`
	LogLevel        string        `env:"MEGAMENU_LOG_LEVEL" envDefault:"info"`
}

type options struct {
	env    exportEnv
	format transfer.Format
	out    string
	depth  int
	verify bool
}

func main() {
	format := flag.String("format", string(transfer.FormatXLSX), "Output format: xlsx|csv")
	out := flag.String("out", "", "Output file (default: megamenu.<format>, - for stdout)")
	depth := flag.Int("depth", transfer.DefaultDepth, "Catalog depth to fetch")
	verify := flag.Bool("verify", false, "Read the written file back and report the departments found")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "megamenu-export - export the category tree as a mega menu sheet\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_COMMERCE_ACCOUNT   Commerce account (or MEGAMENU_COMMERCE_BASE_URL)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MEGAMENU_COMMERCE_TOKEN     Commerce API token (optional)\n")
	}
	flag.Parse()

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("megamenu-export %s\n", info)
		os.Exit(0)
	}

	_ = godotenv.Load()

	opts := options{depth: *depth, verify: *verify, out: *out}
	if err := env.Parse(&opts.env); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "parsing environment: %v\n", err)
		os.Exit(2)
	}
	f, err := transfer.ParseFormat(*format)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	opts.format = f
	if opts.out == "" {
		opts.out = f.FileName("megamenu")
	}

	logger := logging.New(os.Stderr, logging.Options{Level: opts.env.LogLevel, Format: "text"})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger, os.Stdout); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger, stdout io.Writer) error {
	client, err := commerce.NewClient(commerce.Options{
		Account: opts.env.CommerceAccount,
		BaseURL: opts.env.CommerceBaseURL,
		Token:   opts.env.CommerceToken,
		Timeout: opts.env.CommerceTimeout,
		Retries: opts.env.CommerceRetries,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	exporter := transfer.NewExporter(client, logger)
	exporter.SetDepth(opts.depth)

	var buf bytes.Buffer
	if err := exporter.Export(ctx, &buf, opts.format); err != nil {
		return err
	}

	if opts.out == "-" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}

	if opts.verify {
		departments, err := readBack(opts.format, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return fmt.Errorf("verifying export: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "%d departments\n", len(departments))
	}

	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.out, err)
	}
	logger.Info("export written", "path", opts.out, "bytes", buf.Len())
	return nil
}

func readBack(format transfer.Format, r io.Reader) ([]*model.MenuItem, error) {
	switch format {
	case transfer.FormatCSV:
		return transfer.ImportCSV(r)
	case transfer.FormatXLSX:
		return transfer.ImportXLSX(r)
	default:
		return nil, errors.New("unknown format " + string(format))
	}
}
