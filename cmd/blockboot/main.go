// Command blockboot writes block bootstrap replicates of a CSV time series.
//
// Usage:
//
//	blockboot -i gauge.csv -b 30 -f D -n 200 -s 1 -o replicates/
//
// Settings can also come from BLOCKBOOT_* environment variables or a
// blockboot.yaml file; run with --help for the full list.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/sartorproj/blockbootstrap/internal/config"
	"github.com/sartorproj/blockbootstrap/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "blockboot: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blockboot: %v\n", err)
		os.Exit(2)
	}

	if _, err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("bootstrap failed")
	}
}
