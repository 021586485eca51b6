// studiocms-migrate copies the legacy SQLite content database into the
// document store. It runs once, sequentially, and reports per-entity
// totals; re-running against a populated destination reports duplicate
// slugs as failures unless --clear wipes the destination first.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/northbeam/studiocms"
	"github.com/northbeam/studiocms/migrate"
	"github.com/northbeam/studiocms/store"
)

func main() {
	clearDest := flag.Bool("clear", false, "wipe the destination store before migrating")
	flag.Usage = printUsage
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sourcePath := studiocms.MustEnv("STUDIOCMS_MIGRATE_SOURCE")
	dataDir := studiocms.EnvOr("STUDIOCMS_DATA_DIR", "data")

	src, err := migrate.OpenSource(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	dst, err := store.Open(dataDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer dst.Close()

	if *clearDest {
		if err := dst.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: clear destination: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("destination cleared")
	}

	report, err := migrate.New(src, dst, logger).Run()
	if report != nil {
		report.Write(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `studiocms-migrate - copy the legacy SQLite database into the content store

Usage:
  studiocms-migrate [--clear]

Flags:
  --clear    wipe the destination store before migrating
  --help     show this help message

Environment:
  STUDIOCMS_MIGRATE_SOURCE   path to the legacy SQLite database (required)
  STUDIOCMS_DATA_DIR         destination store directory (default "data")`)
}
