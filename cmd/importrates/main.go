// Command importrates loads a CSV of swap rate quotes into the postgres
// rate store.
//
// Both CSV layouts the importer understands are accepted: the long
// layout with one quote per row, and the wide layout with one column
// per tenor. The import summary is printed as JSON on stdout; row-level
// problems are listed in the summary without stopping the run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/meenmo/rateedge/importer"
	"github.com/meenmo/rateedge/ratestore"
)

func main() {
	_ = godotenv.Load()

	filePath := flag.String("file", "", "CSV file to import (required)")
	currency := flag.String("currency", "AUD", "currency for wide-format files")
	source := flag.String("source", "", "provenance tag stored with each rate (defaults to the file name)")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string (defaults to DATABASE_URL)")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: importrates -file <rates.csv> [-currency AUD] [-source tag] [-dsn postgres://...]")
		fmt.Fprintln(os.Stderr, "Import a CSV of swap rates into the rate store and print the result as JSON.")
		os.Exit(2)
	}
	if *dsn == "" {
		fatal("a postgres DSN is required, pass -dsn or set DATABASE_URL")
	}

	f, err := os.Open(*filePath)
	if err != nil {
		fatal("open %s: %v", *filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := ratestore.NewPostgresStore(ctx, *dsn)
	if err != nil {
		fatal("connect to postgres: %v", err)
	}
	defer store.Close()

	tag := *source
	if tag == "" {
		tag = filepath.Base(*filePath)
	}

	result, err := importer.New(store).Import(ctx, f, importer.Options{
		Currency: *currency,
		Source:   tag,
	})
	if err != nil {
		fatal("import %s: %v", *filePath, err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	if !result.Success {
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
