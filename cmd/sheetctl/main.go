/*
main.go - Workbook import/export CLI

PURPOSE:
  Moves data between the SQLite store and the legacy workbook format.
  Used for the one-off migration off the spreadsheet and for handing
  periodic exports back to finance.

USAGE:
  sheetctl -db=./data/staffcentre.db import legacy.xlsx
  sheetctl -db=./data/staffcentre.db export backup.xlsx
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/opsdesk/staffcentre/sheet"
	"github.com/opsdesk/staffcentre/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "./data/staffcentre.db", "SQLite database path")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: sheetctl [-db=path] import|export <workbook.xlsx>")
		os.Exit(2)
	}
	command, path := flag.Arg(0), flag.Arg(1)

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	stores := sheet.Stores{
		Users:    store,
		Holidays: store,
		Shifts:   store,
		Invoices: store,
	}
	ctx := context.Background()

	switch command {
	case "import":
		report, err := sheet.Import(ctx, path, stores)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d users, %d holiday requests, %d availability blocks, %d shifts, %d invoices, %d items",
			report.Users, report.Holidays, report.Availability,
			report.Shifts, report.Invoices, report.InvoiceItems)
	case "export":
		if err := sheet.Export(ctx, path, stores); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Exported workbook to %s", path)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q, want import or export\n", command)
		os.Exit(2)
	}
}
