package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wwpump/controller/db"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var dbPath string
	var limit int
	help := flag.Bool("help", false, "Show help")
	flag.StringVar(&dbPath, "db", "wwpump-audit.db", "Path to the SQLite audit database file")
	flag.IntVar(&limit, "limit", 20, "Number of recent audit events to show")
	flag.Parse()

	if *help {
		fmt.Println("\nUsage of wwpump-debug:")
		fmt.Println("  -db string\tPath to the SQLite audit database file (default 'wwpump-audit.db')")
		fmt.Println("  -limit int\tNumber of recent audit events to show (default 20)")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	events, err := db.DumpRecentEventsCLI(dbPath, limit)
	if err != nil {
		fmt.Printf("Failed to read audit events: %v\n", err)
		os.Exit(1)
	}

	if len(events) == 0 {
		fmt.Println("No audit events recorded")
		return
	}

	for _, e := range events {
		fmt.Printf("%d  %-14s  %s\n", e.Timestamp, e.Kind, e.Detail)
	}
}
