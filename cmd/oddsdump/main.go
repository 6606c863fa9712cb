// oddsdump prints a snapshot archive as readable JSON for operational spot
// checks. latest.json covers the current day; older archives are gzipped.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"oddsflow/snapshot"
)

func main() {
	pretty := flag.Bool("pretty", true, "Indent the output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: oddsdump [-pretty=false] <archive.json.gz>")
		os.Exit(2)
	}

	snap, err := snapshot.ReadArchive(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "oddsdump: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(snap); err != nil {
		fmt.Fprintf(os.Stderr, "oddsdump: %v\n", err)
		os.Exit(1)
	}
}
