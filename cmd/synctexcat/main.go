// Command synctexcat is a small demonstration front-end over the scanner
// API: it locates and parses a .synctex(.gz) file for a given output path
// and runs one edit or display query against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/viant/afs"

	"github.com/viant/synctex/query"
	"github.com/viant/synctex/scanner"
)

func main() {
	output := flag.String("output", "", "path to the PDF/DVI/XDV output whose .synctex(.gz) sidecar to read")
	buildDir := flag.String("build-dir", "", "fallback directory to search if the output-relative lookup fails")
	page := flag.Int("page", 0, "page for an edit query (0 disables)")
	h := flag.Float64("h", 0, "horizontal hit position, page points")
	v := flag.Float64("v", 0, "vertical hit position, page points")
	file := flag.String("file", "", "source file for a display query (empty disables)")
	line := flag.Int("line", 0, "source line for a display query")
	flag.Parse()

	if *output == "" {
		fmt.Fprintln(os.Stderr, "synctexcat: -output is required")
		os.Exit(2)
	}

	ctx := context.Background()
	fs := afs.New()

	s, err := scanner.New(ctx, fs, *output, &scanner.Config{BuildDirectory: *buildDir}, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synctexcat: %v\n", err)
		os.Exit(1)
	}
	defer s.Free()

	d := s.Diagnose()
	fmt.Printf("synctex: %s (version %d, %d sheets, %d forms, %d nodes)\n",
		d.SynctexPath, d.Version, d.SheetCount, d.FormCount, d.NodeCount)

	switch {
	case *page > 0:
		it, err := s.IteratorNewEdit(int32(*page), *h, *v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "synctexcat: edit query: %v\n", err)
			os.Exit(1)
		}
		printResults(it)
	case *file != "":
		it, err := s.IteratorNewDisplay(*file, int32(*line), -1, 1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "synctexcat: display query: %v\n", err)
			os.Exit(1)
		}
		printResults(it)
	}
}

func printResults(it *query.Iterator) {
	fmt.Printf("%d result(s)\n", it.Count())
	for it.HasNext() {
		h := it.Next()
		target := h.Target()
		if target == nil {
			continue
		}
		tag, line, column := target.TLC()
		fmt.Printf("  kind=%s tag=%d line=%d column=%d h=%d v=%d\n",
			target.Kind, tag, line, column, target.H, target.V)
	}
}
