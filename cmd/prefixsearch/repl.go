package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/csvquery/prefixsearch/internal/query"
)

// Searcher is the query side of the engine the loop drives.
type Searcher interface {
	Search(text string) ([]query.Result, error)
}

// runLoop reads queries line by line until "quit" or end of input.
func runLoop(in io.Reader, out io.Writer, s Searcher) error {
	fmt.Fprintln(out, "Enter search text (or 'quit' to exit):")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(text, "quit") {
			return nil
		}
		if text == "" {
			fmt.Fprintln(out, "Please enter search text")
			continue
		}
		if err := printResults(out, s, text); err != nil {
			return err
		}
	}
}

func printResults(out io.Writer, s Searcher, text string) error {
	results, err := s.Search(text)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	for _, r := range results {
		fmt.Fprintln(w, r.String())
	}
	fmt.Fprintf(w, "Found %d matches\n", len(results))
	return w.Flush()
}
