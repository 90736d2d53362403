// Graphcheck loads a waypoint file, validates it and prints each color's
// routes. It exits non-zero when the file is invalid.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/teslashibe/go-wayfinder/pkg/band"
	"github.com/teslashibe/go-wayfinder/pkg/waypoint"
)

func main() {
	embedded := flag.String("embedded", "", "Check a built-in graph by name instead of a file")
	list := flag.Bool("list", false, "List built-in graphs and exit")
	quiet := flag.Bool("q", false, "Only report errors")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: graphcheck [-q] <file.json|file.yaml>\n")
		fmt.Fprintf(os.Stderr, "       graphcheck [-q] -embedded <name>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		names, err := waypoint.ListEmbedded()
		if err != nil {
			fatal(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	g, source, err := load(*embedded, flag.Args())
	if err != nil {
		fatal(err)
	}
	if !*quiet {
		summarize(g, source)
	}
}

func load(embedded string, args []string) (*waypoint.Graph, string, error) {
	switch {
	case embedded != "":
		g, err := waypoint.LoadEmbedded(embedded)
		return g, "embedded:" + embedded, err
	case len(args) == 1:
		g, err := waypoint.LoadFile(args[0])
		return g, args[0], err
	default:
		flag.Usage()
		os.Exit(2)
		return nil, "", nil
	}
}

func summarize(g *waypoint.Graph, source string) {
	fmt.Printf("✅ %s: %d waypoints\n", source, g.Len())

	for _, b := range band.All() {
		nodes := g.Partition(b)
		fmt.Printf("\n%s (%d)\n", b.Title(), len(nodes))
		if len(nodes) == 0 {
			continue
		}

		// Starts are nodes nothing else in the partition points at.
		pointed := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			if n.Next != "" {
				pointed[n.Next] = true
			}
		}
		seen := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			if pointed[n.Code] {
				continue
			}
			fmt.Printf("  %s\n", formatRoute(g.Route(n.Code), seen))
		}
		for _, n := range nodes {
			if !seen[n.Code] {
				fmt.Printf("  %s (loop)\n", formatRoute(g.Route(n.Code), seen))
			}
		}
	}
}

func formatRoute(route []waypoint.Node, seen map[string]bool) string {
	codes := make([]string, len(route))
	for i, n := range route {
		codes[i] = n.Code
		seen[n.Code] = true
	}
	return strings.Join(codes, " -> ")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	os.Exit(1)
}
