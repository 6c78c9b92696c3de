// Mecha script compiler backend: reads a parsed script AST as JSON and
// emits host-language source that rebuilds the command sequence at run
// time.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
	"github.com/TheNuclearNexus/mecha/pkg/codegen"
)

var (
	dryRun  = flag.Bool("dry-run", false, "show what would be generated without outputting")
	meta    = flag.Bool("meta", false, "report the output variable and reference table size on stderr")
	version = flag.Bool("version", false, "print version and exit")
)

const versionStr = "0.2.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Mecha script compiler backend\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  mecha [options] < ast.json > output.py\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("mecha version %s\n", versionStr)
		os.Exit(0)
	}

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	if len(input) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no input provided\n")
		fmt.Fprintf(os.Stderr, "Usage: mecha < ast.json\n")
		os.Exit(1)
	}

	root, err := ast.ParseBytes(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing AST: %v\n", err)
		os.Exit(1)
	}

	result, err := codegen.New().Generate(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
		os.Exit(1)
	}

	if *meta {
		if result.Output == "" {
			fmt.Fprintf(os.Stderr, "static tree, %d refs\n", len(result.Refs))
		} else {
			fmt.Fprintf(os.Stderr, "output variable %s, %d refs\n", result.Output, len(result.Refs))
		}
	}

	if *dryRun {
		fmt.Fprintf(os.Stderr, "Dry run - would generate %d bytes\n", len(result.Source))
		os.Exit(0)
	}

	fmt.Print(result.Source)
}
