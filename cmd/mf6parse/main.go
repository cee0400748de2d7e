package main

import (
	"flag"
	"fmt"
	"os"

	devtools "github.com/wpbonelli/modflow-devtools"
	"github.com/wpbonelli/modflow-devtools/dfn"
	"github.com/wpbonelli/modflow-devtools/grammar"
)

func main() {
	pDfndir := flag.String("d", "", "directory containing definition files (optional)")
	pComponent := flag.String("c", "", "component to parse against (requires -d)")
	pVerbose := flag.Bool("v", false, "verbose output")
	flag.Parse()
	argv := flag.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "usage: mf6parse [-d dfndir -c component] some_input_file\n")
		os.Exit(1)
	}
	devtools.Verbose = *pVerbose

	src, err := os.ReadFile(argv[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}

	var doc *grammar.Document
	if *pDfndir != "" {
		dfns, err := dfn.LoadAll(*pDfndir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
		for name, d := range dfns {
			dfns[name] = dfn.Migrate(d)
		}
		factory, err := grammar.NewFactory(dfns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
		doc, err = factory.Parse(*pComponent, string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
	} else {
		if *pComponent != "" {
			fmt.Fprintf(os.Stderr, "*** -c requires -d\n")
			os.Exit(1)
		}
		g := grammar.Generic()
		tree, err := grammar.NewParser(g).Parse(string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
		doc, err = grammar.NewTransformer(g).Transform(tree)
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Print(devtools.Pretty(doc))
}
