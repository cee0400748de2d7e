package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	devtools "github.com/wpbonelli/modflow-devtools"
	"github.com/wpbonelli/modflow-devtools/dfn"
)

func main() {
	pIndir := flag.String("i", "", "directory containing definition files")
	pOutdir := flag.String("o", "", "output directory for TOML files")
	pMigrate := flag.Bool("migrate", true, "migrate definitions to schema version 2")
	pVerbose := flag.Bool("v", false, "verbose output")
	flag.Parse()
	if *pIndir == "" || *pOutdir == "" {
		fmt.Fprintf(os.Stderr, "usage: dfn2toml -i dfndir -o outdir\n")
		os.Exit(1)
	}
	devtools.Verbose = *pVerbose

	dfns, err := dfn.LoadAll(*pIndir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}
	if *pMigrate {
		for name, d := range dfns {
			dfns[name] = dfn.Migrate(d)
		}
	}

	// round trip through the hierarchy so parent links are checked
	// and inferred before anything is written
	root, err := dfn.Tree(dfns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}
	dfns = dfn.Flatten(root)

	if err := os.MkdirAll(*pOutdir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}
	for _, name := range dfns.Names() {
		path := filepath.Join(*pOutdir, name+".toml")
		devtools.Debug("Writing ", path)
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
		err = dfn.SaveTOML(dfns[name], f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
	}
}
