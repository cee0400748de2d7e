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
	pDfndir := flag.String("d", "", "directory containing definition files")
	pOutdir := flag.String("o", "", "output directory for grammar files")
	pConf := flag.String("conf", "", "configuration file (YAML or JSON)")
	pKeep := flag.Bool("k", false, "keep existing grammar files instead of overwriting")
	pVerbose := flag.Bool("v", false, "verbose output")
	flag.Parse()
	if *pDfndir == "" || *pOutdir == "" {
		fmt.Fprintf(os.Stderr, "usage: dfn2grammar -d dfndir -o outdir\n")
		os.Exit(1)
	}
	devtools.Verbose = *pVerbose

	var config *devtools.Data
	var err error
	if *pConf != "" {
		config, err = devtools.DataFromFile(*pConf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
			os.Exit(1)
		}
	} else {
		config = devtools.NewData()
	}
	if *pKeep {
		config.Put("force-overwrite", false)
	}

	dfns, err := dfn.LoadAll(*pDfndir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}
	for name, d := range dfns {
		dfns[name] = dfn.Migrate(d)
	}
	if _, err := grammar.WriteAll(dfns, *pOutdir, config); err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}
}
