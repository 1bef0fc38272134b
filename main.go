package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	dwarfhelper "dwarf2layout/dwarf"
	"dwarf2layout/layout"
	"dwarf2layout/logflags"
)

const usageLine = "usage: dwarf2layout <binary> <variable>"

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "dwarf2layout",
		Usage:     "print the memory layout of a global variable from DWARF debug info",
		UsageText: "dwarf2layout [flags] <binary> <variable>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "table",
				Aliases: []string{"t"},
				Usage:   "print leaf members with their absolute offsets",
			},
			&cli.BoolFlag{
				Name:  "cpp",
				Usage: "print leaf members as a C++ ParamConfig table",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "stop at the first malformed or unsupported entry",
			},
			&cli.IntFlag{
				Name:  "max-depth",
				Usage: "deepest nesting level visited",
				Value: layout.DefaultMaxDepth,
			},
			&cli.IntFlag{
				Name:  "max-alias-chain",
				Usage: "longest typedef chain followed",
				Value: dwarfhelper.DefaultAliasLimit,
			},
			&cli.BoolFlag{
				Name:  "log",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-output",
				Usage: "comma separated list of components that produce debug output (loader, walker, symtab)",
			},
		},
		Action: func(c *cli.Context) error {
			logflags.SetOutput(c.App.ErrWriter)
			if err := logflags.Setup(c.Bool("log"), c.String("log-output")); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if c.NArg() != 2 {
				fmt.Fprintln(c.App.Writer, usageLine)
				return cli.Exit("", 1)
			}
			opts := LayoutOptions{
				Format: formatTree,
				Walk: layout.Options{
					MaxDepth:   c.Int("max-depth"),
					AliasLimit: c.Int("max-alias-chain"),
					Strict:     c.Bool("strict"),
				},
			}
			switch {
			case c.Bool("cpp"):
				opts.Format = formatCpp
			case c.Bool("table"):
				opts.Format = formatTable
			}
			err := LayoutHelper(c.Args().Get(0), c.Args().Get(1), opts, c.App.Writer, c.App.ErrWriter)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
