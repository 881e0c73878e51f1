package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/scott-cotton/cli"
)

func backends(cfg *BackendsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Backends.Parse(cc, args)
	if err != nil {
		cfg.Backends.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: backends takes no arguments", cli.ErrUsage)
	}
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	for _, name := range cfg.Reg.Names() {
		fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(cfg.Reg.Patterns(name), " "))
	}
	return tw.Flush()
}
