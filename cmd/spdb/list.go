package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/encode"
	"github.com/signadot/spdb/entry"
)

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	args, err := cfg.List.Parse(cc, args)
	if err != nil {
		cfg.List.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: ls requires a uri and an optional path", cli.ErrUsage)
	}
	root, err := cfg.Reg.Load(args[0])
	if err != nil {
		return err
	}
	e := root
	if len(args) == 2 {
		e, err = root.AtPath(args[1])
		if err != nil {
			return err
		}
	}
	t, err := e.Fetch()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	switch v := t.Value().(type) {
	case entry.ObjectValue:
		for it := range v.Object.Items() {
			listLine(tw, encode.Key(it.Key), it.Entry)
		}
	case entry.ArrayValue:
		i := 0
		for c := range v.Array.Children() {
			listLine(tw, fmt.Sprintf("[%d]", i), c)
			i++
		}
	default:
		listLine(tw, ".", t)
	}
	return tw.Flush()
}

func listLine(w io.Writer, name string, e *entry.Entry) {
	fmt.Fprintf(w, "%s\t%s\n", name, e)
}
