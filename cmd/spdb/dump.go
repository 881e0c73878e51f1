package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/encode"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: dump requires at least one uri", cli.ErrUsage)
	}
	opts := append(cfg.encOpts(cc.Out), encode.MaxDepth(cfg.Depth), encode.BlockElems(cfg.Blocks))
	for i, uri := range args {
		root, err := cfg.Reg.Load(uri)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(cc.Out, "---")
		}
		if err := encode.Encode(root, cc.Out, opts...); err != nil {
			return fmt.Errorf("error encoding %s: %w", uri, err)
		}
	}
	return nil
}
