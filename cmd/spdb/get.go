package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/encode"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: get requires a uri and at least one path", cli.ErrUsage)
	}
	root, err := cfg.Reg.Load(args[0])
	if err != nil {
		return err
	}
	opts := append(cfg.encOpts(cc.Out), encode.MaxDepth(cfg.Depth))
	for i, p := range args[1:] {
		e, err := root.AtPath(p)
		if err != nil {
			return fmt.Errorf("error getting %s from %s: %w", p, args[0], err)
		}
		if i > 0 {
			fmt.Fprintln(cc.Out, "---")
		}
		if err := encode.Encode(e, cc.Out, opts...); err != nil {
			return err
		}
	}
	return nil
}
