package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		cfg.Convert.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: convert requires 2 args, got %v", cli.ErrUsage, args)
	}
	root, err := cfg.Reg.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Reg.Save(root, args[1]); err != nil {
		return err
	}
	cfg.Log.Info("converted", "from", args[0], "to", args[1])
	return nil
}
