package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/libdiff"
	"github.com/signadot/spdb/patch"
)

func patchDoc(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires a uri and a patch file, got %v", cli.ErrUsage, args)
	}
	uri := args[0]
	p, err := readArg(cc, args[1])
	if err != nil {
		return err
	}
	root, err := cfg.Reg.Load(uri)
	if err != nil {
		return err
	}
	var cs []libdiff.Change
	if cfg.Merge {
		cs, err = patch.Merge(root, p)
	} else {
		cs, err = patch.Apply(root, p)
	}
	if err != nil {
		return err
	}
	if cfg.DryRun {
		return writeChanges(cc.Out, cs, cfg.useColor(cc.Out))
	}
	if len(cs) == 0 {
		cfg.Log.Info("no changes", "uri", uri)
		return nil
	}
	if err := cfg.Reg.Sync(root, uri); err != nil {
		return err
	}
	cfg.Log.Info("patched", "uri", uri, "changes", len(cs))
	return nil
}

func readArg(cc *cli.Context, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(cc.In)
	}
	d, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", arg, err)
	}
	return d, nil
}
